package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	"github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/gite/repository"
	"github.com/smallbiznis/rentaldocs/internal/numbering"
	"github.com/smallbiznis/rentaldocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	dataDir string
	store   *artifact.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t, &domain.Gite{}, &numbering.Counter{})
	require.NoError(t, db.Exec(`CREATE TABLE rental_documents (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		gite_id INTEGER NOT NULL,
		pdf_path TEXT NOT NULL DEFAULT ''
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	dataDir := t.TempDir()
	store := artifact.NewStore(dataDir, "pdfs", zap.NewNop())

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Artifacts: store,
		Clock:     clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
	return fixture{svc: svc, db: db, dataDir: dataDir, store: store}
}

func liberte() domain.GiteInput {
	rate := 0.2
	return domain.GiteInput{
		Nom:                          "GITE LE LIBERTÉ",
		PrefixeContrat:               "LIB",
		AdresseLigne1:                "1 Rue de la Forêt, 35380 Paimpont",
		AdresseLigne2:                "Brocéliande",
		CapaciteMax:                  6,
		ProprietairesNoms:            "Les propriétaires",
		ProprietairesAdresse:         "1 Rue de la Forêt, 35380 Paimpont",
		Telephones:                   []string{"06 00 00 00 00", " "},
		TaxeSejourParPersonneParNuit: 0.6,
		IBAN:                         "FR76 3000 3000 3000 3000 3000 300",
		Titulaire:                    "Titulaire",
		OptionsDrapsParLit:           12,
		OptionsMenageForfait:         60,
		OptionsChiensForfait:         25,
		ArrhesTauxDefaut:             &rate,
		PrixNuitListe:                []float64{160, 120, 140, 120},
	}
}

func TestCreateNormalizesInput(t *testing.T) {
	f := newFixture(t)

	gite, err := f.svc.Create(context.Background(), liberte())
	require.NoError(t, err)

	assert.Equal(t, []string{"06 00 00 00 00"}, []string(gite.Telephones))
	assert.Equal(t, []float64{120, 140, 160}, []float64(gite.PrixNuitListe))
	assert.Equal(t, domain.DefaultArrivalTime, gite.HeureArriveeDefaut)

	stored, err := f.svc.Get(context.Background(), gite.ID.String())
	require.NoError(t, err)
	sheet := stored.TariffSheet()
	assert.Equal(t, 12.0, sheet.BeddingPerBed)
	assert.Equal(t, 0.6, sheet.TouristTaxRate)
	require.NotNil(t, sheet.DepositRate)
	assert.Equal(t, 0.2, *sheet.DepositRate)
}

func TestCreateRejectsDuplicatePrefix(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), liberte())
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), liberte())
	assert.ErrorIs(t, err, domain.ErrDuplicatePrefix)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	in := liberte()
	in.PrefixeContrat = "L"
	_, err := f.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidPrefix)

	in = liberte()
	bad := 1.5
	in.ArrhesTauxDefaut = &bad
	_, err = f.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidDepositRate)
}

func TestDuplicatePicksNextFreeSuffix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	source, err := f.svc.Create(ctx, liberte())
	require.NoError(t, err)

	first, err := f.svc.Duplicate(ctx, source.ID.String())
	require.NoError(t, err)
	second, err := f.svc.Duplicate(ctx, source.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "GITE LE LIBERTÉ (copie)", first.Nom)
	assert.Equal(t, "LIB2", first.PrefixeContrat)
	assert.Equal(t, "LIB3", second.PrefixeContrat)
	assert.NotEqual(t, source.ID, first.ID)
	assert.Equal(t, source.PrixNuitListe, first.PrixNuitListe)
}

func TestNextFreePrefix(t *testing.T) {
	assert.Equal(t, "LIB2", NextFreePrefix("LIB", []string{"LIB"}))
	assert.Equal(t, "LIB4", NextFreePrefix("LIB", []string{"LIB", "LIB2", "LIB3"}))
}

func TestListOrdersByNameWithCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lib, err := f.svc.Create(ctx, liberte())
	require.NoError(t, err)
	pra := liberte()
	pra.Nom = "GITE LA PRAIRIE"
	pra.PrefixeContrat = "PRA"
	_, err = f.svc.Create(ctx, pra)
	require.NoError(t, err)

	require.NoError(t, f.db.Exec(`INSERT INTO rental_documents (id, kind, gite_id) VALUES (1, 'contract', ?), (2, 'contract', ?), (3, 'invoice', ?)`,
		lib.ID, lib.ID, lib.ID).Error)

	items, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "GITE LA PRAIRIE", items[0].Nom)
	assert.Equal(t, "GITE LE LIBERTÉ", items[1].Nom)
	assert.Equal(t, int64(2), items[1].ContratsCount)
	assert.Equal(t, int64(1), items[1].FacturesCount)
	assert.Equal(t, int64(0), items[0].ContratsCount)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lib, err := f.svc.Create(ctx, liberte())
	require.NoError(t, err)
	other := liberte()
	other.PrefixeContrat = "PRA"
	pra, err := f.svc.Create(ctx, other)
	require.NoError(t, err)

	libPath := filepath.Join("pdfs", "2026", "07", "LIB-2026-000001.pdf")
	praPath := filepath.Join("pdfs", "2026", "07", "PRA-2026-000001.pdf")
	require.NoError(t, f.store.Write(libPath, []byte("%PDF")))
	require.NoError(t, f.store.Write(praPath, []byte("%PDF")))
	require.NoError(t, f.db.Exec(`INSERT INTO rental_documents (id, kind, gite_id, pdf_path) VALUES (1, 'contract', ?, ?), (2, 'contract', ?, ?)`,
		lib.ID, libPath, pra.ID, praPath).Error)
	_, err = numbering.Next(ctx, f.db, lib.ID, numbering.Sequence{Kind: "contract", Width: 6}, "LIB", 2026)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, lib.ID.String()))

	_, err = f.svc.Get(ctx, lib.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var docs, counters int64
	require.NoError(t, f.db.Table("rental_documents").Where("gite_id = ?", lib.ID).Count(&docs).Error)
	require.NoError(t, f.db.Model(&numbering.Counter{}).Where("gite_id = ?", lib.ID).Count(&counters).Error)
	assert.Zero(t, docs)
	assert.Zero(t, counters)

	_, err = os.Stat(filepath.Join(f.dataDir, libPath))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.dataDir, praPath))
	assert.NoError(t, err, "other gîte keeps its artifact")
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
