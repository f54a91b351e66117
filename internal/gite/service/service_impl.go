package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	"github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const copySuffix = " (copie)"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Artifacts *artifact.Store
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	artifacts *artifact.Store
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("gite.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		artifacts: p.Artifacts,
		clock:     p.Clock,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.ListItem, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ListItem{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Gite, error) {
	giteID, err := parseID(id)
	if err != nil {
		return domain.Gite{}, err
	}
	return s.find(ctx, giteID)
}

func (s *Service) Create(ctx context.Context, input domain.GiteInput) (domain.Gite, error) {
	if err := validate(input); err != nil {
		return domain.Gite{}, err
	}

	now := s.clock.Now()
	gite := domain.Gite{ID: s.genID.Generate(), CreatedAt: now}
	apply(&gite, input, now)

	if err := s.repo.Insert(ctx, s.db, &gite); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Gite{}, domain.ErrDuplicatePrefix
		}
		return domain.Gite{}, fmt.Errorf("insert gite: %w", err)
	}

	s.log.Info("gite created", zap.String("gite_id", gite.ID.String()), zap.String("prefix", gite.PrefixeContrat))
	return gite, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.GiteInput) (domain.Gite, error) {
	giteID, err := parseID(id)
	if err != nil {
		return domain.Gite{}, err
	}
	if err := validate(input); err != nil {
		return domain.Gite{}, err
	}

	gite, err := s.find(ctx, giteID)
	if err != nil {
		return domain.Gite{}, err
	}
	apply(&gite, input, s.clock.Now())

	if err := s.repo.Update(ctx, s.db, &gite); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Gite{}, domain.ErrDuplicatePrefix
		}
		return domain.Gite{}, fmt.Errorf("update gite: %w", err)
	}
	return gite, nil
}

// Duplicate copies a gîte under "<nom> (copie)" with the first free
// "<prefix><n>" prefix, n starting at 2.
func (s *Service) Duplicate(ctx context.Context, id string) (domain.Gite, error) {
	giteID, err := parseID(id)
	if err != nil {
		return domain.Gite{}, err
	}
	source, err := s.find(ctx, giteID)
	if err != nil {
		return domain.Gite{}, err
	}

	prefixes, err := s.repo.Prefixes(ctx, s.db)
	if err != nil {
		return domain.Gite{}, fmt.Errorf("list prefixes: %w", err)
	}

	now := s.clock.Now()
	dup := source
	dup.ID = s.genID.Generate()
	dup.Nom = source.Nom + copySuffix
	dup.PrefixeContrat = NextFreePrefix(source.PrefixeContrat, prefixes)
	dup.Telephones = append(datatypes.JSONSlice[string]{}, source.Telephones...)
	dup.PrixNuitListe = append(datatypes.JSONSlice[float64]{}, source.PrixNuitListe...)
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &dup); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Gite{}, domain.ErrDuplicatePrefix
		}
		return domain.Gite{}, fmt.Errorf("insert gite copy: %w", err)
	}

	s.log.Info("gite duplicated",
		zap.String("source_id", source.ID.String()),
		zap.String("gite_id", dup.ID.String()),
		zap.String("prefix", dup.PrefixeContrat),
	)
	return dup, nil
}

// Delete removes the gîte, its documents, counters and artifact files.
func (s *Service) Delete(ctx context.Context, id string) error {
	giteID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.find(ctx, giteID); err != nil {
		return err
	}

	paths, err := s.repo.DeleteCascade(ctx, s.db, giteID)
	if err != nil {
		return fmt.Errorf("delete gite: %w", err)
	}

	if failed := s.artifacts.RemoveAll(paths); failed > 0 {
		s.log.Warn("some artifacts were not removed", zap.String("gite_id", giteID.String()), zap.Int("failed", failed))
	}
	s.log.Info("gite deleted", zap.String("gite_id", giteID.String()), zap.Int("documents", len(paths)))
	return nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (domain.Gite, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Gite{}, err
	}
	if item == nil {
		return domain.Gite{}, domain.ErrNotFound
	}
	return *item, nil
}

// NextFreePrefix returns base+n for the smallest n >= 2 not in taken.
func NextFreePrefix(base string, taken []string) string {
	set := make(map[string]struct{}, len(taken))
	for _, p := range taken {
		set[p] = struct{}{}
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		if _, ok := set[candidate]; !ok {
			return candidate
		}
	}
}

func validate(in domain.GiteInput) error {
	switch {
	case strings.TrimSpace(in.Nom) == "":
		return domain.ErrInvalidName
	case len(strings.TrimSpace(in.PrefixeContrat)) < 2:
		return domain.ErrInvalidPrefix
	case strings.TrimSpace(in.AdresseLigne1) == "":
		return domain.ErrInvalidAddress
	case in.CapaciteMax < 1:
		return domain.ErrInvalidCapacity
	case strings.TrimSpace(in.ProprietairesNoms) == "" || strings.TrimSpace(in.ProprietairesAdresse) == "":
		return domain.ErrInvalidOwners
	case strings.TrimSpace(in.IBAN) == "" || strings.TrimSpace(in.Titulaire) == "":
		return domain.ErrInvalidBanking
	}

	amounts := []float64{
		in.TaxeSejourParPersonneParNuit,
		in.OptionsDrapsParLit,
		in.OptionsLingeToiletteParPersonne,
		in.OptionsMenageForfait,
		in.OptionsDepartTardifForfait,
		in.OptionsChiensForfait,
		in.CautionMontantDefaut,
		in.ChequeMenageMontantDefaut,
	}
	amounts = append(amounts, in.PrixNuitListe...)
	for _, v := range amounts {
		if v < 0 || money.ToFloat(v) != v {
			return domain.ErrInvalidAmount
		}
	}

	if in.ArrhesTauxDefaut != nil {
		rate := *in.ArrhesTauxDefaut
		if rate < 0 || rate > 1 || money.ToFloat(rate) != rate {
			return domain.ErrInvalidDepositRate
		}
	}
	return nil
}

func apply(g *domain.Gite, in domain.GiteInput, now time.Time) {
	g.Nom = strings.TrimSpace(in.Nom)
	g.PrefixeContrat = strings.TrimSpace(in.PrefixeContrat)
	g.AdresseLigne1 = strings.TrimSpace(in.AdresseLigne1)
	g.AdresseLigne2 = strings.TrimSpace(in.AdresseLigne2)
	g.CapaciteMax = in.CapaciteMax
	g.ProprietairesNoms = strings.TrimSpace(in.ProprietairesNoms)
	g.ProprietairesAdresse = strings.TrimSpace(in.ProprietairesAdresse)
	g.SiteWeb = strings.TrimSpace(in.SiteWeb)
	g.Email = strings.TrimSpace(in.Email)
	g.Caracteristiques = in.Caracteristiques
	g.Telephones = cleanPhones(in.Telephones)
	g.TaxeSejourParPersonneParNuit = money.Rate(in.TaxeSejourParPersonneParNuit)
	g.IBAN = strings.TrimSpace(in.IBAN)
	g.BIC = strings.TrimSpace(in.BIC)
	g.Titulaire = strings.TrimSpace(in.Titulaire)
	g.RegleAnimauxAcceptes = in.RegleAnimauxAcceptes
	g.RegleBoisPremiereFlambee = in.RegleBoisPremiereFlambee
	g.RegleTiersPersonnesInfo = in.RegleTiersPersonnesInfo
	g.OptionsDrapsParLit = money.Decimal(in.OptionsDrapsParLit)
	g.OptionsLingeToiletteParPersonne = money.Decimal(in.OptionsLingeToiletteParPersonne)
	g.OptionsMenageForfait = money.Decimal(in.OptionsMenageForfait)
	g.OptionsDepartTardifForfait = money.Decimal(in.OptionsDepartTardifForfait)
	g.OptionsChiensForfait = money.Decimal(in.OptionsChiensForfait)
	g.CautionMontantDefaut = money.Decimal(in.CautionMontantDefaut)
	g.ChequeMenageMontantDefaut = money.Decimal(in.ChequeMenageMontantDefaut)
	g.ArrhesTauxDefaut = decimal.NullDecimal{}
	if in.ArrhesTauxDefaut != nil {
		g.ArrhesTauxDefaut = decimal.NewNullDecimal(money.Rate(*in.ArrhesTauxDefaut))
	}
	g.PrixNuitListe = datatypes.JSONSlice[float64](pricing.NormalizeRates(in.PrixNuitListe))
	g.HeureArriveeDefaut = defaultString(in.HeureArriveeDefaut, domain.DefaultArrivalTime)
	g.HeureDepartDefaut = defaultString(in.HeureDepartDefaut, domain.DefaultDepartureTime)
	g.UpdatedAt = now
}

func cleanPhones(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
