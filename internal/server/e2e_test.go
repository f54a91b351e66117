package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/cache"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	"github.com/smallbiznis/rentaldocs/internal/config"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	documentrepository "github.com/smallbiznis/rentaldocs/internal/document/repository"
	documentservice "github.com/smallbiznis/rentaldocs/internal/document/service"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	giterepository "github.com/smallbiznis/rentaldocs/internal/gite/repository"
	giteservice "github.com/smallbiznis/rentaldocs/internal/gite/service"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/numbering"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/providers/pdf"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"github.com/smallbiznis/rentaldocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newAppRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewDB(t, &gitedomain.Gite{}, &numbering.Counter{}, &documentdomain.Document{})
	log := zaptest.NewLogger(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	store := artifact.NewStore(t.TempDir(), "pdfs", log)
	layouts := renderer.StaticLayout(renderer.DefaultLayout())
	cfg := config.Config{DefaultArrhesRate: 0.2, PreviewCacheTTL: time.Minute}

	gites := giteservice.New(giteservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      giterepository.Provide(),
		Artifacts: store,
		Clock:     clk,
	})
	docs := documentservice.New(documentservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Config:    cfg,
		Clock:     clk,
		Repo:      documentrepository.Provide(),
		Gites:     giterepository.Provide(),
		Renderer:  renderer.New(renderer.Params{Log: log, Launcher: pdf.NewLauncher(log), Layouts: layouts}),
		Layouts:   layouts,
		Artifacts: store,
		Previews:  cache.NewMemoryPreviewCache(time.Minute),
	})

	return newTestServer(t, cfg, docs, gites)
}

const liberteJSON = `{
	"nom": "Gîte Le Liberté",
	"prefixe_contrat": "LIB",
	"adresse_ligne1": "2 rue de la Forêt",
	"adresse_ligne2": "35380 Paimpont",
	"capacite_max": 6,
	"proprietaires_noms": "M. et Mme Martin",
	"proprietaires_adresse": "2 rue de la Forêt, 35380 Paimpont",
	"telephones": ["06 00 00 00 00"],
	"taxe_sejour_par_personne_par_nuit": 1.5,
	"iban": "FR76 0000 0000 0000",
	"titulaire": "Martin",
	"regle_animaux_acceptes": true,
	"options_draps_par_lit": 12,
	"options_linge_toilette_par_personne": 8,
	"options_menage_forfait": 20,
	"options_depart_tardif_forfait": 15,
	"options_chiens_forfait": 5,
	"caution_montant_defaut": 300,
	"cheque_menage_montant_defaut": 60,
	"prix_nuit_liste": [100, 120]
}`

func referenceJSON(giteID string) string {
	return fmt.Sprintf(`{
		"gite_id": %q,
		"locataire_nom": "Jeanne Dupont",
		"locataire_adresse": "1 place du Marché, Rennes",
		"locataire_tel": "06 11 22 33 44",
		"nb_adultes": 2,
		"nb_enfants_2_17": 1,
		"date_debut": "2026-03-01",
		"heure_arrivee": "17:00",
		"date_fin": "2026-03-04",
		"heure_depart": "12:00",
		"prix_par_nuit": 100,
		"remise_montant": 10,
		"arrhes_montant": 100,
		"arrhes_date_limite": "2026-02-01",
		"caution_montant": 300,
		"cheque_menage_montant": 60,
		"options": {
			"draps": {"enabled": true, "nb_lits": 2},
			"linge_toilette": {"enabled": true, "nb_personnes": 1},
			"menage": {"enabled": true},
			"chiens": {"enabled": true, "nb": 2}
		}
	}`, giteID)
}

func TestPreviewAndCommitAgreeOverHTTP(t *testing.T) {
	router := newAppRouter(t)

	resp := do(router, http.MethodPost, "/api/gites", liberteJSON)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		Data gitedomain.Gite `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	giteID := created.Data.ID.String()

	payload := referenceJSON(giteID)
	preview := do(router, http.MethodPost, "/api/contracts/preview-html", payload, "X-Preview-Generation", "g1")
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())
	assert.Equal(t, "g1", preview.Header().Get("X-Preview-Generation"))

	commit := do(router, http.MethodPost, "/api/contracts", payload)
	require.Equal(t, http.StatusCreated, commit.Code, commit.Body.String())
	var doc struct {
		Data struct {
			ID     string         `json:"id"`
			Numero string         `json:"numero"`
			Totals pricing.Totals `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(commit.Body.Bytes(), &doc))
	assert.Equal(t, "LIB-2026-000001", doc.Data.Numero)
	assert.Equal(t, 372.0, doc.Data.Totals.GrandTotal)
	assert.Equal(t, 272.0, doc.Data.Totals.BalanceDue)

	html := preview.Body.String()
	assert.Contains(t, html, money.FormatEuro(doc.Data.Totals.GrandTotal))
	assert.Contains(t, html, money.FormatEuro(doc.Data.Totals.BalanceDue))

	file := do(router, http.MethodGet, "/api/contracts/"+doc.Data.ID+"/pdf", "")
	require.Equal(t, http.StatusOK, file.Code)
	assert.True(t, strings.HasPrefix(file.Body.String(), "%PDF"))

	list := do(router, http.MethodGet, "/api/contracts?q=dupont", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "LIB-2026-000001")

	// the invoice list shares nothing with contracts
	missing := do(router, http.MethodGet, "/api/invoices/"+doc.Data.ID, "")
	require.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Facture introuvable", decodeError(t, missing).Message)

	require.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/api/gites/"+giteID, "").Code)
	gone := do(router, http.MethodGet, "/api/contracts/"+doc.Data.ID, "")
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestPreviewRejectsUnknownGite(t *testing.T) {
	router := newAppRouter(t)

	resp := do(router, http.MethodPost, "/api/invoices/preview-html", `{"gite_id":"123456"}`)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Gîte introuvable", decodeError(t, resp).Message)
}
