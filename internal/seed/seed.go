package seed

import (
	"context"
	"errors"
	"fmt"

	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"go.uber.org/zap"
)

func ptr(v float64) *float64 { return &v }

// DefaultGites are the two development gîtes.
func DefaultGites() []gitedomain.GiteInput {
	return []gitedomain.GiteInput{
		{
			Nom:                             "GITE LE LIBERTÉ",
			PrefixeContrat:                  "LIB",
			AdresseLigne1:                   "1 Rue de la Forêt, 35380 Paimpont",
			AdresseLigne2:                   "Brocéliande",
			CapaciteMax:                     6,
			ProprietairesNoms:               "Sébastien JACQMIN et Soazig MOLINIER",
			ProprietairesAdresse:            "1 Rue de la Forêt, 35380 Paimpont",
			SiteWeb:                         "www.gites-broceliande.com",
			Email:                           "contact@gites-broceliande.com",
			Caracteristiques:                "Jardin clos\nCheminée\nTerrasse couverte",
			Telephones:                      []string{"06 00 00 00 00", "02 99 00 00 00"},
			TaxeSejourParPersonneParNuit:    0.6,
			IBAN:                            "FR76 3000 3000 3000 3000 3000 300",
			BIC:                             "SOGEFRPP",
			Titulaire:                       "Sébastien JACQMIN",
			RegleBoisPremiereFlambee:        true,
			RegleTiersPersonnesInfo:         true,
			OptionsDrapsParLit:              12,
			OptionsLingeToiletteParPersonne: 6,
			OptionsMenageForfait:            60,
			OptionsDepartTardifForfait:      35,
			OptionsChiensForfait:            25,
			CautionMontantDefaut:            400,
			ChequeMenageMontantDefaut:       60,
			ArrhesTauxDefaut:                ptr(0.2),
			PrixNuitListe:                   []float64{120, 140, 160},
		},
		{
			Nom:                             "GITE LA PRAIRIE",
			PrefixeContrat:                  "PRA",
			AdresseLigne1:                   "12 Chemin des Sources, 56430 Tréhorenteuc",
			CapaciteMax:                     4,
			ProprietairesNoms:               "Claire DURAND",
			ProprietairesAdresse:            "12 Chemin des Sources, 56430 Tréhorenteuc",
			SiteWeb:                         "www.gites-prairie.fr",
			Email:                           "bonjour@gites-prairie.fr",
			Caracteristiques:                "Vue campagne\nParking privé\nCuisine équipée",
			Telephones:                      []string{"06 11 22 33 44"},
			TaxeSejourParPersonneParNuit:    0.8,
			IBAN:                            "FR76 1000 2000 3000 4000 5000 600",
			BIC:                             "AGRIFRPP",
			Titulaire:                       "Claire DURAND",
			RegleAnimauxAcceptes:            true,
			OptionsDrapsParLit:              10,
			OptionsLingeToiletteParPersonne: 5,
			OptionsMenageForfait:            50,
			OptionsDepartTardifForfait:      30,
			OptionsChiensForfait:            20,
			CautionMontantDefaut:            300,
			ChequeMenageMontantDefaut:       50,
			ArrhesTauxDefaut:                ptr(0.25),
			PrixNuitListe:                   []float64{90, 110, 130},
		},
	}
}

// EnsureGites creates the development gîtes that are not there yet. A gîte
// is identified by its contract prefix, so running it twice is a no-op.
func EnsureGites(ctx context.Context, svc gitedomain.Service, log *zap.Logger) (created int, err error) {
	if svc == nil {
		return 0, errors.New("seed gite service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	for _, input := range DefaultGites() {
		g, err := svc.Create(ctx, input)
		if errors.Is(err, gitedomain.ErrDuplicatePrefix) {
			log.Info("gite already seeded", zap.String("prefix", input.PrefixeContrat))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed gite %s: %w", input.PrefixeContrat, err)
		}
		created++
		log.Info("gite seeded", zap.String("prefix", g.PrefixeContrat), zap.String("gite_id", g.ID.String()))
	}
	return created, nil
}
