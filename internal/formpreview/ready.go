package formpreview

import (
	"strings"

	"github.com/smallbiznis/rentaldocs/internal/stay"
)

const (
	ReasonNoGite       = "Prévisualisation inactive tant qu'aucun gîte n'est sélectionné."
	ReasonInvalidDates = "Prévisualisation inactive : dates invalides."
)

// Readiness gates the scheduler. Reason is shown in place of the preview
// while Ready is false.
type Readiness struct {
	Ready  bool
	Reason string
}

// Ready is the readiness of a complete form.
var Ready = Readiness{Ready: true}

// CheckReady mirrors the form rules: a gîte must be selected and, when both
// dates are filled in, the end must fall strictly after the start. A single
// missing date is fine, the server defaults it.
func CheckReady(giteID, start, end string) Readiness {
	if strings.TrimSpace(giteID) == "" {
		return Readiness{Reason: ReasonNoGite}
	}

	from, errFrom := stay.ParseOptional(start)
	to, errTo := stay.ParseOptional(end)
	if errFrom != nil || errTo != nil {
		return Readiness{Reason: ReasonInvalidDates}
	}
	if from == nil || to == nil {
		return Ready
	}
	if !to.After(*from) {
		return Readiness{Reason: ReasonInvalidDates}
	}
	return Ready
}
