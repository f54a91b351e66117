package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDisablesPetsWhenRefused(t *testing.T) {
	refuse := false
	cases := []struct {
		name     string
		raw      OptionSelection
		defaults HouseRules
	}{
		{
			name:     "override refuses",
			raw:      OptionSelection{Pets: &PetsOption{Toggle: Toggle{Enabled: true, Offert: true}, Count: intPtr(3)}, PetsAllowed: &refuse},
			defaults: HouseRules{PetsAllowed: true},
		},
		{
			name: "gite refuses",
			raw:  OptionSelection{Pets: &PetsOption{Toggle: Toggle{Enabled: true}}},
		},
		{
			name: "no pets requested",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			normalized := Normalize(tc.raw, tc.defaults)
			require.NotNil(t, normalized.Pets)
			assert.False(t, normalized.Pets.Enabled)
			assert.False(t, normalized.Pets.Offert)
			assert.Equal(t, 0, normalized.Pets.PetCount())
			assert.False(t, *normalized.PetsAllowed)
		})
	}
}

func TestNormalizeKeepsPetsWhenAllowed(t *testing.T) {
	raw := OptionSelection{Pets: &PetsOption{Toggle: Toggle{Enabled: true}, Count: intPtr(2)}}
	normalized := Normalize(raw, HouseRules{PetsAllowed: true, FirstFireWood: true})

	assert.True(t, normalized.Pets.Enabled)
	assert.Equal(t, 2, normalized.Pets.PetCount())
	assert.True(t, *normalized.FirstFireWood)
	assert.False(t, *normalized.ThirdPartyNotice)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := OptionSelection{Pets: &PetsOption{Toggle: Toggle{Enabled: true}, Count: intPtr(2)}}
	_ = Normalize(raw, HouseRules{})
	assert.True(t, raw.Pets.Enabled)
	assert.Nil(t, raw.PetsAllowed)
}

func TestOverrideWinsOverGiteRule(t *testing.T) {
	allow := true
	rules := OptionSelection{PetsAllowed: &allow}.ResolveRules(HouseRules{PetsAllowed: false, ThirdPartyNotice: true})
	assert.True(t, rules.PetsAllowed)
	assert.True(t, rules.ThirdPartyNotice)
}

func TestOptionSelectionWireFormat(t *testing.T) {
	payload := `{
		"draps": {"enabled": true, "nb_lits": 2},
		"linge_toilette": {"enabled": true, "nb_personnes": 1, "offert": true},
		"menage": {"enabled": false},
		"chiens": {"enabled": true},
		"regle_animaux_acceptes": true
	}`
	var selection OptionSelection
	require.NoError(t, json.Unmarshal([]byte(payload), &selection))

	assert.Equal(t, 2, selection.Bedding.BedCount())
	assert.True(t, selection.Towels.IsComplimentary())
	assert.Nil(t, selection.LateCheckout)
	assert.Equal(t, 1, selection.Pets.PetCount())
	assert.True(t, selection.AnyEnabled())
	assert.Equal(t, Kinds[:], kindsOf(selection.All()))
}

func kindsOf(options []Option) []OptionKind {
	out := make([]OptionKind, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Kind())
	}
	return out
}

func TestNormalizeRates(t *testing.T) {
	assert.Equal(t, []float64{0, 90, 110.5}, NormalizeRates([]float64{110.5, 90, -1, 90, 0}))
	assert.Empty(t, NormalizeRates(nil))
}
