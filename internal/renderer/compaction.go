package renderer

import "context"

// Compaction reports what the overflow loop did.
type Compaction struct {
	OverflowBefore bool
	OverflowAfter  bool
	CompactApplied bool
	Presets        []string
}

// Compact applies presets in order until the first page fits. Presets only
// shrink geometry, so a fitting page stays fitting.
func Compact(ctx context.Context, page Page, presets []Preset, printablePX float64) (Compaction, error) {
	height, err := page.HeightPX(ctx)
	if err != nil {
		return Compaction{}, err
	}
	result := Compaction{OverflowBefore: Overflows(height, printablePX)}
	if !result.OverflowBefore {
		return result, nil
	}

	result.OverflowAfter = true
	for _, preset := range presets {
		if err := page.Apply(ctx, preset); err != nil {
			return result, err
		}
		result.CompactApplied = true
		result.Presets = append(result.Presets, preset.Name)

		height, err = page.HeightPX(ctx)
		if err != nil {
			return result, err
		}
		if !Overflows(height, printablePX) {
			result.OverflowAfter = false
			break
		}
	}
	return result, nil
}
