package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

// PresetSlot is a named time range offered in the booking wizard. The
// standard presets are four-hour blocks plus a full day.
type PresetSlot struct {
	Name  string          `json:"name"`
	Start types.TimeOfDay `json:"start_time"`
	End   types.TimeOfDay `json:"end_time"`
}

// Hours returns the slot duration in fractional hours.
func (p PresetSlot) Hours() decimal.Decimal {
	return HoursBetween(p.Start, p.End)
}

var presetSlots = []PresetSlot{
	{Name: "morning", Start: "08:00", End: "12:00"},
	{Name: "afternoon", Start: "12:00", End: "16:00"},
	{Name: "evening", Start: "16:00", End: "20:00"},
	{Name: "full_day", Start: "08:00", End: "20:00"},
}

// Presets returns the selectable preset slots in display order.
func Presets() []PresetSlot {
	out := make([]PresetSlot, len(presetSlots))
	copy(out, presetSlots)
	return out
}

// PresetByName looks up a preset slot by its name, case-insensitively.
func PresetByName(name string) (PresetSlot, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, slot := range presetSlots {
		if slot.Name == needle {
			return slot, true
		}
	}
	return PresetSlot{}, false
}
