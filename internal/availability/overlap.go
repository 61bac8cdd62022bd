package availability

import (
	"time"

	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

// Slot is one requested or booked time range on a single calendar day.
type Slot struct {
	Date  time.Time       `json:"date"`
	Start types.TimeOfDay `json:"start_time"`
	End   types.TimeOfDay `json:"end_time"`
}

// DateKey normalizes the slot date for same-day comparison.
func (s Slot) DateKey() string {
	return s.Date.Format("2006-01-02")
}

// Overlaps reports whether two half-open [start,end) ranges intersect.
// Back-to-back ranges (a.End == b.Start) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Conflicts reports whether two slots collide: same day and intersecting
// time ranges.
func Conflicts(a, b Slot) bool {
	if a.DateKey() != b.DateKey() {
		return false
	}
	return Overlaps(a.Start, a.End, b.Start, b.End)
}

// FindConflicts returns the requested slots that collide with any booked
// slot or with another requested slot. The result preserves request order
// and holds each conflicting slot once.
func FindConflicts(requested, booked []Slot) []Slot {
	conflicted := make([]bool, len(requested))

	for i, req := range requested {
		for _, slot := range booked {
			if Conflicts(req, slot) {
				conflicted[i] = true
				break
			}
		}
	}

	// a request that overlaps itself is rejected the same way
	for i := range requested {
		for j := i + 1; j < len(requested); j++ {
			if Conflicts(requested[i], requested[j]) {
				conflicted[i] = true
				conflicted[j] = true
			}
		}
	}

	var out []Slot
	for i, hit := range conflicted {
		if hit {
			out = append(out, requested[i])
		}
	}
	return out
}
