package rideathon

import "time"

// IsPause reports whether m suspends all distance credit.
func (m Modifier) IsPause() bool { return m.Multiplier == 0 }

// ActiveAt reports whether m applies at t. A modifier without a start is
// active from its creation; one without an end is still open.
func (m Modifier) ActiveAt(t time.Time) bool {
	start := m.CreatedAt
	if m.StartsAt != nil {
		start = *m.StartsAt
	}
	if t.Before(start) {
		return false
	}
	return m.EndsAt == nil || m.EndsAt.After(t)
}

// ActiveModifiers returns the modifiers received by teamID that apply at t.
func ActiveModifiers(mods []Modifier, teamID string, t time.Time) []Modifier {
	var active []Modifier
	for _, m := range mods {
		if m.ReceiverID == teamID && m.ActiveAt(t) {
			active = append(active, m)
		}
	}
	return active
}

// Paused reports whether any zero multiplier received by teamID applies at t.
func Paused(mods []Modifier, teamID string, t time.Time) bool {
	for _, m := range ActiveModifiers(mods, teamID, t) {
		if m.IsPause() {
			return true
		}
	}
	return false
}

// Multiplier is the product of the non-zero multipliers received by teamID
// that apply at t. Pauses are excluded; see Paused.
func Multiplier(mods []Modifier, teamID string, t time.Time) float64 {
	product := 1.0
	for _, m := range ActiveModifiers(mods, teamID, t) {
		if !m.IsPause() {
			product *= m.Multiplier
		}
	}
	return product
}

// OffsetTotal is the amount to subtract from teamID's earned distance at t:
// offsets it received minus offsets it created for other teams.
func OffsetTotal(offsets []Offset, teamID string, t time.Time) float64 {
	var total float64
	for _, o := range offsets {
		if o.CreatedAt.After(t) {
			continue
		}
		switch {
		case o.ReceiverID == teamID:
			total += o.Distance
		case o.CreatorID == teamID:
			total -= o.Distance
		}
	}
	return total
}
