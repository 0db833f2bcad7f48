package domain

// Priority ranks a task from 1 (lowest) to 5 (highest). Zero means unset.
type Priority int

const (
	PriorityMin     Priority = 1
	PriorityMax     Priority = 5
	PriorityDefault Priority = 2
)

// Valid reports whether p lies within PriorityMin and PriorityMax.
func (p Priority) Valid() bool { return p >= PriorityMin && p <= PriorityMax }

// Normalize maps unset to PriorityDefault and clamps into range.
func (p Priority) Normalize() Priority {
	switch {
	case p == 0:
		return PriorityDefault
	case p < PriorityMin:
		return PriorityMin
	case p > PriorityMax:
		return PriorityMax
	}
	return p
}

// Label is the five-level display label.
func (p Priority) Label() string {
	switch p.Normalize() {
	case 1:
		return "Baixa"
	case 2:
		return "Normal"
	case 3:
		return "Média"
	case 4:
		return "Alta"
	default:
		return "Crítica"
	}
}

// Tier buckets the five-level priority into the four reporting tiers.
// This is the only priority-to-tier mapping in the module:
// 1 low, 2 medium, 3 high, 4 and 5 urgent.
func (p Priority) Tier() PriorityTier {
	switch p.Normalize() {
	case 1:
		return TierLow
	case 2:
		return TierMedium
	case 3:
		return TierHigh
	default:
		return TierUrgent
	}
}

// PriorityTier is a coarse priority bucket used in reports.
type PriorityTier string

const (
	TierLow    PriorityTier = "low"
	TierMedium PriorityTier = "medium"
	TierHigh   PriorityTier = "high"
	TierUrgent PriorityTier = "urgent"
)

// PriorityTiers lists tiers from lowest to highest.
var PriorityTiers = []PriorityTier{TierLow, TierMedium, TierHigh, TierUrgent}

func (t PriorityTier) Label() string {
	switch t {
	case TierLow:
		return "Baixa"
	case TierMedium:
		return "Média"
	case TierHigh:
		return "Alta"
	case TierUrgent:
		return "Urgente"
	}
	return string(t)
}
