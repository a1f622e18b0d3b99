package types

// Confidence is the analysis engine's self-reported certainty.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// IsValid checks if the confidence is valid.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

// Normalize returns the confidence, treating empty or unknown values as
// ConfidenceMedium.
func (c Confidence) Normalize() Confidence {
	if !c.IsValid() {
		return ConfidenceMedium
	}
	return c
}

// String returns the string representation of the confidence.
func (c Confidence) String() string {
	return string(c)
}
