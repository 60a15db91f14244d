package voting

import "strings"

// Category is a sentiment label.
type Category string

const (
	Positive Category = "POSITIVE"
	Negative Category = "NEGATIVE"
	Neutral  Category = "NEUTRAL"
)

// Undetermined is the winner reported when no response could be classified.
const Undetermined = "UNABLE TO DETERMINE"

// Categories lists the labels in containment-check priority order.
var Categories = []Category{Positive, Negative, Neutral}

// Classify extracts a vote from a raw model response. The response is
// uppercased and trimmed, then checked for containment of each label in
// Categories order; failing that, its first word must equal a label.
// The bool is false for responses that match neither rule.
func Classify(response string) (Category, bool) {
	s := strings.ToUpper(strings.TrimSpace(response))
	for _, c := range Categories {
		if strings.Contains(s, string(c)) {
			return c, true
		}
	}
	// First-word fallback.
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}
	for _, c := range Categories {
		if fields[0] == string(c) {
			return c, true
		}
	}
	return "", false
}
