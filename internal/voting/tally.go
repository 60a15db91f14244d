package voting

import (
	"fmt"
	"strings"
)

// TieBreak picks the winner among categories with equal top counts.
type TieBreak int

const (
	// TieBreakFirstSeen prefers the category whose first vote came earliest.
	// Votes are ordered by prompt variant, so the result is deterministic.
	TieBreakFirstSeen TieBreak = iota
	// TieBreakPriority prefers POSITIVE, then NEGATIVE, then NEUTRAL.
	TieBreakPriority
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakPriority:
		return "priority"
	default:
		return "first-seen"
	}
}

// ParseTieBreak accepts "first-seen" (or "") and "priority".
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-seen", "first_seen":
		return TieBreakFirstSeen, nil
	case "priority":
		return TieBreakPriority, nil
	default:
		return TieBreakFirstSeen, fmt.Errorf("unknown tie-break %q (want first-seen or priority)", s)
	}
}

// Tally counts votes per category and remembers first-seen order.
type Tally struct {
	Counts map[Category]int `json:"counts"`
	Order  []Category       `json:"order"`
}

// NewTally counts votes in order.
func NewTally(votes []Category) *Tally {
	t := &Tally{Counts: make(map[Category]int)}
	for _, v := range votes {
		t.Add(v)
	}
	return t
}

// Add records one vote.
func (t *Tally) Add(c Category) {
	if _, ok := t.Counts[c]; !ok {
		t.Order = append(t.Order, c)
	}
	t.Counts[c]++
}

// Total returns the number of recorded votes.
func (t *Tally) Total() int {
	n := 0
	for _, c := range t.Counts {
		n += c
	}
	return n
}

// Winner returns the plurality category, or false when the tally is empty.
func (t *Tally) Winner(tb TieBreak) (Category, bool) {
	candidates := t.Order
	if tb == TieBreakPriority {
		candidates = Categories
	}
	var best Category
	bestCount := 0
	for _, c := range candidates {
		if n := t.Counts[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, bestCount > 0
}

// Share is one row of a vote distribution.
type Share struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Percent  float64  `json:"percent"`
}

// Distribution returns each category's share of the votes in first-seen order.
func (t *Tally) Distribution() []Share {
	total := t.Total()
	if total == 0 {
		return nil
	}
	out := make([]Share, 0, len(t.Order))
	for _, c := range t.Order {
		n := t.Counts[c]
		out = append(out, Share{Category: c, Count: n, Percent: float64(n) * 100 / float64(total)})
	}
	return out
}
