package rules

import (
	"strings"

	"github.com/coregx/ahocorasick"

	errx "github.com/papashirogane/chatbot/internal/core/error"
)

// Matcher finds which of an ordered list of triggers occurs in a line.
// When several occur, the one declared first wins.
type Matcher struct {
	ac       *ahocorasick.Automaton
	triggers []string
	// first maps a pattern id onto the first trigger index using that pattern.
	first []int
}

// NewMatcher compiles triggers into one automaton. Duplicate triggers keep their first position.
func NewMatcher(triggers []string) (*Matcher, error) {
	m := &Matcher{triggers: append([]string(nil), triggers...)}
	if len(triggers) == 0 {
		return m, nil
	}

	index := make(map[string]int, len(triggers))
	patterns := make([]string, 0, len(triggers))
	for i, t := range triggers {
		if t == "" {
			return nil, errx.Invalid("trigger %d is empty", i)
		}
		if _, dup := index[t]; dup {
			continue
		}
		index[t] = len(patterns)
		patterns = append(patterns, t)
		m.first = append(m.first, i)
	}

	// Standard match semantics so overlapping search reports every trigger.
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, errx.New(err, errx.CodeInvalidConfig, "build trigger automaton")
	}
	m.ac = ac
	return m, nil
}

// Find returns the index of the first declared trigger contained in raw.
func (m *Matcher) Find(raw string) (int, bool) {
	if m == nil || m.ac == nil || raw == "" {
		return 0, false
	}
	best := -1
	for _, hit := range m.ac.FindAllOverlapping([]byte(raw)) {
		if hit.PatternID < 0 || hit.PatternID >= len(m.first) {
			continue
		}
		if i := m.first[hit.PatternID]; best < 0 || i < best {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	// The prefilter may skip a trigger nested in another; earlier ones are
	// confirmed directly.
	for i := 0; i < best; i++ {
		if strings.Contains(raw, m.triggers[i]) {
			return i, true
		}
	}
	return best, true
}

// Contains reports whether any trigger occurs in raw.
func (m *Matcher) Contains(raw string) bool {
	_, ok := m.Find(raw)
	return ok
}

// Trigger returns the trigger at index i.
func (m *Matcher) Trigger(i int) string {
	return m.triggers[i]
}
