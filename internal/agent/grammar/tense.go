package grammar

import "strings"

// Tense is one of the twelve time/aspect combinations. The absence of a tense
// is reported through the boolean of FindTense, never as a Tense value.
type Tense int

const (
	PastSimple Tense = iota
	PastProgressive
	PastPerfect
	PastPerfectProgressive
	PresentSimple
	PresentProgressive
	PresentPerfect
	PresentPerfectProgressive
	FutureSimple
	FutureProgressive
	FuturePerfect
	FuturePerfectProgressive
)

var tenseNames = [...]string{
	PastSimple:                "past-simple",
	PastProgressive:           "past-progressive",
	PastPerfect:               "past-perfect",
	PastPerfectProgressive:    "past-perfect-progressive",
	PresentSimple:             "present-simple",
	PresentProgressive:        "present-progressive",
	PresentPerfect:            "present-perfect",
	PresentPerfectProgressive: "present-perfect-progressive",
	FutureSimple:              "future-simple",
	FutureProgressive:         "future-progressive",
	FuturePerfect:             "future-perfect",
	FuturePerfectProgressive:  "future-perfect-progressive",
}

func (t Tense) String() string {
	if t < 0 || int(t) >= len(tenseNames) {
		return "unknown"
	}
	return tenseNames[t]
}

// ParseTense resolves a tense by its kebab-case name.
func ParseTense(name string) (Tense, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range tenseNames {
		if n == name {
			return Tense(i), true
		}
	}
	return 0, false
}

// TenseRule maps a pre-verb phrase and a verb suffix marker onto a tense.
type TenseRule struct {
	Before string `yaml:"before"`
	Marker string `yaml:"marker"`
	Tense  string `yaml:"tense"`
}

type tenseRow struct {
	before string
	marker string
	tense  Tense
}

// FindTense returns the tense of the first row whose phrase and marker both occur in raw.
func (e *Engine) FindTense(raw string) (Tense, bool) {
	for _, row := range e.tenses {
		if strings.Contains(raw, row.before) && strings.Contains(raw, row.marker) {
			return row.tense, true
		}
	}
	return 0, false
}

// Auxiliary picks the be/have/do form for a tense and a subject as the bot addresses it.
// Combinations without a form yield "".
func Auxiliary(t Tense, subject string) string {
	first := subject == "i"
	plural := subject == "you" || subject == "we" || subject == "they"
	third := subject == "he" || subject == "she" || subject == "it"

	switch t {
	case PastPerfect, PastPerfectProgressive:
		return "had"
	case PastProgressive:
		switch {
		case first || third:
			return "was"
		case plural:
			return "were"
		}
	case PresentProgressive:
		switch {
		case first:
			return "am"
		case plural:
			return "are"
		case third:
			return "is"
		}
	case PresentPerfect, PresentPerfectProgressive:
		switch {
		case first || plural:
			return "have"
		case third:
			return "has"
		}
	case PresentSimple:
		switch {
		case first || plural:
			return "do"
		case third:
			return "does"
		}
	}
	return ""
}
