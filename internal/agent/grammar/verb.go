package grammar

import "strings"

// VerbClass selects the suffixing rule of a present-tense stem.
type VerbClass int

const (
	// Doubling stems double their last consonant: admit, admitted, admitting.
	Doubling VerbClass = iota
	// Regular stems take the suffix unchanged: eat, eated, eating.
	Regular
	// SilentE stems drop a trailing e: desir, desire, desired, desiring.
	SilentE
	// YStem stems drop a trailing y: cr, cry, cried, crying.
	YStem
)

// VerbClasses holds the stems of each class, in match order.
type VerbClasses struct {
	Doubling []string `yaml:"doubling"`
	Regular  []string `yaml:"regular"`
	SilentE  []string `yaml:"silent_e"`
	YStem    []string `yaml:"y_stem"`
}

func (v VerbClasses) ordered() [4][]string {
	return [4][]string{v.Doubling, v.Regular, v.SilentE, v.YStem}
}

// Verb is the first verb found in a line.
type Verb struct {
	// Token is the word as the user wrote it, e.g. "eating".
	Token string
	// Position is the index of Token in the line.
	Position    int
	Stem        string
	Class       VerbClass
	Present     string
	Past        string
	Progressive string
}

// Conjugate derives the present, -ed and -ing forms of a stem.
func Conjugate(stem string, class VerbClass) (present, past, progressive string) {
	if stem == "" {
		return "", "", ""
	}
	switch class {
	case Doubling:
		doubled := stem + stem[len(stem)-1:]
		return stem, doubled + "ed", doubled + "ing"
	case SilentE:
		return stem + "e", stem + "ed", stem + "ing"
	case YStem:
		return stem + "y", stem + "ied", stem + "ying"
	default:
		return stem, stem + "ed", stem + "ing"
	}
}

// FindVerb scans tokens in order and returns the first one that starts with a known stem.
// Within a token, classes are tried from Doubling to YStem.
func (e *Engine) FindVerb(tokens []string) (Verb, bool) {
	for pos, tok := range tokens {
		if tok == "" {
			continue
		}
		for class, stems := range e.verbs {
			for _, stem := range stems {
				if !strings.HasPrefix(tok, stem) {
					continue
				}
				v := Verb{Token: tok, Position: pos, Stem: stem, Class: VerbClass(class)}
				v.Present, v.Past, v.Progressive = Conjugate(stem, v.Class)
				return v, true
			}
		}
	}
	return Verb{}, false
}
