// Package grammar detects a verb, its tense and its subject in a line and turns
// them into a rhetorical question.
package grammar

import (
	"sort"

	"github.com/papashirogane/chatbot/internal/agent/graph/prompts"
	errx "github.com/papashirogane/chatbot/internal/core/error"
)

// Tables is the word data the engine runs on.
type Tables struct {
	Verbs       VerbClasses         `yaml:"verbs"`
	Tenses      []TenseRule         `yaml:"tenses"`
	Subjects    map[string]string   `yaml:"subjects"`
	Reflections map[string]string   `yaml:"reflections"`
	Questions   map[string][]string `yaml:"questions"`
}

type Engine struct {
	verbs       [4][]string
	tenses      []tenseRow
	subjects    map[string]string
	reflections map[string]string
	questions   map[Tense][]string
}

// New validates t and builds an engine over it.
func New(t Tables) (*Engine, error) {
	e := &Engine{
		verbs:       t.Verbs.ordered(),
		subjects:    make(map[string]string, len(t.Subjects)),
		reflections: make(map[string]string, len(t.Reflections)),
		questions:   make(map[Tense][]string, len(t.Questions)),
	}

	for class, stems := range e.verbs {
		for _, s := range stems {
			if s == "" {
				return nil, errx.Invalid("verb class %d has an empty stem", class)
			}
		}
	}

	if len(t.Tenses) == 0 {
		return nil, errx.Invalid("no tense rules")
	}
	for i, r := range t.Tenses {
		tense, ok := ParseTense(r.Tense)
		if !ok {
			return nil, errx.Invalid("tense rule %d: unknown tense %q", i, r.Tense)
		}
		if r.Before == "" && r.Marker == "" {
			return nil, errx.Invalid("tense rule %d matches every line", i)
		}
		e.tenses = append(e.tenses, tenseRow{before: r.Before, marker: r.Marker, tense: tense})
	}

	if len(t.Subjects) == 0 {
		return nil, errx.Invalid("no subject pronouns")
	}
	for tok, canonical := range t.Subjects {
		if tok == "" || canonical == "" {
			return nil, errx.Invalid("subject table has an empty entry")
		}
		e.subjects[tok] = canonical
	}
	for from, to := range t.Reflections {
		e.reflections[from] = to
	}

	names := make([]string, 0, len(t.Questions))
	for name := range t.Questions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tense, ok := ParseTense(name)
		if !ok {
			return nil, errx.Invalid("questions: unknown tense %q", name)
		}
		if len(t.Questions[name]) == 0 {
			return nil, errx.Invalid("questions for %s are empty", tense)
		}
		e.questions[tense] = t.Questions[name]
	}
	// Every tense a rule can produce needs questions.
	for _, row := range e.tenses {
		if _, ok := e.questions[row.tense]; !ok {
			return nil, errx.Invalid("no questions for %s", row.tense)
		}
	}
	return e, nil
}

// Analysis is the grammar of one line. It lives for a single turn.
type Analysis struct {
	Subject    Subject
	HasSubject bool
	Verb       Verb
	HasVerb    bool
	Tense      Tense
	HasTense   bool
	// Aux is the auxiliary for Tense and the mirrored subject; may be "".
	Aux string
	// Rest is the reflected remainder after the verb, each word preceded by a space.
	Rest string
}

// Complete reports whether a question can be built.
func (a Analysis) Complete() bool {
	return a.HasVerb && a.HasTense && a.HasSubject
}

// Analyze resolves the verb, tense, subject and remainder of a line.
func (e *Engine) Analyze(tokens []string, raw string) Analysis {
	var a Analysis
	a.Subject, a.HasSubject = e.FindSubject(tokens)
	a.Verb, a.HasVerb = e.FindVerb(tokens)
	if !a.HasVerb {
		return a
	}
	a.Tense, a.HasTense = e.FindTense(raw)
	if a.HasTense && a.HasSubject {
		a.Aux = Auxiliary(a.Tense, a.Subject.Mirrored)
	}
	if a.Verb.Position+1 < len(tokens) {
		a.Rest = e.Reflect(tokens[a.Verb.Position+1:])
	}
	return a
}

// Questions renders every question template of the analysed tense.
// It returns nil when the analysis is incomplete.
func (e *Engine) Questions(a Analysis) []string {
	if !a.Complete() {
		return nil
	}
	vars := prompts.Vars{
		"subject":   a.Subject.Mirrored,
		"be":        a.Aux,
		"verb":      a.Verb.Token,
		"verb_pres": a.Verb.Present,
		"verb_ed":   a.Verb.Past,
		"verb_ing":  a.Verb.Progressive,
		"rest":      a.Rest,
	}
	out := prompts.RenderAll(e.questions[a.Tense], vars)
	for i := range out {
		out[i] = prompts.Squash(out[i])
	}
	return out
}
