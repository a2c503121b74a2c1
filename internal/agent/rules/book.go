// Package rules holds the rule book the bot answers from and the ranked
// matchers compiled out of it.
package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/papashirogane/chatbot/internal/agent/grammar"
	errx "github.com/papashirogane/chatbot/internal/core/error"
)

//go:embed data/rules.yaml
var defaultRules []byte

// Book is the immutable rule data of a bot. Pools are referenced by name.
type Book struct {
	Pools       map[string][]string `yaml:"pools"`
	Empty       string              `yaml:"empty"`
	Repeat      RepeatRule          `yaml:"repeat"`
	Lyric       LyricConfig         `yaml:"lyric"`
	Structural  StructuralConfig    `yaml:"structural"`
	Keywords    KeywordConfig       `yaml:"keywords"`
	SingleWord  SingleWordConfig    `yaml:"single_word"`
	Fallback    string              `yaml:"fallback"`
	NameCapture NameCaptureConfig   `yaml:"name_capture"`
	Grammar     grammar.Tables      `yaml:"grammar"`
}

type RepeatRule struct {
	Pool string `yaml:"pool"`
	// Limit is the occurrence of the same line, this one included, that counts as a repeat.
	Limit int `yaml:"limit"`
	// LongLine is the length from which a single earlier occurrence is enough.
	LongLine int `yaml:"long_line"`
}

type LyricConfig struct {
	Solo      string   `yaml:"solo"`
	SoloReply string   `yaml:"solo_reply"`
	Suffix    string   `yaml:"suffix"`
	Lines     []string `yaml:"lines"`
}

type TokenRule struct {
	Tokens []string `yaml:"tokens"`
	Pool   string   `yaml:"pool"`
}

type NameQueryRule struct {
	Triggers []string `yaml:"triggers"`
	Reply    string   `yaml:"reply"`
}

type QuestionRule struct {
	MinTokens int     `yaml:"min_tokens"`
	Marker    string  `yaml:"marker"`
	Groups    []Group `yaml:"groups"`
	Fallback  string  `yaml:"fallback"`
}

type SimilarityRule struct {
	Triggers []string `yaml:"triggers"`
	Token    string   `yaml:"token"`
	Pool     string   `yaml:"pool"`
}

type DuplicateRule struct {
	Ignore []string `yaml:"ignore"`
	Pool   string   `yaml:"pool"`
}

type StructuralConfig struct {
	Greeting   TokenRule      `yaml:"greeting"`
	NameQuery  NameQueryRule  `yaml:"name_query"`
	Questions  QuestionRule   `yaml:"questions"`
	Similarity SimilarityRule `yaml:"similarity"`
	Duplicates DuplicateRule  `yaml:"duplicates"`
	Going      TokenRule      `yaml:"going"`
}

// TriggerSet is a list of triggers answered from one pool.
type TriggerSet struct {
	Triggers []string `yaml:"triggers"`
	Pool     string   `yaml:"pool"`
	// NegatedPool answers instead of Pool when the line also carries a negation.
	NegatedPool string `yaml:"negated_pool"`
}

// Group is a rule group. The shorthand fields describe a single trigger set;
// Sets describes several, tried in order.
type Group struct {
	Name         string       `yaml:"name"`
	Triggers     []string     `yaml:"triggers"`
	Pool         string       `yaml:"pool"`
	NegatedPool  string       `yaml:"negated_pool"`
	Sets         []TriggerSet `yaml:"sets"`
	SubjectAware bool         `yaml:"subject_aware"`
}

// TriggerSets returns the shorthand set followed by the explicit ones.
func (g Group) TriggerSets() []TriggerSet {
	var out []TriggerSet
	if len(g.Triggers) > 0 || g.Pool != "" {
		out = append(out, TriggerSet{Triggers: g.Triggers, Pool: g.Pool, NegatedPool: g.NegatedPool})
	}
	return append(out, g.Sets...)
}

type KeywordConfig struct {
	Negations []string `yaml:"negations"`
	AboutBot  string   `yaml:"about_bot"`
	AboutUser string   `yaml:"about_user"`
	Groups    []Group  `yaml:"groups"`
}

type SingleWordConfig struct {
	Groups []Group  `yaml:"groups"`
	Echoes []string `yaml:"echoes"`
}

type NameCaptureConfig struct {
	Phrases         [][]string `yaml:"phrases"`
	Reply           string     `yaml:"reply"`
	RejectStopwords bool       `yaml:"reject_stopwords"`
}

// Default decodes the rule book embedded in the binary.
func Default() (*Book, error) {
	return Load(bytes.NewReader(defaultRules))
}

// LoadFile decodes and validates a rule book from disk.
func LoadFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.New(err, errx.CodeInvalidConfig, "open rule book")
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a rule book. Unknown keys are rejected.
func Load(r io.Reader) (*Book, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Book
	if err := dec.Decode(&b); err != nil {
		return nil, errx.New(err, errx.CodeInvalidConfig, "decode rule book")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks every construction-time invariant: pools are non-empty,
// every referenced pool exists, and every trigger list is usable.
func (b *Book) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for name, responses := range b.Pools {
		if len(responses) == 0 {
			fail("pool %q has no responses", name)
		}
		for i, r := range responses {
			if r == "" {
				fail("pool %q: response %d is empty", name, i)
			}
		}
	}

	ref := func(where, name string, required bool) {
		if name == "" {
			if required {
				fail("%s: no pool", where)
			}
			return
		}
		if _, ok := b.Pools[name]; !ok {
			fail("%s: unknown pool %q", where, name)
		}
	}
	groups := func(where string, gs []Group) {
		for i, g := range gs {
			sets := g.TriggerSets()
			if len(sets) == 0 {
				fail("%s group %d (%s): no triggers", where, i, g.Name)
			}
			for j, s := range sets {
				at := fmt.Sprintf("%s group %s set %d", where, g.Name, j)
				if len(s.Triggers) == 0 {
					fail("%s: no triggers", at)
				}
				for _, t := range s.Triggers {
					if t == "" {
						fail("%s: empty trigger", at)
					}
				}
				ref(at, s.Pool, true)
				ref(at+" negated", s.NegatedPool, false)
			}
		}
	}

	ref("empty", b.Empty, true)
	ref("repeat", b.Repeat.Pool, true)
	if b.Repeat.Limit < 1 {
		fail("repeat: limit must be at least 1")
	}
	if b.Repeat.LongLine < 1 {
		fail("repeat: long_line must be at least 1")
	}
	ref("fallback", b.Fallback, true)

	if len(b.Lyric.Lines) < 2 {
		fail("lyric: needs at least two lines")
	}
	for i, l := range b.Lyric.Lines {
		if l == "" {
			fail("lyric: line %d is empty", i)
		}
	}

	s := b.Structural
	ref("structural greeting", s.Greeting.Pool, true)
	if s.NameQuery.Reply == "" {
		fail("structural name_query: no reply")
	}
	groups("structural questions", s.Questions.Groups)
	ref("structural questions fallback", s.Questions.Fallback, true)
	if s.Questions.Marker == "" {
		fail("structural questions: no marker")
	}
	ref("structural similarity", s.Similarity.Pool, true)
	ref("structural duplicates", s.Duplicates.Pool, true)
	ref("structural going", s.Going.Pool, true)

	groups("keywords", b.Keywords.Groups)
	ref("keywords about_bot", b.Keywords.AboutBot, true)
	ref("keywords about_user", b.Keywords.AboutUser, true)

	groups("single_word", b.SingleWord.Groups)
	if len(b.SingleWord.Echoes) == 0 {
		fail("single_word: no echoes")
	}

	for i, p := range b.NameCapture.Phrases {
		if len(p) == 0 {
			fail("name_capture: phrase %d is empty", i)
		}
	}
	if b.NameCapture.Reply == "" {
		fail("name_capture: no reply")
	}

	if err := errors.Join(errs...); err != nil {
		return errx.New(err, errx.CodeInvalidConfig, "invalid rule book")
	}
	return nil
}
