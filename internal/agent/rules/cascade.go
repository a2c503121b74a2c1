package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/orsinium-labs/stopwords"

	"github.com/papashirogane/chatbot/internal/agent/grammar"
	"github.com/papashirogane/chatbot/internal/agent/graph/prompts"
	"github.com/papashirogane/chatbot/internal/agent/model"
)

// Match is the outcome of a rank. Exactly one of Pool, Choices or Text is set:
// a named pool to draw from, a request-scoped set of candidates, or a literal reply.
type Match struct {
	Rule    string
	Trigger string
	Pool    string
	Choices []string
	Text    string
}

func poolMatch(rule, trigger, pool string) (Match, bool) {
	return Match{Rule: rule, Trigger: trigger, Pool: pool}, true
}

type compiledGroup struct {
	name         string
	subjectAware bool
	matcher      *Matcher
	// setOf maps a trigger index of matcher onto its trigger set.
	setOf []int
	sets  []TriggerSet
}

func compileGroup(g Group) (*compiledGroup, error) {
	cg := &compiledGroup{name: g.Name, subjectAware: g.SubjectAware, sets: g.TriggerSets()}
	var triggers []string
	for i, s := range cg.sets {
		for _, t := range s.Triggers {
			triggers = append(triggers, t)
			cg.setOf = append(cg.setOf, i)
		}
	}
	m, err := NewMatcher(triggers)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", g.Name, err)
	}
	cg.matcher = m
	return cg, nil
}

func compileGroups(gs []Group) ([]*compiledGroup, error) {
	out := make([]*compiledGroup, 0, len(gs))
	for _, g := range gs {
		cg, err := compileGroup(g)
		if err != nil {
			return nil, err
		}
		out = append(out, cg)
	}
	return out, nil
}

// find returns the set and trigger of the first trigger contained in raw.
func (g *compiledGroup) find(raw string) (TriggerSet, string, bool) {
	i, ok := g.matcher.Find(raw)
	if !ok {
		return TriggerSet{}, "", false
	}
	return g.sets[g.setOf[i]], g.matcher.Trigger(i), true
}

// findToken returns the set holding a trigger equal to tok.
func (g *compiledGroup) findToken(tok string) (TriggerSet, bool) {
	for _, s := range g.sets {
		for _, t := range s.Triggers {
			if t == tok {
				return s, true
			}
		}
	}
	return TriggerSet{}, false
}

// LyricRule answers a line of a song with the line that follows it.
// A line that occurs several times alternates between the follow-ups of its
// first two occurrences.
type LyricRule struct {
	solo      string
	soloReply string
	suffix    string
	lines     []string
	matcher   *Matcher
	alternate bool
}

func newLyricRule(c LyricConfig) (*LyricRule, error) {
	// The last line has no follow-up.
	m, err := NewMatcher(c.Lines[:len(c.Lines)-1])
	if err != nil {
		return nil, fmt.Errorf("lyric: %w", err)
	}
	return &LyricRule{solo: c.Solo, soloReply: c.SoloReply, suffix: c.Suffix, lines: c.Lines, matcher: m}, nil
}

func (l *LyricRule) reply(in model.NormalizedInput) (Match, bool) {
	if l.solo != "" && in.WordCount() == 1 && in.Has(l.solo) {
		return Match{Rule: "lyric", Trigger: l.solo, Text: l.soloReply}, true
	}
	i, ok := l.matcher.Find(in.Raw)
	if !ok {
		return Match{}, false
	}
	next := i + 1
	if alt, ok := l.secondOccurrence(i); ok {
		if l.alternate {
			next = alt + 1
		}
		l.alternate = !l.alternate
	}
	return Match{Rule: "lyric", Trigger: l.lines[i], Text: l.lines[next] + l.suffix}, true
}

// secondOccurrence finds the next line equal to line i that still has a follow-up.
func (l *LyricRule) secondOccurrence(i int) (int, bool) {
	for j := i + 1; j < len(l.lines)-1; j++ {
		if l.lines[j] == l.lines[i] {
			return j, true
		}
	}
	return 0, false
}

// Cascade is the compiled, per-bot form of a Book. It carries mutable rule
// state and must not be shared between bots.
type Cascade struct {
	book    *Book
	grammar *grammar.Engine
	stop    *stopwords.Stopwords

	lyric *LyricRule

	greeting       map[string]bool
	nameQuery      *Matcher
	questionGroups []*compiledGroup
	similarity     *Matcher
	ignore         map[string]bool
	going          map[string]bool

	negations *Matcher
	keywords  []*compiledGroup

	singles []*compiledGroup
}

// Compile builds the matchers of every rank.
func Compile(b *Book) (*Cascade, error) {
	if b == nil {
		return nil, fmt.Errorf("rule book is nil")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	g, err := grammar.New(b.Grammar)
	if err != nil {
		return nil, err
	}
	c := &Cascade{
		book:     b,
		grammar:  g,
		greeting: set(b.Structural.Greeting.Tokens),
		ignore:   set(b.Structural.Duplicates.Ignore),
		going:    set(b.Structural.Going.Tokens),
	}
	if b.NameCapture.RejectStopwords {
		c.stop = stopwords.MustGet("en")
	}
	if c.lyric, err = newLyricRule(b.Lyric); err != nil {
		return nil, err
	}
	if c.nameQuery, err = NewMatcher(b.Structural.NameQuery.Triggers); err != nil {
		return nil, fmt.Errorf("name query: %w", err)
	}
	if c.questionGroups, err = compileGroups(b.Structural.Questions.Groups); err != nil {
		return nil, err
	}
	if c.similarity, err = NewMatcher(b.Structural.Similarity.Triggers); err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	if c.negations, err = NewMatcher(b.Keywords.Negations); err != nil {
		return nil, fmt.Errorf("negations: %w", err)
	}
	if c.keywords, err = compileGroups(b.Keywords.Groups); err != nil {
		return nil, err
	}
	if c.singles, err = compileGroups(b.SingleWord.Groups); err != nil {
		return nil, err
	}
	return c, nil
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// Grammar returns the grammar engine built from the book.
func (c *Cascade) Grammar() *grammar.Engine {
	return c.grammar
}

// Pools returns the pool definitions of the book.
func (c *Cascade) Pools() map[string][]string {
	return c.book.Pools
}

// Empty answers a line without any word.
func (c *Cascade) Empty(in model.NormalizedInput) (Match, bool) {
	if !in.IsEmpty() {
		return Match{}, false
	}
	return poolMatch("empty", "", c.book.Empty)
}

// Repeat answers a line said too often. repeats counts the earlier occurrences.
func (c *Cascade) Repeat(in model.NormalizedInput, repeats int) (Match, bool) {
	r := c.book.Repeat
	if repeats+1 >= r.Limit || (repeats >= 1 && utf8.RuneCountInString(in.Raw) >= r.LongLine) {
		return poolMatch("repeat", "", r.Pool)
	}
	return Match{}, false
}

// Lyric is rank 0.
func (c *Cascade) Lyric(in model.NormalizedInput) (Match, bool) {
	return c.lyric.reply(in)
}

// Structural is rank 1: greetings, name queries, questions, comparisons,
// repeated words and "going", in that order.
func (c *Cascade) Structural(in model.NormalizedInput, userName string) (Match, bool) {
	s := c.book.Structural

	if first := in.First(); c.greeting[first] {
		return poolMatch("greeting", first, s.Greeting.Pool)
	}

	if i, ok := c.nameQuery.Find(in.Raw); ok {
		reply := prompts.Render(s.NameQuery.Reply, prompts.Vars{"name": userName})
		return Match{Rule: "name_query", Trigger: c.nameQuery.Trigger(i), Text: reply}, true
	}

	if in.WordCount() >= s.Questions.MinTokens && contains(in.Raw, s.Questions.Marker) {
		for _, g := range c.questionGroups {
			if ts, trigger, ok := g.find(in.Raw); ok {
				return poolMatch("question:"+g.name, trigger, ts.Pool)
			}
		}
		return poolMatch("question", s.Questions.Marker, s.Questions.Fallback)
	}

	if i, ok := c.similarity.Find(in.Raw); ok && in.Has(s.Similarity.Token) {
		return poolMatch("similarity", c.similarity.Trigger(i), s.Similarity.Pool)
	}

	if tok, ok := c.repeatedWord(in); ok {
		return poolMatch("duplicate", tok, s.Duplicates.Pool)
	}

	for _, tok := range in.Tokens {
		if c.going[tok] {
			return poolMatch("going", tok, s.Going.Pool)
		}
	}
	return Match{}, false
}

// repeatedWord finds the first word used twice, skipping determiners and subject pronouns.
func (c *Cascade) repeatedWord(in model.NormalizedInput) (string, bool) {
	seen := make(map[string]bool, len(in.Tokens))
	for _, tok := range in.Tokens {
		if tok == "" || c.ignore[tok] || c.grammar.IsSubjectForm(tok) {
			continue
		}
		if seen[tok] {
			return tok, true
		}
		seen[tok] = true
	}
	return "", false
}

// Rhetorical is rank 2: a question built from the verb, tense and subject of the line.
func (c *Cascade) Rhetorical(a grammar.Analysis) (Match, bool) {
	questions := c.grammar.Questions(a)
	if len(questions) == 0 {
		return Match{}, false
	}
	return Match{Rule: "rhetorical:" + a.Tense.String(), Trigger: a.Verb.Token, Choices: questions}, true
}

// Keyword is rank 3. Subject-aware groups answer with a reaction about the bot
// or the user when the line has a first or second person subject; otherwise a
// negation switches a set to its negated pool.
func (c *Cascade) Keyword(in model.NormalizedInput, a grammar.Analysis) (Match, bool) {
	k := c.book.Keywords
	negated := c.negations.Contains(in.Raw)

	for _, g := range c.keywords {
		ts, trigger, ok := g.find(in.Raw)
		if !ok {
			continue
		}
		rule := "keyword:" + g.name
		if g.subjectAware && a.HasSubject {
			switch a.Subject.Mirrored {
			case "i":
				return poolMatch(rule+":about_bot", trigger, k.AboutBot)
			case "you":
				return poolMatch(rule+":about_user", trigger, k.AboutUser)
			}
		}
		if negated && ts.NegatedPool != "" {
			return poolMatch(rule+":negated", trigger, ts.NegatedPool)
		}
		return poolMatch(rule, trigger, ts.Pool)
	}
	return Match{}, false
}

// SingleWord is rank 4. It only answers lines of exactly one token, so a
// stray space ("blue ") makes the line two tokens and skips it.
func (c *Cascade) SingleWord(in model.NormalizedInput) (Match, bool) {
	if len(in.Tokens) != 1 || in.Tokens[0] == "" {
		return Match{}, false
	}
	word := in.Tokens[0]
	for _, g := range c.singles {
		if ts, ok := g.findToken(word); ok {
			return poolMatch("single:"+g.name, word, ts.Pool)
		}
	}
	echoes := prompts.RenderAll(c.book.SingleWord.Echoes, prompts.Vars{"word": word})
	return Match{Rule: "echo", Trigger: word, Choices: echoes}, true
}

// Fallback always answers.
func (c *Cascade) Fallback() Match {
	return Match{Rule: "fallback", Pool: c.book.Fallback}
}

// CaptureName returns the name the user gives in "my name is X" style phrases,
// as the user wrote it.
func (c *Cascade) CaptureName(in model.NormalizedInput) (string, bool) {
	for _, phrase := range c.book.NameCapture.Phrases {
		at, ok := in.IndexSeq(phrase)
		if !ok {
			continue
		}
		word, ok := in.Word(at)
		if !ok || word == "" {
			continue
		}
		if c.stop != nil && c.stop.Contains(in.Tokens[at]) {
			continue
		}
		return word, true
	}
	return "", false
}

// NameAck is the reply to a captured name.
func (c *Cascade) NameAck(name string) string {
	return prompts.Render(c.book.NameCapture.Reply, prompts.Vars{"name": name})
}

func contains(raw, marker string) bool {
	return marker != "" && strings.Contains(raw, marker)
}
