package grammar

import "strings"

// Subject is the first subject pronoun found in a line.
type Subject struct {
	Token string
	// Canonical is the base pronoun from the speaker's side: "i'm" is "i".
	Canonical string
	// Mirrored is the same person from the bot's side: the user's "i" is the bot's "you".
	Mirrored string
}

// FindSubject returns the first token that is a known pronoun or contraction of one.
func (e *Engine) FindSubject(tokens []string) (Subject, bool) {
	for _, tok := range tokens {
		if canonical, ok := e.canonicalSubject(tok); ok {
			return Subject{Token: tok, Canonical: canonical, Mirrored: Mirror(canonical)}, true
		}
	}
	return Subject{}, false
}

// IsSubjectForm reports whether tok resolves to a subject pronoun.
func (e *Engine) IsSubjectForm(tok string) bool {
	_, ok := e.canonicalSubject(tok)
	return ok
}

func (e *Engine) canonicalSubject(tok string) (string, bool) {
	if tok == "" {
		return "", false
	}
	if c, ok := e.subjects[tok]; ok {
		return c, true
	}
	// they've, she'd, we'll
	if head, _, found := strings.Cut(tok, "'"); found && head != "" {
		if c, ok := e.subjects[head]; ok {
			return c, true
		}
	}
	return "", false
}

// Mirror swaps the first and second person; "we" becomes "you".
// Other pronouns are returned unchanged.
func Mirror(pronoun string) string {
	switch pronoun {
	case "i", "we":
		return "you"
	case "you":
		return "i"
	default:
		return pronoun
	}
}

// Reflect rewrites tokens from the bot's side, each one preceded by a space.
func (e *Engine) Reflect(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte(' ')
		if r, ok := e.reflections[tok]; ok {
			b.WriteString(r)
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}
