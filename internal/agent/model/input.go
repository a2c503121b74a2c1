package model

// NormalizedInput is one submitted line after normalization.
// Tokens and Words are aligned: Words[i] is Tokens[i] before lowercasing.
type NormalizedInput struct {
	Raw    string
	Tokens []string
	Words  []string
}

// IsEmpty reports whether the line carried no word characters at all.
func (in NormalizedInput) IsEmpty() bool {
	for _, t := range in.Tokens {
		if t != "" {
			return false
		}
	}
	return true
}

// First returns the first token, or "" when there is none.
func (in NormalizedInput) First() string {
	if len(in.Tokens) == 0 {
		return ""
	}
	return in.Tokens[0]
}

// WordCount counts the non-empty tokens.
func (in NormalizedInput) WordCount() int {
	n := 0
	for _, t := range in.Tokens {
		if t != "" {
			n++
		}
	}
	return n
}

// Index returns the position of the first token equal to tok.
func (in NormalizedInput) Index(tok string) (int, bool) {
	for i, t := range in.Tokens {
		if t == tok {
			return i, true
		}
	}
	return 0, false
}

// Has reports whether tok is one of the tokens.
func (in NormalizedInput) Has(tok string) bool {
	_, ok := in.Index(tok)
	return ok
}

// IndexSeq returns the position right after the first occurrence of the token sequence seq.
func (in NormalizedInput) IndexSeq(seq []string) (int, bool) {
	if len(seq) == 0 {
		return 0, false
	}
outer:
	for i := 0; i+len(seq) <= len(in.Tokens); i++ {
		for j, s := range seq {
			if in.Tokens[i+j] != s {
				continue outer
			}
		}
		return i + len(seq), true
	}
	return 0, false
}

// Word returns the case-preserved word at position i.
func (in NormalizedInput) Word(i int) (string, bool) {
	if i < 0 || i >= len(in.Words) {
		return "", false
	}
	return in.Words[i], true
}
