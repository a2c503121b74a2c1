package parsers

import (
	"strings"

	"github.com/papashirogane/chatbot/internal/agent/model"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// safety limit to avoid pathological inputs
const maxLineLen = 4096

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Normalize splits a line on single spaces into lowercase tokens made of ASCII
// letters and apostrophes. Every other character is dropped, so a token may be
// empty. Raw keeps the whole line with ASCII letters lowercased.
func Normalize(line string) model.NormalizedInput {
	line = strings.ToValidUTF8(line, "�")
	line = apostrophes.Replace(line)
	if len(line) > maxLineLen {
		logx.Warn().Int("length", len(line)).Int("limit", maxLineLen).Msg("input line truncated")
		line = strings.ToValidUTF8(line[:maxLineLen], "")
	}

	fields := strings.Split(line, " ")
	in := model.NormalizedInput{
		Raw:    strings.Map(lowerASCII, line),
		Tokens: make([]string, len(fields)),
		Words:  make([]string, len(fields)),
	}
	for i, f := range fields {
		word := strings.Map(keep, f)
		in.Words[i] = word
		in.Tokens[i] = strings.Map(lowerASCII, word)
	}
	return in
}

func keep(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '\'':
		return r
	}
	return -1
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
