package nodes

import (
	"unicode"
	"unicode/utf8"
)

// Node keys, in cascade order.
const (
	NodeEmptyCheck  = "EmptyCheck"
	NodeRepeatCheck = "RepeatCheck"
	NodeLyric       = "Lyric"
	NodeStructural  = "Structural"
	NodeRhetorical  = "Rhetorical"
	NodeKeyword     = "Keyword"
	NodeSingleWord  = "SingleWord"
	NodeFallback    = "Fallback"
	NodeFinalize    = "Finalize"
)

// Stages lists the nodes that may answer a turn, in the order they are tried.
var Stages = []string{
	NodeEmptyCheck,
	NodeRepeatCheck,
	NodeLyric,
	NodeStructural,
	NodeRhetorical,
	NodeKeyword,
	NodeSingleWord,
	NodeFallback,
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
