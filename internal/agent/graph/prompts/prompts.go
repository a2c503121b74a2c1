package prompts

import (
	"sort"
	"strings"
)

// Vars maps placeholder names (without braces) to their values.
type Vars map[string]string

// Render replaces every {name} placeholder known to vars. Unknown placeholders are left as is.
func Render(template string, vars Vars) string {
	if len(vars) == 0 {
		return template
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RenderAll renders each template with the same vars.
func RenderAll(templates []string, vars Vars) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = Render(t, vars)
	}
	return out
}

// Squash collapses whitespace runs left behind by empty placeholders.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
