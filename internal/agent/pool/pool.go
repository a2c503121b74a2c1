// Package pool implements response pools that never repeat a response until
// every other response of the pool has been used.
package pool

import (
	"math/rand/v2"
	"sort"

	errx "github.com/papashirogane/chatbot/internal/core/error"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// Pool is an ordered set of responses with one used-flag per response.
type Pool struct {
	responses []string
	used      []bool
}

// New creates a pool over responses. The slice is copied.
func New(responses ...string) *Pool {
	p := &Pool{responses: make([]string, len(responses))}
	copy(p.responses, responses)
	return p
}

// Draw returns a random response that has not been used since the last reset.
// Once every response has been used, all flags are cleared before drawing.
func (p *Pool) Draw(rng *rand.Rand) string {
	n := len(p.responses)
	if n == 0 {
		return ""
	}
	for len(p.used) < n {
		p.used = append(p.used, false)
	}
	if p.exhausted() {
		clear(p.used)
	}
	for {
		i := rng.IntN(n)
		if !p.used[i] {
			p.used[i] = true
			return p.responses[i]
		}
	}
}

func (p *Pool) exhausted() bool {
	for _, u := range p.used[:len(p.responses)] {
		if !u {
			return false
		}
	}
	return true
}

// Set is the collection of named pools owned by one bot instance.
type Set struct {
	pools map[string]*Pool
	rng   *rand.Rand
}

// NewSet builds one fresh pool per definition. Every pool must hold at least one response.
func NewSet(defs map[string][]string, rng *rand.Rand) (*Set, error) {
	if rng == nil {
		return nil, errx.Invalid("pool set needs a random source")
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &Set{pools: make(map[string]*Pool, len(defs)), rng: rng}
	for _, name := range names {
		responses := defs[name]
		if len(responses) == 0 {
			return nil, errx.Invalid("pool %q has no responses", name)
		}
		for i, r := range responses {
			if r == "" {
				return nil, errx.Invalid("pool %q: response %d is empty", name, i)
			}
		}
		s.pools[name] = New(responses...)
	}
	return s, nil
}

// Draw draws from the pool called name. An unknown name yields "".
func (s *Set) Draw(name string) string {
	p, ok := s.pools[name]
	if !ok {
		logx.Error().Str("pool", name).Msg("draw from unknown pool")
		return ""
	}
	return p.Draw(s.rng)
}

// DrawFrom draws from a request-scoped pool built over choices, sharing the set's random source.
func (s *Set) DrawFrom(choices []string) string {
	return New(choices...).Draw(s.rng)
}
