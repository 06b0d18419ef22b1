// Package spintax expands alternation templates of the form {a|b|c}
// into one randomly chosen alternative.
package spintax

import (
	"math/rand"
	"strings"
	"sync"
)

// Expander picks alternatives using its own random source so tests can
// pin the seed and assert the set of reachable outputs.
type Expander struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns an Expander backed by the given source.
func New(src rand.Source) *Expander {
	return &Expander{rnd: rand.New(src)}
}

// Expand replaces every {a|b|c} span in text with one alternative,
// trimmed of surrounding whitespace. The first closing brace ends a
// span, spans do not nest. Unbalanced braces are left untouched.
func (e *Expander) Expand(text string) string {
	var b strings.Builder
	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			// No matching brace anywhere ahead: literal passthrough.
			b.WriteString(rest)
			return b.String()
		}
		closing += open
		inner := rest[open+1 : closing]
		if inner == "" {
			// "{}" carries no alternatives, keep it as written.
			b.WriteString(rest[:closing+1])
			rest = rest[closing+1:]
			continue
		}
		b.WriteString(rest[:open])
		b.WriteString(e.choose(strings.Split(inner, "|")))
		rest = rest[closing+1:]
	}
}

func (e *Expander) choose(options []string) string {
	e.mu.Lock()
	i := e.rnd.Intn(len(options))
	e.mu.Unlock()
	return strings.TrimSpace(options[i])
}
