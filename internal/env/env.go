// Package env implements the singly-linked lexical environment shared by
// the compiler's local-variable bindings and its label bindings: a chain
// of (name, value, next) nodes where lookup returns the first match,
// giving nearer bindings precedence — this is how shadowing works.
package env

import "github.com/samber/lo"

// Env is one binding frame. A nil *Env is the empty environment.
type Env struct {
	name  string
	value int
	next  *Env
}

// Extend returns a new environment with name bound to value, shadowing
// any existing binding of the same name reachable through next.
func Extend(next *Env, name string, value int) *Env {
	return &Env{name: name, value: value, next: next}
}

// Lookup walks the chain from nearest to farthest binding and returns the
// first match. The second result is false if name is unbound.
func Lookup(e *Env, name string) (int, bool) {
	for cur := e; cur != nil; cur = cur.next {
		if cur.name == name {
			return cur.value, true
		}
	}
	return 0, false
}

// Names returns every bound name, nearest first, for diagnostics on an
// unbound-variable error.
func Names(e *Env) []string {
	var frames []*Env
	for cur := e; cur != nil; cur = cur.next {
		frames = append(frames, cur)
	}
	return lo.Map(frames, func(f *Env, _ int) string { return f.name })
}
