package service

import (
	"slices"
	"strings"
)

// Placeholder syntax.
const (
	PlaceholderPrefix    = "${"
	PlaceholderSuffix    = "}"
	PlaceholderSeparator = ":"
)

// Resolver looks up the value behind a placeholder key.
type Resolver interface {
	Lookup(key string) (string, bool)
}

// MapResolver resolves keys from a map.
type MapResolver map[string]string

// Lookup implements Resolver.
func (m MapResolver) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key string) (string, bool)

// Lookup implements Resolver.
func (f ResolverFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// Chain returns a resolver that asks each resolver in turn; the first hit wins.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(key string) (string, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if v, ok := r.Lookup(key); ok {
				return v, true
			}
		}
		return "", false
	})
}

// Expander substitutes ${key} placeholders.
//
// A placeholder nobody can resolve is left exactly as written and its key is
// reported. Values are expanded recursively; a placeholder that ends up
// referring to itself is also left as written, at the outermost point of the
// cycle, so expanding the output again changes nothing.
//
// That holds only when literal text and substituted values do not join into
// new syntax. Substitution is textual and output spans are not tracked: with
// a={b}, "$${a}" expands to "${b}", which a second pass expands again. There
// is no escape for a literal "${".
type Expander struct {
	// Defaults enables ${key:default}. Off for the early pass, where a
	// default would bind before later sources had a say.
	Defaults bool
}

type expandState struct {
	visiting   map[string]bool
	unresolved []string
}

// Expand returns s with placeholders substituted and the sorted, distinct
// keys that could not be resolved.
func (e Expander) Expand(s string, r Resolver) (string, []string) {
	if !strings.Contains(s, PlaceholderPrefix) {
		return s, nil
	}
	st := &expandState{visiting: map[string]bool{}}
	out, cycle := e.expand(s, r, st)
	if cycle != "" {
		// Unreachable: a cycle always closes at the frame that opened it.
		return s, []string{cycle}
	}
	slices.Sort(st.unresolved)
	return out, slices.Compact(st.unresolved)
}

// ExpandAll expands every value of m against r and returns the expanded
// copy plus the distinct unresolved keys across all values.
func (e Expander) ExpandAll(m map[string]string, r Resolver) (map[string]string, []string) {
	out := make(map[string]string, len(m))
	var unresolved []string
	for k, v := range m {
		expanded, missing := e.Expand(v, r)
		out[k] = expanded
		unresolved = append(unresolved, missing...)
	}
	slices.Sort(unresolved)
	return out, slices.Compact(unresolved)
}

// expand returns the expanded text, or a non-empty cycle key when expansion
// ran into a key already being resolved further up the stack.
func (e Expander) expand(s string, r Resolver, st *expandState) (string, string) {
	var b strings.Builder
	for {
		start := strings.Index(s, PlaceholderPrefix)
		if start < 0 {
			b.WriteString(s)
			return b.String(), ""
		}
		end := placeholderEnd(s, start+len(PlaceholderPrefix))
		if end < 0 {
			// Unterminated: the rest is literal.
			b.WriteString(s)
			return b.String(), ""
		}

		b.WriteString(s[:start])
		whole := s[start : end+len(PlaceholderSuffix)]
		inner := s[start+len(PlaceholderPrefix) : end]
		s = s[end+len(PlaceholderSuffix):]

		key, cycle := e.expand(inner, r, st)
		if cycle != "" {
			return "", cycle
		}

		def, hasDef := "", false
		if e.Defaults {
			if k, d, ok := strings.Cut(key, PlaceholderSeparator); ok {
				key, def, hasDef = k, d, true
			}
		}

		if st.visiting[key] {
			return "", key
		}

		if v, ok := r.Lookup(key); ok {
			st.visiting[key] = true
			out, cycle := e.expand(v, r, st)
			delete(st.visiting, key)
			switch {
			case cycle == "":
				b.WriteString(out)
			case cycle == key:
				b.WriteString(whole)
				st.unresolved = append(st.unresolved, key)
			default:
				return "", cycle
			}
			continue
		}

		if hasDef {
			out, cycle := e.expand(def, r, st)
			if cycle != "" {
				return "", cycle
			}
			b.WriteString(out)
			continue
		}

		b.WriteString(whole)
		st.unresolved = append(st.unresolved, key)
	}
}

// placeholderEnd finds the suffix closing the placeholder whose body starts
// at from, skipping over nested placeholders. It returns -1 if unterminated.
func placeholderEnd(s string, from int) int {
	depth := 0
	for i := from; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], PlaceholderPrefix):
			depth++
			i += len(PlaceholderPrefix)
		case strings.HasPrefix(s[i:], PlaceholderSuffix):
			if depth == 0 {
				return i
			}
			depth--
			i += len(PlaceholderSuffix)
		default:
			i++
		}
	}
	return -1
}
