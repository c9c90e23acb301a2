package selectengine

import (
	"fmt"
	"strings"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/parse"
	"github.com/tilford/csscade/utils"
)

// Map stores the custom properties visible on an element : name (with
// the leading "--") to raw value text.
type Map map[string]string

func NewMap() Map { return make(Map) }

// Clone returns an independent copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies every entry of src into m, overwriting by name. It is
// how inheritance works : the parent map merged into a fresh copy
// before the element's own declarations apply.
func (m Map) Merge(src Map) {
	for k, v := range src {
		m[k] = v
	}
}

func (m Map) Set(name, value string) { m[name] = value }

func (m Map) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Equal reports whether both maps hold exactly the same entries.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// maxVarDepth bounds nested var() substitution.
const maxVarDepth = 16

// resolveVars substitutes every var() reference in tokens against the
// map, applying fallbacks for missing names. The result is a fresh
// token vector ready for a property parser.
func resolveVars(tokens parse.Vector, custom Map) (parse.Vector, error) {
	return resolveVarsDepth(tokens, custom, utils.NewSet(), 0)
}

// active holds the names currently being substituted, to detect
// reference cycles between custom properties.
func resolveVarsDepth(tokens parse.Vector, custom Map, active utils.Set, depth int) (parse.Vector, error) {
	if depth > maxVarDepth {
		return nil, fmt.Errorf("var() nesting too deep: %w", csscade.ErrInvalid)
	}

	var out parse.Vector
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if !tok.IsFunction("var") {
			out = append(out, tok)
			i++
			continue
		}

		name, fallback, next, err := splitVarCall(tokens, i)
		if err != nil {
			return nil, err
		}
		i = next

		inner := active
		replacement, ok := custom.Get(name)
		var sub parse.Vector
		if ok {
			if active.Has(name) {
				return nil, fmt.Errorf("custom property cycle through %s: %w", name, csscade.ErrInvalid)
			}
			inner = active.Copy()
			inner.Add(name)
			sub = parse.Tokenize(replacement)
		} else if fallback != nil {
			sub = fallback
		} else {
			return nil, fmt.Errorf("undefined custom property %s: %w", name, csscade.ErrInvalid)
		}

		resolved, err := resolveVarsDepth(sub, custom, inner, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

// splitVarCall decomposes var(--name[, fallback...]) starting at the
// function token. It returns the referenced name, the fallback tokens
// (nil when absent) and the index just past the closing parenthesis.
func splitVarCall(tokens parse.Vector, start int) (name string, fallback parse.Vector, next int, err error) {
	i := start + 1
	skipWS := func() {
		for i < len(tokens) && tokens[i].Type == parse.TokenWhitespace {
			i++
		}
	}

	skipWS()
	if i >= len(tokens) || tokens[i].Type != parse.TokenIdent || !strings.HasPrefix(tokens[i].Value, "--") {
		return "", nil, 0, fmt.Errorf("malformed var() reference: %w", csscade.ErrInvalid)
	}
	name = tokens[i].Value
	i++
	skipWS()

	if i < len(tokens) && tokens[i].IsChar(',') {
		i++
		depth := 0
		fallback = parse.Vector{}
		for ; i < len(tokens); i++ {
			tok := tokens[i]
			switch {
			case tok.Type == parse.TokenFunction:
				depth++
			case tok.IsChar('('):
				depth++
			case tok.IsChar(')'):
				if depth == 0 {
					return name, fallback, i + 1, nil
				}
				depth--
			}
			fallback = append(fallback, tok)
		}
		return "", nil, 0, fmt.Errorf("unterminated var() reference: %w", csscade.ErrInvalid)
	}

	if i >= len(tokens) || !tokens[i].IsChar(')') {
		return "", nil, 0, fmt.Errorf("malformed var() reference: %w", csscade.ErrInvalid)
	}
	return name, nil, i + 1, nil
}
