// Package signature canonicalizes and tokenizes Java method signatures so
// they can be compared across commits without an AST. Handling is textual and
// heuristic: good enough to survive renames, generics and qualification
// differences between two data collections of the same codebase.
package signature

import (
	"strings"
)

// Normalizer converts raw method signatures into comparable forms. Both
// conversions are memoized per distinct input for the lifetime of the
// instance; a Normalizer is not safe for concurrent use.
type Normalizer struct {
	canonical map[string]string
	tokens    map[string][]string
}

// NewNormalizer returns a Normalizer with empty caches.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		canonical: make(map[string]string),
		tokens:    make(map[string][]string),
	}
}

// Clear drops both memo caches.
func (n *Normalizer) Clear() {
	n.canonical = make(map[string]string)
	n.tokens = make(map[string][]string)
}

// Canonicalize converts a signature to its canonical form: throws clause and
// generics removed, types dequalified, parameter names dropped, lowercased
// with all whitespace stripped. Used for exact-match comparison.
func (n *Normalizer) Canonicalize(sig string) string {
	if cached, ok := n.canonical[sig]; ok {
		return cached
	}

	s := sig

	// Anything after the last ')' is a throws clause.
	if i := strings.LastIndex(s, ")"); i != -1 {
		s = s[:i+1]
	}

	s = StripGenerics(s)

	var canonical string
	paren := strings.Index(s, "(")
	if paren == -1 {
		canonical = strings.TrimSpace(strings.ToLower(strings.ReplaceAll(s, " ", "")))
	} else {
		decl := strings.Fields(strings.TrimSpace(s[:paren]))
		for i, part := range decl {
			decl[i] = dequalify(part)
		}

		argPart := s[paren+1:]
		if i := strings.Index(argPart, ")"); i != -1 {
			argPart = argPart[:i]
		}
		var args []string
		for _, arg := range strings.Split(argPart, ",") {
			arg = strings.TrimSpace(arg)
			if arg == "" {
				continue
			}
			// Keep only the type, dropping the parameter name.
			fields := strings.Fields(dequalify(arg))
			if len(fields) > 0 {
				args = append(args, fields[0])
			}
		}

		entire := strings.Join(decl, " ") + "(" + strings.Join(args, ",") + ")"
		canonical = strings.TrimSpace(strings.ToLower(strings.ReplaceAll(entire, " ", "")))
	}

	n.canonical[sig] = canonical
	return canonical
}

// Tokenize splits a raw signature into lowercase word tokens on camelCase,
// snake_case and digit boundaries. The returned slice is cached; callers must
// not mutate it.
func (n *Normalizer) Tokenize(sig string) []string {
	key := strings.TrimSpace(sig)
	if cached, ok := n.tokens[key]; ok {
		return cached
	}

	tokens := splitWords(key)
	n.tokens[key] = tokens
	return tokens
}

// StripGenerics removes generic type parameters by tracking '<'/'>' nesting
// depth. Characters at depth >= 1 are dropped. Behavior on unbalanced input
// is undefined.
func StripGenerics(sig string) string {
	var b strings.Builder
	b.Grow(len(sig))

	depth := 0
	for _, ch := range sig {
		switch ch {
		case '<':
			depth++
		case '>':
			depth--
		default:
			if depth == 0 {
				b.WriteRune(ch)
			}
		}
	}

	return b.String()
}

// dequalify keeps the substring after the last '.' and before any '$',
// stripping package qualification and inner-class separators.
func dequalify(s string) string {
	if i := strings.LastIndex(s, "."); i != -1 {
		s = s[i+1:]
	}
	if i := strings.Index(s, "$"); i != -1 {
		s = s[:i]
	}
	return s
}

// splitWords emits word tokens matching an initial-capital-then-lowercase
// run, an all-caps run not continued by a camelCase word, or a digit run.
// Go's regexp has no lookahead, so the segmentation is done by hand.
func splitWords(s string) []string {
	var tokens []string

	i, n := 0, len(s)
	for i < n {
		switch c := s[i]; {
		case isUpper(c):
			j := i
			for j < n && isUpper(s[j]) {
				j++
			}
			switch {
			case j < n && isLower(s[j]):
				// The last capital starts a camelCase word; any capitals
				// before it form an acronym token of their own.
				if j-1 > i {
					tokens = append(tokens, strings.ToLower(s[i:j-1]))
				}
				k := j
				for k < n && isLower(s[k]) {
					k++
				}
				tokens = append(tokens, strings.ToLower(s[j-1:k]))
				i = k
			case j >= n || isDigit(s[j]) || !isWordByte(s[j]):
				tokens = append(tokens, strings.ToLower(s[i:j]))
				i = j
			default:
				// Capitals running into an underscore match nothing.
				i = j
			}
		case isLower(c):
			j := i
			for j < n && isLower(s[j]) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		case isDigit(c):
			j := i
			for j < n && isDigit(s[j]) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		default:
			i++
		}
	}

	return tokens
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isUpper(c) || isLower(c) || isDigit(c) || c == '_'
}
