package cpp

import (
	"fmt"
	"strings"
)

// Expander performs recursive macro expansion over already
// directive-stripped text: the body of an ordinary source line, or
// (with preprocessorLine set) the controlling expression of an #if or
// #elif, in which case a bare "defined(NAME)" is folded to "1" or "0"
// before any macro lookup is attempted.
//
// Expansion is one-pass-then-rescan rather than token-substitute-
// recursively: each level scans its input left to right, replacing
// every macro invocation it finds with raw (for object-like macros) or
// parameter-substituted (for function-like macros) replacement text,
// without itself recursing into that replacement text. Once a level
// produces at least one replacement, every macro name used during that
// level is added to the blocked set and the accumulated output is fed
// through another level. A level that makes zero replacements is the
// fixed point and its output is returned. Because the blocked set only
// grows and is bounded by the number of distinct macros that can ever
// be used, this always terminates.
type Expander struct {
	macros *MacroTable
}

// NewExpander creates an Expander backed by the given macro table.
// Later changes to the table (via #define/#undef) are visible to
// subsequent Expand calls.
func NewExpander(macros *MacroTable) *Expander {
	return &Expander{macros: macros}
}

// maxExpansionLevels bounds the rescan recursion as a backstop against
// a runaway expansion the blocked-set argument says cannot happen; it
// exists only to turn a logic error into a diagnosable failure instead
// of a stack overflow.
const maxExpansionLevels = 4096

// Expand fully expands text (one logical, already-spliced and
// comment-stripped line, or an #if/#elif expression) to a fixed point.
func (e *Expander) Expand(text string, preprocessorLine bool) (string, error) {
	return e.expandLevels(text, preprocessorLine, map[string]bool{}, 0)
}

func (e *Expander) expandLevels(text string, preprocessorLine bool, blocked map[string]bool, depth int) (string, error) {
	if depth > maxExpansionLevels {
		return "", fmt.Errorf("macro expansion did not converge after %d levels", maxExpansionLevels)
	}

	result, used, err := e.expandOnce(text, blocked, preprocessorLine)
	if err != nil {
		return "", err
	}
	if len(used) == 0 {
		return result, nil
	}

	next := make(map[string]bool, len(blocked)+len(used))
	for k := range blocked {
		next[k] = true
	}
	for k := range used {
		next[k] = true
	}
	return e.expandLevels(result, preprocessorLine, next, depth+1)
}

// expandOnce performs a single left-to-right scan of text, replacing
// every macro invocation not suppressed by blocked. It returns the
// resulting text and the set of macro names it actually replaced.
func (e *Expander) expandOnce(text string, blocked map[string]bool, preprocessorLine bool) (string, map[string]bool, error) {
	var out strings.Builder
	used := map[string]bool{}
	i := 0
	n := len(text)

	for i < n {
		c := text[i]

		if c == '"' || c == '\'' {
			lit, ni := scanLiteral(text, i)
			out.WriteString(lit)
			i = ni
			continue
		}

		if !isIdentStart(c) {
			out.WriteByte(c)
			i++
			continue
		}

		start := i
		j := i + 1
		for j < n && isIdentCont(text[j]) {
			j++
		}
		name := text[start:j]

		if preprocessorLine && name == "defined" {
			if handled, rest, consumed := e.foldDefined(text, j); handled {
				out.WriteString(rest)
				i = consumed
				continue
			}
		}

		if blocked[name] {
			out.WriteString(name)
			i = j
			continue
		}

		m := e.macros.Lookup(name)
		if m == nil {
			out.WriteString(name)
			i = j
			continue
		}

		if !m.FunctionLike {
			out.WriteString(m.Value)
			used[name] = true
			i = j
			continue
		}

		k := skipSpaces(text, j)
		if k >= n || text[k] != '(' {
			// Not followed by an argument list: not an invocation.
			out.WriteString(name)
			i = j
			continue
		}

		content, endIdx, err := scanBalancedParen(text, k)
		if err != nil {
			// Unterminated argument list: leave untouched, let the
			// rest of the line scan as ordinary text.
			out.WriteString(name)
			i = j
			continue
		}

		args, ok := argsFromContent(content, len(m.Params))
		if !ok {
			// Argument count mismatch: abandon the invocation; the
			// '(' and its contents are rescanned as plain text.
			out.WriteString(name)
			i = j
			continue
		}

		frag, err := e.substituteFunctionMacro(m, args)
		if err != nil {
			return "", nil, err
		}
		out.WriteString(frag)
		used[name] = true
		i = endIdx
	}

	return out.String(), used, nil
}

// foldDefined handles the "defined(NAME)" form immediately following
// the "defined" identifier ending at idx. It returns handled=false if
// idx is not followed (after optional whitespace) by '(', in which
// case the caller treats "defined" as an ordinary identifier.
func (e *Expander) foldDefined(text string, idx int) (handled bool, replacement string, consumed int) {
	k := skipSpaces(text, idx)
	if k >= len(text) || text[k] != '(' {
		return false, "", 0
	}
	content, endIdx, err := scanBalancedParen(text, k)
	if err != nil {
		return false, "", 0
	}
	name := strings.TrimSpace(content)
	if e.macros.IsDefined(name) {
		return true, "1", endIdx
	}
	return true, "0", endIdx
}

// argsFromContent splits a parsed argument-list interior into
// individual, whitespace-trimmed arguments and reports whether the
// count matches paramCount. A function-like macro declared with zero
// parameters only matches an invocation whose argument list is empty
// (possibly all whitespace); any other declared parameter count splits
// content on top-level commas and always yields at least one argument,
// even when content is empty (matching the classic single-parameter,
// empty-argument case).
func argsFromContent(content string, paramCount int) ([]string, bool) {
	if paramCount == 0 {
		return nil, strings.TrimSpace(content) == ""
	}
	parts := splitTopLevelCommas(content)
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return trimmed, len(trimmed) == paramCount
}

// substituteFunctionMacro builds the replacement fragment for one
// invocation of a function-like macro already matched against args.
// It substitutes parameters into the macro's replacement text
// (stringizing where "#" precedes a parameter, substituting the raw,
// unexpanded argument where a parameter is adjacent to "##", and
// otherwise substituting the argument only after recursively expanding
// it in its own right with a fresh, empty blocked set), then runs a
// final pass that resolves every "##" by deleting it and the
// whitespace immediately surrounding it.
func (e *Expander) substituteFunctionMacro(m *Macro, args []string) (string, error) {
	paramIdx := make(map[string]int, len(m.Params))
	for i, p := range m.Params {
		paramIdx[p] = i
	}

	text := m.Value
	var out strings.Builder
	i := 0
	n := len(text)

	for i < n {
		c := text[i]

		if c == '"' || c == '\'' {
			lit, ni := scanLiteral(text, i)
			out.WriteString(lit)
			i = ni
			continue
		}

		if c == '#' {
			if i+1 < n && text[i+1] == '#' {
				out.WriteString("##")
				i += 2
				continue
			}
			if idx, after, ok := matchParamAfterHash(text, i+1, paramIdx); ok {
				out.WriteString(stringizeArg(args[idx]))
				i = after
				continue
			}
			out.WriteByte('#')
			i++
			continue
		}

		if isIdentStart(c) {
			j := i + 1
			for j < n && isIdentCont(text[j]) {
				j++
			}
			name := text[i:j]
			if idx, ok := paramIdx[name]; ok {
				if isPrecededByHashHash(text, i) || isFollowedByHashHash(text, j) {
					out.WriteString(args[idx])
				} else {
					expanded, err := e.Expand(args[idx], false)
					if err != nil {
						return "", err
					}
					out.WriteString(expanded)
				}
			} else {
				out.WriteString(name)
			}
			i = j
			continue
		}

		out.WriteByte(c)
		i++
	}

	return stripHashHash(out.String()), nil
}

// matchParamAfterHash checks whether, starting at idx (immediately
// after a lone '#'), optional whitespace is followed by a parameter
// name. It returns the parameter's argument index and the position
// just past the name on success.
func matchParamAfterHash(text string, idx int, paramIdx map[string]int) (argIndex int, after int, ok bool) {
	j := skipSpaces(text, idx)
	if j >= len(text) || !isIdentStart(text[j]) {
		return 0, 0, false
	}
	k := j + 1
	for k < len(text) && isIdentCont(text[k]) {
		k++
	}
	pname := text[j:k]
	idxv, found := paramIdx[pname]
	if !found {
		return 0, 0, false
	}
	return idxv, k, true
}

// isPrecededByHashHash reports whether, scanning backward from idx
// (exclusive) over whitespace, the text ends in "##".
func isPrecededByHashHash(text string, idx int) bool {
	k := idx
	for k > 0 && isSpace(text[k-1]) {
		k--
	}
	return k >= 2 && text[k-2] == '#' && text[k-1] == '#'
}

// isFollowedByHashHash reports whether, scanning forward from idx over
// whitespace, the text begins with "##".
func isFollowedByHashHash(text string, idx int) bool {
	k := skipSpaces(text, idx)
	return k+1 < len(text) && text[k] == '#' && text[k+1] == '#'
}

// stripHashHash resolves every remaining "##" marker in s by deleting
// it along with the whitespace immediately before and after it,
// concatenating the tokens on either side. String and character
// literals are passed through untouched.
func stripHashHash(s string) string {
	buf := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' || c == '\'' {
			lit, ni := scanLiteral(s, i)
			buf = append(buf, lit...)
			i = ni
			continue
		}
		if c == '#' && i+1 < len(s) && s[i+1] == '#' {
			buf = trimTrailingSpace(buf)
			i += 2
			i = skipSpaces(s, i)
			continue
		}
		buf = append(buf, c)
		i++
	}
	return string(buf)
}

func trimTrailingSpace(buf []byte) []byte {
	end := len(buf)
	for end > 0 && isSpace(buf[end-1]) {
		end--
	}
	return buf[:end]
}

// stringizeArg renders a macro argument's raw (unexpanded) source
// text as a C string literal: wrapped in quotes, with every embedded
// '"' and '\\' preceded by an extra '\\'.
func stringizeArg(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}
