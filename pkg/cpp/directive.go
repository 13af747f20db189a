package cpp

import (
	"fmt"
	"strings"
)

// DirectiveKind enumerates the recognized directive commands. An
// unrecognized command is reported via DirectiveKind zero value
// (DirUnknown) rather than an error: spec.md §4.4 treats it as a
// diagnosable-but-non-fatal condition.
type DirectiveKind int

const (
	DirUnknown DirectiveKind = iota
	DirEmpty                 // bare "#" with no command: silently skipped
	DirIf
	DirIfdef
	DirIfndef
	DirElse
	DirElif
	DirEndif
	DirDefine
	DirUndef
	DirInclude
	DirError
	DirWarning
	DirPragma
)

var directiveNames = map[string]DirectiveKind{
	"if":      DirIf,
	"ifdef":   DirIfdef,
	"ifndef":  DirIfndef,
	"else":    DirElse,
	"elif":    DirElif,
	"endif":   DirEndif,
	"define":  DirDefine,
	"undef":   DirUndef,
	"include": DirInclude,
	"error":   DirError,
	"warning": DirWarning,
	"pragma":  DirPragma,
}

// Directive is a parsed "#command data" line: the command identifier
// and everything following it (with only leading whitespace removed),
// handed to the handler verbatim for command-specific parsing.
type Directive struct {
	Kind DirectiveKind
	Name string // raw command text, for diagnosing DirUnknown
	Data string
}

// ParseDirective parses the text of a logical line already known to
// begin (after leading whitespace) with '#'. It skips the '#', skips
// whitespace, reads the command identifier, skips whitespace, and
// treats the remainder of the line as data. A '#' followed by nothing
// but whitespace is DirEmpty, per spec.md §4.4 ("null directive").
func ParseDirective(line string) Directive {
	i := skipSpaces(line, 0)
	if i >= len(line) || line[i] != '#' {
		return Directive{Kind: DirUnknown, Name: line}
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) {
		return Directive{Kind: DirEmpty}
	}

	start := i
	for i < len(line) && isIdentCont(line[i]) {
		i++
	}
	name := line[start:i]
	data := strings.TrimLeft(line[i:], " \t")

	kind, known := directiveNames[name]
	if !known {
		return Directive{Kind: DirUnknown, Name: name, Data: data}
	}
	return Directive{Kind: kind, Name: name, Data: data}
}

// ParseDefine parses the data portion of a "#define" directive: a name,
// an optional parenthesized parameter list with no space between the
// name and the '(' (spec.md §3: that space is what distinguishes an
// object-like macro whose value happens to start with '(' from a
// function-like one), and a replacement value.
func ParseDefine(data string) (name string, params []string, functionLike bool, value string, err error) {
	i := skipSpaces(data, 0)
	if i >= len(data) || !isIdentStart(data[i]) {
		return "", nil, false, "", fmt.Errorf("#define missing macro name")
	}
	start := i
	for i < len(data) && isIdentCont(data[i]) {
		i++
	}
	name = data[start:i]

	if i < len(data) && data[i] == '(' {
		content, endIdx, perr := scanBalancedParen(data, i)
		if perr != nil {
			return "", nil, false, "", fmt.Errorf("#define %s: unclosed parameter list", name)
		}
		functionLike = true
		if strings.TrimSpace(content) != "" {
			for _, p := range strings.Split(content, ",") {
				p = strings.TrimSpace(p)
				if p == "" || !isValidParamName(p) {
					return "", nil, false, "", fmt.Errorf("#define %s: malformed parameter list", name)
				}
				params = append(params, p)
			}
		}
		value = strings.TrimSpace(data[endIdx:])
		return name, params, functionLike, value, nil
	}

	value = strings.TrimSpace(data[i:])
	return name, nil, false, value, nil
}

func isValidParamName(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}

// ParseInclude parses the data portion of an "#include" directive,
// returning the bracketed/quoted name with its delimiters stripped and
// whether it was angle-bracketed (a system include) as opposed to
// quoted (a user include).
func ParseInclude(data string) (name string, angled bool, err error) {
	data = strings.TrimSpace(data)
	if len(data) < 2 {
		return "", false, fmt.Errorf("#include expects \"FILENAME\" or <FILENAME>")
	}
	switch {
	case data[0] == '"' && data[len(data)-1] == '"':
		return data[1 : len(data)-1], false, nil
	case data[0] == '<' && data[len(data)-1] == '>':
		return data[1 : len(data)-1], true, nil
	default:
		return "", false, fmt.Errorf("#include expects \"FILENAME\" or <FILENAME>")
	}
}

// ParseUndef parses the data portion of a "#undef" directive, which is
// a bare macro name with no value.
func ParseUndef(data string) (name string, err error) {
	name = strings.TrimSpace(data)
	if name == "" || !isValidParamName(name) {
		return "", fmt.Errorf("#undef expects a macro name")
	}
	return name, nil
}

// ParsePragma splits a "#pragma" directive's data into the pragma name
// (first word) and its remaining arguments.
func ParsePragma(data string) (name string, rest string) {
	data = strings.TrimSpace(data)
	i := 0
	for i < len(data) && !isSpace(data[i]) {
		i++
	}
	return data[:i], strings.TrimSpace(data[i:])
}
