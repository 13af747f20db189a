package cpp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options configures one preprocessing run. The zero value is usable
// except where noted; NewPreprocessor fills in the remaining defaults.
type Options struct {
	Defines      []string            // "-D" entries, applied before Undefines
	Undefines    []string            // "-U" entries
	IncludeDirs  []string            // "-I" entries, in order
	SkipStd      bool                // "-skip_std": silently skip angled (system) includes
	NoBlankLines bool                // "-no_blank_lines": suppress empty output lines
	Debug        bool                // "-debug": trace each directive to stderr
	Quiet        bool                // "-quiet": suppress warning diagnostics on flush
	Echo         io.Writer           // non-nil enables "-echo": raw lines mirrored here
	Output       io.Writer           // required: where preprocessed text is written
	Evaluator    ExpressionEvaluator // defaults to DefaultEvaluator{}
}

// Preprocessor is a single preprocessing run's mutable state: the
// macro table, conditional stack, include resolver, and include tree
// all persist across every file and nested #include the run touches,
// mirroring the single long-lived object the original source
// processes a whole translation unit through.
type Preprocessor struct {
	opts       Options
	macros     *MacroTable
	cond       *ConditionalStack
	expander   *Expander
	includes   *IncludeResolver
	tree       *IncludeTree
	diags      *DiagnosticSink
	comments   *CommentStripper
	pragmaOnce map[string]bool
	stack      []string // currently-open file paths, for cycle detection
}

// NewPreprocessor builds a run from opts. opts.Output must be set.
func NewPreprocessor(opts Options) (*Preprocessor, error) {
	if opts.Output == nil {
		return nil, fmt.Errorf("cpp: Options.Output must not be nil")
	}
	if opts.Evaluator == nil {
		opts.Evaluator = DefaultEvaluator{}
	}

	mt := NewMacroTable()
	if err := mt.ApplyCmdlineDefines(opts.Defines, opts.Undefines); err != nil {
		return nil, err
	}

	resolver := NewIncludeResolver(opts.IncludeDirs)

	return &Preprocessor{
		opts:       opts,
		macros:     mt,
		cond:       NewConditionalStack(),
		expander:   NewExpander(mt),
		includes:   resolver,
		tree:       NewIncludeTree(),
		diags:      NewDiagnosticSink(opts.Quiet),
		comments:   NewCommentStripper(),
		pragmaOnce: make(map[string]bool),
	}, nil
}

// Diagnostics returns the sink accumulated over the run so far, for
// the caller to flush and inspect HasErrors after Run returns.
func (p *Preprocessor) Diagnostics() *DiagnosticSink { return p.diags }

// IncludeTreeLines renders the discovered #include edges, for
// "-list_includes".
func (p *Preprocessor) IncludeTreeLines() []string { return p.tree.Lines() }

// Run preprocesses inputPath ("" meaning read from stdin, named
// "<stdin>" in diagnostics) and writes the result to opts.Output. The
// returned error is reserved for conditions that make the run
// unrecoverable (the top-level file cannot be opened); malformed
// input is reported through Diagnostics instead.
func (p *Preprocessor) Run(inputPath string) error {
	var (
		f    io.Reader
		name string
	)
	if inputPath == "" {
		f = os.Stdin
		name = "<stdin>"
	} else {
		file, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("cpp: %w", err)
		}
		defer file.Close()
		f = file
		name = inputPath
	}

	p.processFile(name, f)

	if err := p.cond.CheckBalanced(); err != nil {
		p.diags.Error(SourceLoc{File: name, Line: 0}, "%s", err.Error())
	}
	return nil
}

// processFile preprocesses one file's content, recursively following
// any #include directives it is active for. It never returns an
// error: all failure conditions become diagnostics so one broken
// include cannot abort an otherwise-good run.
func (p *Preprocessor) processFile(filename string, r io.Reader) {
	for _, open := range p.stack {
		if open == filename {
			p.diags.Error(SourceLoc{File: filename}, "circular #include of %q", filename)
			return
		}
	}
	p.stack = append(p.stack, filename)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	includingDir := filepath.Dir(filename)

	src := NewLineSource(r, p.opts.Echo)
	splicer := NewLineSplicer(src)

	for {
		ll, ok := splicer.Next()
		if !ok {
			break
		}
		loc := SourceLoc{File: filename, Line: ll.Line}
		p.processLine(loc, ll.Text, includingDir)
	}
}

func isDirectiveLine(s string) bool {
	i := skipSpaces(s, 0)
	return i < len(s) && s[i] == '#'
}

func (p *Preprocessor) processLine(loc SourceLoc, text string, includingDir string) {
	directive := !p.comments.InBlockComment() && isDirectiveLine(text)
	stripped := p.comments.StripLine(text, directive)

	if !directive {
		if !p.cond.IsActive() {
			return
		}
		expanded, err := p.expander.Expand(stripped, false)
		if err != nil {
			p.diags.Error(loc, "%s", err.Error())
			p.emitBlank()
			return
		}
		p.emitLine(expanded)
		return
	}

	d := ParseDirective(stripped)
	if p.opts.Debug {
		fmt.Fprintf(os.Stderr, "%s: #%s %s\n", loc, d.Name, d.Data)
	}

	switch d.Kind {
	case DirEmpty:
		// null directive: nothing to do.
	case DirIf:
		p.handleIf(loc, d.Data)
	case DirIfdef:
		name := strings.TrimSpace(d.Data)
		p.cond.Ifdef(p.macros.IsDefined(name))
	case DirIfndef:
		name := strings.TrimSpace(d.Data)
		p.cond.Ifndef(p.macros.IsDefined(name))
	case DirElif:
		p.handleElif(loc, d.Data)
	case DirElse:
		p.cond.Else()
	case DirEndif:
		if err := p.cond.Endif(); err != nil {
			p.diags.Error(loc, "%s", err.Error())
		}
	default:
		if !p.cond.IsActive() {
			return
		}
		p.handleActiveDirective(loc, d, includingDir)
	}
}

func (p *Preprocessor) handleIf(loc SourceLoc, data string) {
	if !p.cond.WouldBeActive() {
		p.cond.If(false)
		return
	}
	p.cond.If(p.evalCondition(loc, data))
}

func (p *Preprocessor) handleElif(loc SourceLoc, data string) {
	if !p.cond.NeedsElifEval() {
		p.cond.Elif(false)
		return
	}
	p.cond.Elif(p.evalCondition(loc, data))
}

// evalCondition expands macros and folds defined() in an #if/#elif
// expression, then hands it to the evaluator. Any expansion or
// evaluation failure silently yields a false branch: the evaluator
// runs quiet, exactly like the original's process_expression, and
// never raises a diagnostic of its own.
func (p *Preprocessor) evalCondition(loc SourceLoc, data string) bool {
	expanded, err := p.expander.Expand(data, true)
	if err != nil {
		return false
	}
	val, ok := p.opts.Evaluator.Eval(foldUndefinedIdentifiers(expanded))
	if !ok {
		return false
	}
	return val != 0
}

func (p *Preprocessor) handleActiveDirective(loc SourceLoc, d Directive, includingDir string) {
	switch d.Kind {
	case DirDefine:
		name, params, functionLike, value, err := ParseDefine(d.Data)
		if err != nil {
			p.diags.Error(loc, "%s", err.Error())
			return
		}
		if err := p.macros.Define(name, params, functionLike, value, loc); err != nil {
			p.diags.Warn(loc, "%s", err.Error())
		}
	case DirUndef:
		name, err := ParseUndef(d.Data)
		if err != nil {
			p.diags.Error(loc, "%s", err.Error())
			return
		}
		p.macros.Undef(name)
	case DirInclude:
		p.handleInclude(loc, d.Data, includingDir)
	case DirError:
		p.diags.Error(loc, "%s", d.Data)
	case DirWarning:
		p.diags.Warn(loc, "%s", d.Data)
	case DirPragma:
		p.handlePragma(loc, d.Data)
	case DirUnknown:
		p.diags.Warn(loc, "unknown directive #%s", d.Name)
	}
}

func (p *Preprocessor) handleInclude(loc SourceLoc, data string, includingDir string) {
	name, angled, err := ParseInclude(data)
	if err != nil {
		p.diags.Error(loc, "%s", err.Error())
		return
	}

	// An angled include only ever resolves against the system search
	// list; under -skip_std that content is suppressed entirely, so
	// there is no point resolving it at all, and no diagnostic to
	// raise: it is skipped, not missing.
	if angled && p.opts.SkipStd {
		return
	}

	resolved, err := p.includes.Resolve(name, angled, includingDir)
	if err != nil {
		p.diags.Error(loc, "%s", err.Error())
		return
	}
	p.tree.Add(loc.File, resolved)
	if p.pragmaOnce[resolved] {
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		p.diags.Error(loc, "cannot open include file %q: %s", resolved, err.Error())
		return
	}
	defer f.Close()
	p.processFile(resolved, f)
}

func (p *Preprocessor) handlePragma(loc SourceLoc, data string) {
	name, _ := ParsePragma(data)
	if name == "once" {
		p.pragmaOnce[loc.File] = true
		return
	}
	// Every other pragma passes through as a no-op: spec.md has no
	// component that interprets compiler-specific pragmas.
}

func (p *Preprocessor) emitLine(text string) {
	if p.opts.NoBlankLines && strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintln(p.opts.Output, text)
}

func (p *Preprocessor) emitBlank() {
	if p.opts.NoBlankLines {
		return
	}
	fmt.Fprintln(p.opts.Output, "")
}

// PreprocessString is a convenience entry point over in-memory text,
// used by tests and by small embeddings that do not need file-based
// #include resolution.
func PreprocessString(input string, opts Options) (string, *DiagnosticSink, error) {
	var buf strings.Builder
	opts.Output = &buf
	p, err := NewPreprocessor(opts)
	if err != nil {
		return "", nil, err
	}
	p.processFile("<string>", strings.NewReader(input))
	if err := p.cond.CheckBalanced(); err != nil {
		p.diags.Error(SourceLoc{File: "<string>"}, "%s", err.Error())
	}
	return buf.String(), p.diags, nil
}
