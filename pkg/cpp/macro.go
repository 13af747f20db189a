package cpp

import (
	"fmt"
	"strings"
)

// Macro is an immutable-by-convention macro definition: a name, an
// optional ordered list of parameter names (present iff the macro is
// function-like), and a raw, not-yet-expanded replacement text. An
// empty replacement is normalized to "1" at definition time.
type Macro struct {
	Name        string
	Params      []string // nil for an object-like macro
	FunctionLike bool
	Value       string
	Loc         SourceLoc
}

// sameAs reports whether two macro definitions are structurally
// identical: same function-like-ness, same parameter list pointwise,
// same replacement text. Used to decide whether a redefinition is
// silent or must be diagnosed.
func (m *Macro) sameAs(other *Macro) bool {
	if m.FunctionLike != other.FunctionLike {
		return false
	}
	if len(m.Params) != len(other.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != other.Params[i] {
			return false
		}
	}
	return strings.TrimSpace(m.Value) == strings.TrimSpace(other.Value)
}

// MacroTable maps macro names to their current definition. Insertion
// order is preserved (for diagnostic iteration) but is not otherwise
// significant: a name resolves to at most one definition at a time.
type MacroTable struct {
	defs  map[string]*Macro
	order []string
}

// NewMacroTable creates an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{defs: make(map[string]*Macro)}
}

// Lookup returns the current definition of name, or nil if unbound.
// The returned value is a non-owning view; callers must not mutate it.
func (t *MacroTable) Lookup(name string) *Macro {
	return t.defs[name]
}

// IsDefined reports whether name currently resolves to a definition.
func (t *MacroTable) IsDefined(name string) bool {
	_, ok := t.defs[name]
	return ok
}

// Define installs a macro definition, normalizing an empty value to
// "1". If name is already bound to a structurally different
// definition, a diagnostic is returned (non-fatal: the new definition
// still overwrites the old one).
func (t *MacroTable) Define(name string, params []string, functionLike bool, value string, loc SourceLoc) error {
	if value == "" {
		value = "1"
	}

	next := &Macro{Name: name, Params: params, FunctionLike: functionLike, Value: value, Loc: loc}

	prev, exists := t.defs[name]
	if !exists {
		t.defs[name] = next
		t.order = append(t.order, name)
		return nil
	}

	if prev.sameAs(next) {
		t.defs[name] = next
		return nil
	}

	t.defs[name] = next
	return fmt.Errorf("Redefinition of %s from %s to %s", name, prev.Value, value)
}

// DefineSimple installs (or idempotently re-installs) an object-like
// macro with the given value. It is the convenience path used for
// -D command-line defines.
func (t *MacroTable) DefineSimple(name, value string, loc SourceLoc) error {
	return t.Define(name, nil, false, value, loc)
}

// Undef removes name from the table. Undefining a name that is not
// bound is a silent no-op.
func (t *MacroTable) Undef(name string) {
	if _, ok := t.defs[name]; !ok {
		return
	}
	delete(t.defs, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Names returns the currently bound macro names in insertion order.
func (t *MacroTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// ApplyCmdlineDefines installs a batch of "-D" style definitions
// ("NAME", "NAME=VALUE", or "NAME(params)=VALUE") followed by a batch
// of "-U" undefines, in that order — matching the CLI contract in
// spec.md §6 where -D precedes -U application for a given run.
func (t *MacroTable) ApplyCmdlineDefines(defines []string, undefines []string) error {
	for _, d := range defines {
		name, params, functionLike, value, err := parseCmdlineDefine(d)
		if err != nil {
			return err
		}
		if err := t.Define(name, params, functionLike, value, SourceLoc{File: "<command-line>", Line: 0}); err != nil {
			return err
		}
	}
	for _, name := range undefines {
		t.Undef(name)
	}
	return nil
}

// parseCmdlineDefine parses the text following "-D": NAME, NAME=VALUE,
// or NAME(p1,p2)=VALUE.
func parseCmdlineDefine(s string) (name string, params []string, functionLike bool, value string, err error) {
	eq := strings.IndexByte(s, '=')
	head := s
	if eq >= 0 {
		head = s[:eq]
		value = s[eq+1:]
	}

	if lp := strings.IndexByte(head, '('); lp >= 0 {
		if !strings.HasSuffix(head, ")") {
			return "", nil, false, "", fmt.Errorf("malformed macro parameter list in -D%s", s)
		}
		name = head[:lp]
		paramList := head[lp+1 : len(head)-1]
		if strings.TrimSpace(paramList) != "" {
			for _, p := range strings.Split(paramList, ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}
		functionLike = true
		return name, params, functionLike, value, nil
	}

	return head, nil, false, value, nil
}
