package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroTableDefineAndLookup(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("FOO", "1", SourceLoc{File: "t.c", Line: 1}))

	assert.True(t, mt.IsDefined("FOO"))
	m := mt.Lookup("FOO")
	require.NotNil(t, m)
	assert.Equal(t, "1", m.Value)
	assert.False(t, m.FunctionLike)
}

func TestMacroTableEmptyValueNormalizedToOne(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("FOO", "", SourceLoc{}))
	assert.Equal(t, "1", mt.Lookup("FOO").Value)
}

func TestMacroTableIdenticalRedefinitionIsSilent(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("FOO", "1", SourceLoc{}))
	assert.NoError(t, mt.DefineSimple("FOO", "1", SourceLoc{}))
}

func TestMacroTableConflictingRedefinitionIsDiagnosedButOverwrites(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("FOO", "1", SourceLoc{}))
	err := mt.DefineSimple("FOO", "2", SourceLoc{})
	assert.Error(t, err)
	assert.Equal(t, "2", mt.Lookup("FOO").Value)
}

func TestMacroTableUndefIsIdempotent(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("FOO", "1", SourceLoc{}))
	mt.Undef("FOO")
	assert.False(t, mt.IsDefined("FOO"))
	mt.Undef("FOO") // second undef of the same, now-unbound, name: silent no-op
	assert.False(t, mt.IsDefined("FOO"))
}

func TestMacroTableNamesPreservesInsertionOrder(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.DefineSimple("A", "1", SourceLoc{}))
	require.NoError(t, mt.DefineSimple("B", "1", SourceLoc{}))
	require.NoError(t, mt.DefineSimple("C", "1", SourceLoc{}))
	mt.Undef("B")
	assert.Equal(t, []string{"A", "C"}, mt.Names())
}

func TestParseCmdlineDefineForms(t *testing.T) {
	cases := []struct {
		name         string
		in           string
		wantName     string
		wantParams   []string
		wantFunction bool
		wantValue    string
	}{
		{"bare name", "FOO", "FOO", nil, false, ""},
		{"name and value", "FOO=42", "FOO", nil, false, "42"},
		{"function-like", "MAX(a,b)=((a)>(b)?(a):(b))", "MAX", []string{"a", "b"}, true, "((a)>(b)?(a):(b))"},
		{"function-like no params", "INIT()=0", "INIT", nil, true, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			name, params, fn, value, err := parseCmdlineDefine(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.wantName, name)
			assert.Equal(t, c.wantParams, params)
			assert.Equal(t, c.wantFunction, fn)
			assert.Equal(t, c.wantValue, value)
		})
	}
}

func TestApplyCmdlineDefinesAppliesDefinesBeforeUndefines(t *testing.T) {
	mt := NewMacroTable()
	require.NoError(t, mt.ApplyCmdlineDefines([]string{"A=1", "B=2"}, []string{"A"}))
	assert.False(t, mt.IsDefined("A"))
	assert.True(t, mt.IsDefined("B"))
}
