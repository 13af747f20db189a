package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectiveRecognizesEveryCommand(t *testing.T) {
	cases := []struct {
		line string
		kind DirectiveKind
		data string
	}{
		{"#if FOO", DirIf, "FOO"},
		{"#ifdef FOO", DirIfdef, "FOO"},
		{"#ifndef FOO", DirIfndef, "FOO"},
		{"#else", DirElse, ""},
		{"#elif FOO", DirElif, "FOO"},
		{"#endif", DirEndif, ""},
		{"#define FOO 1", DirDefine, "FOO 1"},
		{"#undef FOO", DirUndef, "FOO"},
		{`#include "a.h"`, DirInclude, `"a.h"`},
		{"#error bad thing", DirError, "bad thing"},
		{"#warning heads up", DirWarning, "heads up"},
		{"#pragma once", DirPragma, "once"},
		{"  #  define X 1", DirDefine, "X 1"},
		{"#", DirEmpty, ""},
		{"#    ", DirEmpty, ""},
		{"#bogus stuff", DirUnknown, "stuff"},
	}
	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			d := ParseDirective(c.line)
			assert.Equal(t, c.kind, d.Kind)
			assert.Equal(t, c.data, d.Data)
		})
	}
}

func TestParseDefineObjectLike(t *testing.T) {
	name, params, fn, value, err := ParseDefine("FOO 1 + 2")
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)
	assert.Nil(t, params)
	assert.False(t, fn)
	assert.Equal(t, "1 + 2", value)
}

func TestParseDefineObjectLikeNoValue(t *testing.T) {
	name, params, fn, value, err := ParseDefine("FOO")
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)
	assert.Nil(t, params)
	assert.False(t, fn)
	assert.Equal(t, "", value)
}

func TestParseDefineFunctionLike(t *testing.T) {
	name, params, fn, value, err := ParseDefine("MAX(a, b) ((a)>(b)?(a):(b))")
	require.NoError(t, err)
	assert.Equal(t, "MAX", name)
	assert.Equal(t, []string{"a", "b"}, params)
	assert.True(t, fn)
	assert.Equal(t, "((a)>(b)?(a):(b))", value)
}

func TestParseDefineFunctionLikeNoParams(t *testing.T) {
	name, params, fn, value, err := ParseDefine("INIT() 0")
	require.NoError(t, err)
	assert.Equal(t, "INIT", name)
	assert.Nil(t, params)
	assert.True(t, fn)
	assert.Equal(t, "0", value)
}

func TestParseDefineSpaceBeforeParenIsObjectLike(t *testing.T) {
	// "FOO (x) 1" has a space before '(': per spec this is an
	// object-like macro whose value happens to start with "(x) 1".
	name, params, fn, value, err := ParseDefine("FOO (x) 1")
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)
	assert.Nil(t, params)
	assert.False(t, fn)
	assert.Equal(t, "(x) 1", value)
}

func TestParseDefineMissingName(t *testing.T) {
	_, _, _, _, err := ParseDefine("   ")
	assert.Error(t, err)
}

func TestParseDefineUnclosedParamList(t *testing.T) {
	_, _, _, _, err := ParseDefine("FOO(a, b 1")
	assert.Error(t, err)
}

func TestParseIncludeQuotedAndAngled(t *testing.T) {
	name, angled, err := ParseInclude(`"local.h"`)
	require.NoError(t, err)
	assert.Equal(t, "local.h", name)
	assert.False(t, angled)

	name, angled, err = ParseInclude("<stdio.h>")
	require.NoError(t, err)
	assert.Equal(t, "stdio.h", name)
	assert.True(t, angled)
}

func TestParseIncludeMalformed(t *testing.T) {
	_, _, err := ParseInclude("stdio.h")
	assert.Error(t, err)
}

func TestParseUndef(t *testing.T) {
	name, err := ParseUndef("  FOO  ")
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)

	_, err = ParseUndef("  ")
	assert.Error(t, err)
}

func TestParsePragma(t *testing.T) {
	name, rest := ParsePragma("once")
	assert.Equal(t, "once", name)
	assert.Equal(t, "", rest)

	name, rest = ParsePragma("pack(push, 1)")
	assert.Equal(t, "pack(push,", name)
	assert.Equal(t, "1)", rest)
}
