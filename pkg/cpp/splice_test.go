package cpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSplicerNoContinuation(t *testing.T) {
	src := NewLineSource(strings.NewReader("a\nb\nc\n"), nil)
	sp := NewLineSplicer(src)

	var got []LogicalLine
	for {
		ll, ok := sp.Next()
		if !ok {
			break
		}
		got = append(got, ll)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "c", got[2].Text)
	assert.Equal(t, 3, got[2].Line)
}

func TestLineSplicerJoinsBackslashContinuation(t *testing.T) {
	src := NewLineSource(strings.NewReader("one \\\ntwo \\\nthree\nfour\n"), nil)
	sp := NewLineSplicer(src)

	ll, ok := sp.Next()
	require.True(t, ok)
	assert.Equal(t, "one two three", ll.Text)
	assert.Equal(t, 3, ll.Line, "logical line number is that of the last physical line consumed")

	ll, ok = sp.Next()
	require.True(t, ok)
	assert.Equal(t, "four", ll.Text)
}

func TestLineSplicerDanglingBackslashAtEOF(t *testing.T) {
	src := NewLineSource(strings.NewReader("tail\\"), nil)
	sp := NewLineSplicer(src)

	ll, ok := sp.Next()
	require.True(t, ok)
	assert.Equal(t, "tail", ll.Text)

	_, ok = sp.Next()
	assert.False(t, ok)
}

func TestLineSplicerTranslatesTrigraphsBeforeSplicing(t *testing.T) {
	src := NewLineSource(strings.NewReader("??=define FOO 1\n"), nil)
	sp := NewLineSplicer(src)

	ll, ok := sp.Next()
	require.True(t, ok)
	assert.Equal(t, "#define FOO 1", ll.Text)
}

func TestLineSourceEchoesRawLines(t *testing.T) {
	var echo strings.Builder
	src := NewLineSource(strings.NewReader("x\ny\n"), &echo)
	sp := NewLineSplicer(src)
	for {
		if _, ok := sp.Next(); !ok {
			break
		}
	}
	assert.Equal(t, "x\ny\n", echo.String())
}
