package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalStackRootIsActive(t *testing.T) {
	s := NewConditionalStack()
	assert.True(t, s.IsActive())
	assert.Equal(t, 0, s.Depth())
}

func TestConditionalStackSimpleIfTrue(t *testing.T) {
	s := NewConditionalStack()
	s.If(true)
	assert.True(t, s.IsActive())
	require.NoError(t, s.Endif())
	assert.True(t, s.IsActive())
}

func TestConditionalStackSimpleIfFalse(t *testing.T) {
	s := NewConditionalStack()
	s.If(false)
	assert.False(t, s.IsActive())
	require.NoError(t, s.Endif())
	assert.True(t, s.IsActive())
}

func TestConditionalStackIfElse(t *testing.T) {
	s := NewConditionalStack()
	s.If(false)
	assert.False(t, s.IsActive())
	s.Else()
	assert.True(t, s.IsActive())
}

func TestConditionalStackIfElifElse(t *testing.T) {
	s := NewConditionalStack()
	s.If(false)
	s.Elif(false)
	assert.False(t, s.IsActive())
	s.Elif(true)
	assert.True(t, s.IsActive())
	s.Else()
	assert.False(t, s.IsActive(), "else after an already-taken branch stays inactive")
}

func TestConditionalStackNestedInsideDeadBranchStaysInactive(t *testing.T) {
	s := NewConditionalStack()
	s.If(false)
	assert.False(t, s.WouldBeActive(), "expression in a nested #if should not even be evaluated")
	s.If(true) // nested #if, but parent is dead
	assert.False(t, s.IsActive())
	require.NoError(t, s.Endif())
	assert.False(t, s.IsActive())
	require.NoError(t, s.Endif())
	assert.True(t, s.IsActive())
}

func TestConditionalStackEndifWithoutIfIsDiagnosed(t *testing.T) {
	s := NewConditionalStack()
	err := s.Endif()
	assert.Error(t, err)
}

func TestConditionalStackCheckBalanced(t *testing.T) {
	s := NewConditionalStack()
	assert.NoError(t, s.CheckBalanced())
	s.If(true)
	assert.Error(t, s.CheckBalanced())
	require.NoError(t, s.Endif())
	assert.NoError(t, s.CheckBalanced())
}

func TestConditionalStackNeedsElifEval(t *testing.T) {
	s := NewConditionalStack()
	s.If(false)
	assert.True(t, s.NeedsElifEval())
	s.Elif(true)
	assert.False(t, s.NeedsElifEval(), "a branch was already taken")
}

func TestConditionalStackDoubleElseIsStillDiagnosableByCaller(t *testing.T) {
	// The stack itself doesn't reject a second #else (that diagnostic,
	// if any, belongs to the directive parser); it simply can't select
	// a branch that is already processed.
	s := NewConditionalStack()
	s.If(true)
	s.Else()
	s.Else()
	assert.False(t, s.IsActive())
}
