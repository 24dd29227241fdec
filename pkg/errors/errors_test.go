package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeLoad, "backend exploded")
	outer := Wrap(inner, ErrorTypeInternal, "prepare failed")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, stderrors.Is(outer, inner))
	assert.Equal(t, "internal: prepare failed: load_failure: backend exploded", outer.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeLoad, "nothing"))
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeInvalidKey, "empty")
	assert.True(t, IsType(err, ErrorTypeInvalidKey))
	assert.False(t, IsType(err, ErrorTypeLoad))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeInvalidKey))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeDuplicateInstance, "id registered twice").
		WithDetail("id", uint64(7)).
		WithDetail("template", "enemy")

	assert.Equal(t, uint64(7), err.Details["id"])
	assert.Equal(t, "enemy", err.Details["template"])
	assert.NotEmpty(t, err.Stack)
}
