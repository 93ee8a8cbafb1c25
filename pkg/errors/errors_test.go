package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	errStoryNotFound := Mark("story not found", ErrNotFound)
	wrapped := fmt.Errorf("get story: %w", errStoryNotFound)

	assert.Equal(t, "story not found", errStoryNotFound.Error())
	assert.True(t, Is(wrapped, errStoryNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrInvalidInput, "Enter a valid UUID.")

	assert.Equal(t, "Enter a valid UUID.", GetMessage(err))
	assert.Equal(t, "Enter a valid UUID.: invalid input", err.Error())
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, "plain", GetMessage(fmt.Errorf("plain")))
	assert.Empty(t, GetMessage(nil))
}

func TestIsBadRequest(t *testing.T) {
	errMalformed := Mark("JSON parse error.", ErrBadRequest)

	assert.True(t, IsBadRequest(fmt.Errorf("decode body: %w", errMalformed)))
	assert.False(t, IsBadRequest(ErrInvalidInput))
	assert.Equal(t, "JSON parse error.", GetMessage(errMalformed))
}
