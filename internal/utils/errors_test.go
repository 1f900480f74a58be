package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesByKind(t *testing.T) {
	err := NotFoundError("booking")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "booking not found", err.Error())
}

func TestAppErrorSurvivesWrapping(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("failed to complete booking: %w", WrapError(KindUnavailable, "graph store unreachable", cause))

	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Contains(t, err.Error(), "socket closed")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
