package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{BadRequest("missing"), http.StatusBadRequest, "missing"},
		{Unauthorized("nope"), http.StatusUnauthorized, "nope"},
		{Forbidden(), http.StatusForbidden, "Forbidden"},
		{NotFound("gone"), http.StatusNotFound, "gone"},
		{Storage("Failed to add program", errors.New("conn refused")), http.StatusInternalServerError, "Failed to add program"},
		{errors.New("raw driver error"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		code, msg := Status(tc.err)
		assert.Equal(t, tc.code, code)
		assert.Equal(t, tc.msg, msg)
	}
}

func TestStatusSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Teacher not found"))
	code, msg := Status(err)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Teacher not found", msg)
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindForbidden))
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Storage("Failed to update", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "deadlock detected")
}
