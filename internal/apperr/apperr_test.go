package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindAlreadyBooked, "document is booked")
	assert.Equal(t, KindAlreadyBooked, KindOf(err))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindAlreadyBooked, KindOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestIsKind(t *testing.T) {
	err := Newf(KindUnknownAccount, "no account %q", "9999")
	assert.True(t, IsKind(err, KindUnknownAccount))
	assert.False(t, IsKind(err, KindValidation))
}

func TestWithStep(t *testing.T) {
	base := New(KindImbalancedEntry, "debits != credits")
	stepped := base.WithStep("post_entry")

	assert.Equal(t, "post_entry", stepped.Step)
	assert.Empty(t, base.Step, "WithStep must not mutate the original")
	assert.Equal(t, base.Kind, stepped.Kind)
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindInternal, "persist_entry", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persist_entry", err.Step)
	assert.Contains(t, err.Error(), "disk full")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusUnprocessableEntity},
		{KindImbalancedEntry, http.StatusUnprocessableEntity},
		{KindInvalidState, http.StatusUnprocessableEntity},
		{KindPeriodClosed, http.StatusUnprocessableEntity},
		{KindDuplicateCode, http.StatusConflict},
		{KindAlreadyBooked, http.StatusConflict},
		{KindConflict, http.StatusConflict},
		{KindUnknownAccount, http.StatusNotFound},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.kind), "kind %s", tt.kind)
	}
}
