package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/komplek-api/internal/domain"
)

func TestTypedErrors_MatchSentinel(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", domain.NewValidationError("due_date", "fuera de rango"), domain.ErrValidation},
		{"immutable", &domain.ImmutableFieldError{Field: "amount"}, domain.ErrImmutableField},
		{"out of window", &domain.OutOfWindowError{Period: "2025-01", Start: time.Now(), End: time.Now()}, domain.ErrOutOfWindow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, errors.Is(tc.err, tc.sentinel))
			wrapped := fmt.Errorf("iuran.Update: %w", tc.err)
			assert.True(t, errors.Is(wrapped, tc.sentinel), "debe sobrevivir al wrapping")
		})
	}
}

func TestValidationError_ExponeCampo(t *testing.T) {
	err := fmt.Errorf("crear: %w", domain.NewValidationError("participants", "vacío"))

	var ve *domain.ValidationError
	if assert.True(t, errors.As(err, &ve)) {
		assert.Equal(t, "participants", ve.Field)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, domain.IsRetryable(fmt.Errorf("insert: %w", domain.ErrTransientStore)))
	assert.False(t, domain.IsRetryable(domain.ErrConflict))
	assert.False(t, domain.IsRetryable(domain.NewValidationError("x", "y")))
}
