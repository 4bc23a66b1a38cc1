package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/komplek-api/internal/domain"
)

func TestWrapErr_Clasificacion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, domain.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrReferentialIntegrity},
		{"check", &pgconn.PgError{Code: "23514"}, domain.ErrValidation},
		{"serialización", &pgconn.PgError{Code: "40001"}, domain.ErrTransientStore},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrTransientStore},
		{"conexión", &pgconn.PgError{Code: "08006"}, domain.ErrTransientStore},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, domain.ErrTransientStore},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), domain.ErrTransientStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapErr("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err, "conserva el error original")
		})
	}
}

func TestWrapErr_SinClasificar(t *testing.T) {
	assert.Nil(t, wrapErr("op", nil))

	err := wrapErr("op", &pgconn.PgError{Code: "42P01"})
	assert.False(t, domain.IsRetryable(err))
	assert.False(t, errors.Is(err, domain.ErrConflict))

	err = wrapErr("op", pgx.ErrNoRows)
	assert.True(t, isNoRows(err))
	assert.False(t, domain.IsRetryable(err))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", derefStr(nullIfEmpty("x")))
	assert.Equal(t, "", derefStr(nil))
}

func TestGetByID_IDNoUUIDEsInexistente(t *testing.T) {
	ctx := context.Background()
	// Sin Querier: un id mal formado no debe llegar a la base.
	inv, err := NewInvoiceRepository(nil).GetByID(ctx, "c1", "abc")
	assert.NoError(t, err)
	assert.Nil(t, inv)

	def, err := NewIuranRepository(nil).GetByID(ctx, "c1", "abc")
	assert.NoError(t, err)
	assert.Nil(t, def)

	account, err := NewChartOfAccountsRepository(nil).GetByID(ctx, "c1", "1-1200")
	assert.NoError(t, err)
	assert.Nil(t, account)

	profile, err := NewProfileRepository(nil).GetByID(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, profile)

	assert.True(t, isUUID("7c9e6679-7425-40de-944b-e07fc1f90ae7"))
	assert.False(t, isUUID("inv-1"))
}
