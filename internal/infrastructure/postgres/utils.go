package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/komplek-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

// isUUID las claves son uuid; un id con otro formato no existe y no debe llegar al servidor.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// wrapErr envuelve err con op y lo clasifica en la taxonomía de dominio:
// 23505 → ErrConflict, 23503 → ErrReferentialIntegrity, 23514 → ErrValidation,
// timeouts, conexión caída, serialización y deadlock → ErrTransientStore.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	code := pgCode(err)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case code == "23503":
		return fmt.Errorf("%s: %w: %w", op, domain.ErrReferentialIntegrity, err)
	case code == "23514":
		return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
	case isTransient(err, code):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error, code string) bool {
	switch {
	case code == "40001", code == "40P01", code == "57P01", code == "57014", strings.HasPrefix(code, "08"):
		return true
	case code != "":
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
