package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autenticado")
	ErrInvalidCreds = errors.New("credenciales inválidas")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Taxonomía del núcleo de facturación y libro mayor.
	ErrValidation           = errors.New("validación fallida")
	ErrImmutableField       = errors.New("campo inmutable tras la generación de tagihan")
	ErrOutOfWindow          = errors.New("periodo fuera de la vigencia del iuran")
	ErrReferentialIntegrity = errors.New("integridad referencial: recurso referenciado por el libro mayor")
	ErrNotAuthorized        = errors.New("no autorizado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrTransientStore       = errors.New("fallo transitorio del store")
	ErrUnbalancedLedger     = errors.New("asiento descuadrado: débitos y créditos no coinciden")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
)

// ValidationError describe una entrada malformada en un campo concreto.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación fallida en %s: %s", e.Field, e.Message)
}

// Is permite errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError atajo para construir un *ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ImmutableFieldError se produce al intentar cambiar amount o participants
// de un iuran que ya tiene tagihan generadas.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("el campo %s no puede modificarse: el iuran ya tiene tagihan generadas", e.Field)
}

// Is permite errors.Is(err, ErrImmutableField).
func (e *ImmutableFieldError) Is(target error) bool { return target == ErrImmutableField }

// OutOfWindowError se produce al generar para un periodo fuera de [start_date, end_date]
// o para un iuran desactivado.
type OutOfWindowError struct {
	Period      string
	Start       time.Time
	End         time.Time
	Deactivated bool
}

func (e *OutOfWindowError) Error() string {
	if e.Deactivated {
		return fmt.Sprintf("periodo %s fuera de vigencia: iuran desactivado", e.Period)
	}
	return fmt.Sprintf("periodo %s fuera de vigencia [%s, %s]",
		e.Period, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Is permite errors.Is(err, ErrOutOfWindow).
func (e *OutOfWindowError) Is(target error) bool { return target == ErrOutOfWindow }

// IsRetryable informa si la operación puede reintentarse sin riesgo (solo operaciones idempotentes).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
