package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/komplek-api/internal/domain"
)

// DateLayout formato de fechas en requests.
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// reportar el nombre JSON del campo, no el de Go
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate aplica las reglas `validate` del struct y traduce el primer fallo a *domain.ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return domain.NewValidationError(fe.Field(), describe(fe))
	}
	return domain.NewValidationError("body", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "formato esperado " + fe.Param()
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "unique":
		return "no admite duplicados"
	default:
		return "inválido (" + fe.Tag() + ")"
	}
}
