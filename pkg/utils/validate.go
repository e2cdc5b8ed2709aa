package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	_ = validate.RegisterValidation("isodate", isoDate)
}

func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, ValidationErrorToString(err)
	}
	return value, nil
}

// ValidationErrorToString renders validator failures as one readable line per field.
func ValidationErrorToString(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("O campo '%s' é obrigatório.", fe.Field()))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("O campo '%s' deve estar no formato AAAA-MM-DD.", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("O campo '%s' deve ser um de: %s.", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("Valor inválido para o campo '%s' (regra '%s').", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, " "))
}

// isodate accepts YYYY-MM-DD and the empty string.
func isoDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
