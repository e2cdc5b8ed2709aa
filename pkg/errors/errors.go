// Package errors holds the HTTP-typed errors returned to the dashboard. Messages
// are user facing and stay in Portuguese.
package errors

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

const (
	MsgUnauthorized     = "Acesso não autorizado"
	MsgForbidden        = "Acesso negado"
	MsgInvalidLogin     = "Usuário ou senha inválidos."
	MsgInactiveUser     = "Usuário desativado. Contate o administrador."
	MsgTooManyAttempts  = "Muitas tentativas de login. Tente novamente em instantes."
	MsgDateRangeMissing = "Data inicial e final são obrigatórias."
	MsgRevenueDates     = "As datas inicial e final são obrigatórias."
	MsgInvalidValue     = "Valor inválido"
	MsgSelfDeactivate   = "Você não pode desativar a si mesmo!"
	MsgUserExists       = "Usuário já existe."
	MsgInternal         = "Erro interno no servidor."
)

// TableNotFound is returned when an endpoint's mandatory table is absent.
func TableNotFound(table string) error {
	return httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("A tabela '%s' não foi encontrada.", table))
}

// MissingParameter is a 400 naming the absent query parameter.
func MissingParameter(name string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("O parâmetro '%s' é obrigatório.", name))
}

func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

func Unauthorized() error {
	return httperror.NewHTTPError(http.StatusUnauthorized, MsgUnauthorized)
}

// InvalidLogin is the 401 for an unknown user or a wrong password.
func InvalidLogin() error {
	return httperror.NewHTTPError(http.StatusUnauthorized, MsgInvalidLogin)
}

func InactiveUser() error {
	return httperror.NewHTTPError(http.StatusForbidden, MsgInactiveUser)
}

func Forbidden() error {
	return httperror.NewHTTPError(http.StatusForbidden, MsgForbidden)
}

func NotFound(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

func Conflict(message string) error {
	return httperror.NewHTTPError(http.StatusConflict, message)
}

func TooManyRequests() error {
	return httperror.NewHTTPError(http.StatusTooManyRequests, MsgTooManyAttempts)
}

// Query wraps a database failure as a 500 that names the failing report.
func Query(report string, err error) error {
	return httperror.NewHTTPErrorf(http.StatusInternalServerError, "Erro ao consultar %s: %v", report, err)
}
