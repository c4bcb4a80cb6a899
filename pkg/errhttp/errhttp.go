// Package errhttp maps domain sentinel errors to HTTP responses.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/inventory/pkg/httpx"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
)

// Writer writes error responses. In production the message of a 5xx
// response is replaced with its status text.
type Writer struct {
	IsProduction bool
}

// WriteError maps err to an HTTP status code and writes the response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Not-found is answered with an empty body; everything else gets a JSON
// {"error": ...} body. Unrecognized errors become 500 Internal Server Error.
func (wr Writer) WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusNotFound {
		w.WriteHeader(status)
		return
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, wr.IsProduction))
}

// WriteError is Writer{}.WriteError, exposing full messages.
func WriteError(w http.ResponseWriter, err error) {
	Writer{}.WriteError(w, err)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidItemPrice):
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
