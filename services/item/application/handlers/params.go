package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/httpx"
)

// itemIDParam parses the {id} path parameter. On failure it writes
// 400 {"error":"invalid item id"} and returns false.
func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return uuid.Nil, false
	}
	return id, true
}

func itemLocation(id uuid.UUID) string {
	return "/items/" + id.String()
}
