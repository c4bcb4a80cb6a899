package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc  *appsvcs.Services
	errs errhttp.Writer
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, errs errhttp.Writer) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, errs: errs}
}

// Execute deletes an item.
//
//	@Summary		Delete item
//	@Tags			items
//	@Param			id	path	string	true	"Item ID (UUID)"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	"Item not found"
//	@Router			/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		h.errs.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
