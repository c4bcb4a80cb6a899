package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	svc  *appsvcs.Services
	errs errhttp.Writer
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services, errs errhttp.Writer) *PutItemHandler {
	return &PutItemHandler{svc: svc, errs: errs}
}

// Execute replaces the name, description and price of an existing item.
// The body is validated before the item is looked up.
//
//	@Summary		Update item
//	@Tags			items
//	@Accept			json
//	@Param			id		path	string				true	"Item ID (UUID)"
//	@Param			request	body	UpdateItemRequest	true	"Replacement fields"
//	@Success		204
//	@Failure		400	{object}	ValidationErrorResponse
//	@Failure		404	"Item not found"
//	@Router			/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Item.Update(r.Context(), id, req.Name, req.Description, req.Price); err != nil {
		h.errs.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
