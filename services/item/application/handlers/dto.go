package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/inventory/services/item/domain/models"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ItemResponse is the read shape of an Item.
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string          `json:"name"        example:"Hat"`
	Description string          `json:"description" example:"Wool, one size"`
	Price       decimal.Decimal `json:"price"       swaggertype:"number" example:"15"`
	CreatedDate time.Time       `json:"createdDate" example:"2024-01-15T10:30:00.123Z"`
} // @name Item

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name        string          `json:"name"        validate:"required,notblank,max=255" example:"Hat"`
	Description string          `json:"description"                                      example:"Wool, one size"`
	Price       decimal.Decimal `json:"price"       validate:"decimal_gt=0,decimal_lte=10000,decimal_max_scale=28" swaggertype:"number" maximum:"10000" example:"15"`
} // @name CreateItemRequest

// UpdateItemRequest is the request body for PUT /items/{id}. All three fields
// are replaced.
type UpdateItemRequest struct {
	Name        string          `json:"name"        validate:"required,notblank,max=255" example:"Hat"`
	Description string          `json:"description"                                      example:"Wool, one size"`
	Price       decimal.Decimal `json:"price"       validate:"decimal_gt=0,decimal_lte=10000,decimal_max_scale=28" swaggertype:"number" maximum:"10000" example:"17.5"`
} // @name UpdateItemRequest

// ErrorResponse is returned on error responses that carry a body.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid item id"`
} // @name ErrorResponse

// ValidationErrorResponse is returned when a request body fails validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"Validation failed"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorResponse

// NewItemResponse maps an Item to its read shape.
func NewItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       item.Price.Decimal(),
		CreatedDate: item.CreatedDate,
	}
}

// NewItemResponses maps items to read shapes. The result is never nil.
func NewItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemResponse(item))
	}
	return out
}
