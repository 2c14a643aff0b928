package catalogservice

import "github.com/shopspring/decimal"

type ListRequest struct {
	AssignedOnly bool
}

type UpdateTagRequest struct {
	Name *string `json:"name"`
}

type UpdateIngredientRequest struct {
	Name     *string          `json:"name"`
	Quantity *decimal.Decimal `json:"quantity"`
	Scale    *string          `json:"scale"`
}
