package catalogrepo

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("entity not found")

type ListRequest struct {
	AssignedOnly bool
}

// UpdateIngredientRequest carries only the fields the caller supplied;
// nil means "leave as is".
type UpdateIngredientRequest struct {
	ID       int64
	UserID   int64
	Name     *string
	Quantity *decimal.Decimal
	Scale    *string
}
