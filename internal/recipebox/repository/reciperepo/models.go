package reciperepo

import (
	"errors"
	"time"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("recipe not found")

type GetRecipesRequest struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// UpdateRecipeRequest distinguishes "not supplied" (nil) from "supplied empty".
// A nil Tags leaves the relation untouched; a pointer to an empty slice clears it.
type UpdateRecipeRequest struct {
	RecipeID    int64
	UserID      int64
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Description *string
	Tags        *[]models.Tag
	Ingredients *[]models.Ingredient
	UpdatedAt   time.Time
}
