package recipeservice

import "github.com/shopspring/decimal"

type TagPayload struct {
	Name string `json:"name"`
}

type IngredientPayload struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Scale    string          `json:"scale"`
}

type CreateRecipeRequest struct {
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"` //nolint:tagliatelle
	Price       decimal.Decimal     `json:"price"`
	Link        string              `json:"link"`
	Description string              `json:"description"`
	Tags        []TagPayload        `json:"tags"`
	Ingredients []IngredientPayload `json:"ingredients"`
}

// UpdateRecipeRequest keeps "absent" apart from "zero": nil scalar fields are
// not touched, a nil Tags or Ingredients leaves the relation as is while an
// empty non-nil slice clears it. There is deliberately no owner field here,
// so an update can never reassign a recipe to another user.
type UpdateRecipeRequest struct {
	Title       *string              `json:"title"`
	TimeMinutes *int                 `json:"time_minutes"` //nolint:tagliatelle
	Price       *decimal.Decimal     `json:"price"`
	Link        *string              `json:"link"`
	Description *string              `json:"description"`
	Tags        *[]TagPayload        `json:"tags"`
	Ingredients *[]IngredientPayload `json:"ingredients"`
}

type ListRecipesRequest struct {
	TagIDs        []int64
	IngredientIDs []int64
}
