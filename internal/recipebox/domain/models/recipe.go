package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tag struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Name   string `json:"name"`
}

type Ingredient struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"-"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Scale    string          `json:"scale"`
}

type Recipe struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"` //nolint:tagliatelle
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Tags        []Tag           `json:"tags"`
	Ingredients []Ingredient    `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"` //nolint:tagliatelle
	UpdatedAt   time.Time       `json:"updated_at"` //nolint:tagliatelle
}
