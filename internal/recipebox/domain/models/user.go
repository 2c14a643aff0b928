package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"` //nolint:tagliatelle
	IsStaff      bool      `json:"is_staff"`  //nolint:tagliatelle
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
