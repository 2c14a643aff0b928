package server

import (
	"fmt"
	"strconv"
	"strings"
)

type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name"`
}

type TokenRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ParseIDList parses a comma-separated id filter such as "1,2,3".
// An empty value means no filter.
func ParseIDList(value string) ([]int64, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q error: %w", p, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
