package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		se.Err = err.Error()

		b, err := json.Marshal(se)
		if err != nil {
			return []byte(`{
				"error": "marshal error"
			  }`)
		}

		return b
	}

	return b
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}

// handleServiceError maps the error taxonomy to status codes. An unowned
// resource reads as plain not-found so other users' data stays invisible.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrInvalidToken):
		handleError(w, err, http.StatusUnauthorized)
	case errors.Is(err, authservice.ErrInvalidCredentials),
		errors.Is(err, authservice.ErrShortPassword),
		errors.Is(err, userrepo.ErrAlreadyExists),
		errors.Is(err, recipeservice.ErrInvalidImage):
		handleError(w, err, http.StatusBadRequest)
	case errors.Is(err, recipeservice.ErrNotFound),
		errors.Is(err, catalogrepo.ErrNotFound),
		errors.Is(err, userrepo.ErrNotFound):
		handleError(w, err, http.StatusNotFound)
	default:
		handleError(w, err, http.StatusInternalServerError)
	}
}
