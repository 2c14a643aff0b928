package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/catalogservice"
)

// Список тегов, assigned_only оставляет только используемые хотя бы одним рецептом
// (GET /recipe/tags).
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	req := catalogservice.ListRequest{AssignedOnly: assignedOnly(r)}

	tags, err := s.catalogService.ListTags(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("list tags error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// (PATCH /recipe/tags/{id}).
func (s *Server) patchTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req catalogservice.UpdateTagRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	tag, err := s.catalogService.UpdateTag(r.Context(), userFromContext(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("update tag error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, tag)
}

// (DELETE /recipe/tags/{id}).
func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := s.catalogService.DeleteTag(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleServiceError(w, fmt.Errorf("delete tag error: %w", err))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// (GET /recipe/ingredients).
func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	req := catalogservice.ListRequest{AssignedOnly: assignedOnly(r)}

	ingredients, err := s.catalogService.ListIngredients(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("list ingredients error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, ingredients)
}

// (PATCH /recipe/ingredients/{id}).
func (s *Server) patchIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req catalogservice.UpdateIngredientRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	ing, err := s.catalogService.UpdateIngredient(r.Context(), userFromContext(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("update ingredient error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, ing)
}

// (DELETE /recipe/ingredients/{id}).
func (s *Server) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := s.catalogService.DeleteIngredient(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleServiceError(w, fmt.Errorf("delete ingredient error: %w", err))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func assignedOnly(r *http.Request) bool {
	v := r.URL.Query().Get("assigned_only")

	return v == "1" || v == "true"
}
