package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/go-chi/chi/v5"
)

const maxImageMemory = 32 << 20

// Список рецептов пользователя с фильтрацией по тегам и ингредиентам
// (GET /recipe/recipes).
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	var req recipeservice.ListRecipesRequest

	tagIDs, err := ParseIDList(r.URL.Query().Get("tags"))
	if err != nil {
		handleError(w, fmt.Errorf("tags filter error: %w", err), http.StatusBadRequest)

		return
	}

	ingredientIDs, err := ParseIDList(r.URL.Query().Get("ingredients"))
	if err != nil {
		handleError(w, fmt.Errorf("ingredients filter error: %w", err), http.StatusBadRequest)

		return
	}

	req.TagIDs = tagIDs
	req.IngredientIDs = ingredientIDs

	recipes, err := s.recipeService.ListRecipes(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("list recipes error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, recipes)
}

// Создание рецепта, теги и ингредиенты создаются по необходимости
// (POST /recipe/recipes).
func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeservice.CreateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if req.Title == "" {
		handleError(w, fmt.Errorf("title is required"), http.StatusBadRequest) //nolint:perfsprint

		return
	}

	recipe, err := s.recipeService.CreateRecipe(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("create recipe error: %w", err))

		return
	}

	respondJSON(w, http.StatusCreated, recipe)
}

// (GET /recipe/recipes/{id}).
func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.GetRecipe(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, fmt.Errorf("get recipe error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, recipe)
}

// Частичное обновление: отсутствующее поле не изменяется
// (PATCH /recipe/recipes/{id}).
func (s *Server) patchRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req recipeservice.UpdateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.UpdateRecipe(r.Context(), userFromContext(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("update recipe error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, recipe)
}

// Полная замена: все скалярные поля обязательны
// (PUT /recipe/recipes/{id}).
func (s *Server) putRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req recipeservice.UpdateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if req.Title == nil || req.TimeMinutes == nil || req.Price == nil {
		handleError(w, fmt.Errorf("title, time_minutes and price are required"), //nolint:perfsprint
			http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.UpdateRecipe(r.Context(), userFromContext(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("update recipe error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, recipe)
}

// (DELETE /recipe/recipes/{id}).
func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := s.recipeService.DeleteRecipe(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleServiceError(w, fmt.Errorf("delete recipe error: %w", err))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Загрузка изображения рецепта, multipart поле "image"
// (POST /recipe/recipes/{id}/upload-image).
func (s *Server) uploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		handleError(w, fmt.Errorf("parse multipart form error: %w", err), http.StatusBadRequest)

		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		handleError(w, fmt.Errorf("form file error: %w", err), http.StatusBadRequest)

		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handleError(w, fmt.Errorf("read file error: %w", err), http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.AttachImage(r.Context(), userFromContext(r.Context()), id, data)
	if err != nil {
		handleServiceError(w, fmt.Errorf("attach image error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, recipe)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id error: %w", err)
	}

	return id, nil
}
