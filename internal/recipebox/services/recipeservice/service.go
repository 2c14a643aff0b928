package recipeservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // registered for upload validation
	_ "image/jpeg" // registered for upload validation
	_ "image/png"  // registered for upload validation
	"strings"
	"time"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	repo "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/Leopold1975/recipebox/pkg/logger"
)

var (
	ErrNotFound     = errors.New("recipe not found")
	ErrInvalidImage = errors.New("payload is not a decodable image")
)

type Repository interface {
	CreateRecipe(context.Context, models.Recipe) (models.Recipe, error)
	GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error)
	ListRecipes(ctx context.Context, userID int64, req repo.GetRecipesRequest) ([]models.Recipe, error)
	UpdateRecipe(context.Context, repo.UpdateRecipeRequest) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID int64) (string, error)
	SetRecipeImage(ctx context.Context, userID, recipeID int64, imagePath string) (string, error)
	Shutdown(context.Context) error
}

type Cache interface {
	GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, error)
	SetRecipe(context.Context, models.Recipe) error
	DeleteRecipe(ctx context.Context, recipeID int64) error
}

type ImageStore interface {
	Save(recipeID int64, ext string, data []byte) (string, error)
	Remove(path string) error
}

type RecipeService struct {
	recipeRepo  Repository
	recipeCache Cache
	images      ImageStore
	lg          logger.Logger
}

func New(recipeRepo Repository, recipeCache Cache, images ImageStore, lg logger.Logger) *RecipeService {
	return &RecipeService{
		recipeRepo:  recipeRepo,
		recipeCache: recipeCache,
		images:      images,
		lg:          lg,
	}
}

func (rs *RecipeService) CreateRecipe(ctx context.Context, user models.User,
	req CreateRecipeRequest,
) (models.Recipe, error) {
	now := time.Now()

	recipe := models.Recipe{ //nolint:exhaustruct
		UserID:      user.ID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Description: req.Description,
		Tags:        tagModels(user.ID, req.Tags),
		Ingredients: ingredientModels(user.ID, req.Ingredients),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	recipe, err := rs.recipeRepo.CreateRecipe(ctx, recipe)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("create recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, recipe); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return recipe, nil
}

func (rs *RecipeService) GetRecipe(ctx context.Context, user models.User, recipeID int64) (models.Recipe, error) {
	recipe, err := rs.recipeCache.GetRecipe(ctx, recipeID)
	if err == nil && recipe.UserID == user.ID {
		return recipe, nil
	}

	recipe, err = rs.recipeRepo.GetRecipe(ctx, user.ID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, recipe); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return recipe, nil
}

// ListRecipes returns the user's recipes, most recent first. ID filters are
// OR within one group and AND across groups; join duplicates are reduced to
// a set before returning.
func (rs *RecipeService) ListRecipes(ctx context.Context, user models.User,
	req ListRecipesRequest,
) ([]models.Recipe, error) {
	repoReq := repo.GetRecipesRequest{
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	}

	recipes, err := rs.recipeRepo.ListRecipes(ctx, user.ID, repoReq)
	if err != nil {
		return nil, fmt.Errorf("list recipes error: %w", err)
	}

	return dedupeRecipes(recipes), nil
}

func (rs *RecipeService) UpdateRecipe(ctx context.Context, user models.User, recipeID int64,
	req UpdateRecipeRequest,
) (models.Recipe, error) {
	repoReq := repo.UpdateRecipeRequest{ //nolint:exhaustruct
		RecipeID:    recipeID,
		UserID:      user.ID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Description: req.Description,
		UpdatedAt:   time.Now(),
	}

	if req.Tags != nil {
		tags := tagModels(user.ID, *req.Tags)
		repoReq.Tags = &tags
	}

	if req.Ingredients != nil {
		ingredients := ingredientModels(user.ID, *req.Ingredients)
		repoReq.Ingredients = &ingredients
	}

	recipe, err := rs.recipeRepo.UpdateRecipe(ctx, repoReq)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("update recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, recipe); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return recipe, nil
}

func (rs *RecipeService) DeleteRecipe(ctx context.Context, user models.User, recipeID int64) error {
	imagePath, err := rs.recipeRepo.DeleteRecipe(ctx, user.ID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete recipe error: %w", err)
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	if imagePath != "" {
		if err := rs.images.Remove(imagePath); err != nil {
			rs.lg.Errorf("remove image error: %s", err.Error())
		}
	}

	return nil
}

// AttachImage validates the payload before anything is persisted: a payload
// that does not decode as an image leaves the recipe and its previous image
// untouched.
func (rs *RecipeService) AttachImage(ctx context.Context, user models.User, recipeID int64,
	data []byte,
) (models.Recipe, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return models.Recipe{}, ErrInvalidImage
	}

	path, err := rs.images.Save(recipeID, extension(format), data)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("save image error: %w", err)
	}

	old, err := rs.recipeRepo.SetRecipeImage(ctx, user.ID, recipeID, path)
	if err != nil {
		if errR := rs.images.Remove(path); errR != nil {
			rs.lg.Errorf("remove image error: %s", errR.Error())
		}

		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("set recipe image error: %w", err)
	}

	if old != "" && old != path {
		if err := rs.images.Remove(old); err != nil {
			rs.lg.Errorf("remove image error: %s", err.Error())
		}
	}

	recipe, err := rs.recipeRepo.GetRecipe(ctx, user.ID, recipeID)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, recipe); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return recipe, nil
}

func (rs *RecipeService) Shutdown(ctx context.Context) error {
	if err := rs.recipeRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown recipe repo error: %w", err)
	}

	return nil
}

func tagModels(userID int64, payloads []TagPayload) []models.Tag {
	tags := make([]models.Tag, 0, len(payloads))

	for _, p := range payloads {
		tags = append(tags, models.Tag{ //nolint:exhaustruct
			UserID: userID,
			Name:   strings.TrimSpace(p.Name),
		})
	}

	return tags
}

func ingredientModels(userID int64, payloads []IngredientPayload) []models.Ingredient {
	ingredients := make([]models.Ingredient, 0, len(payloads))

	for _, p := range payloads {
		ingredients = append(ingredients, models.Ingredient{ //nolint:exhaustruct
			UserID:   userID,
			Name:     strings.TrimSpace(p.Name),
			Quantity: p.Quantity,
			Scale:    p.Scale,
		})
	}

	return ingredients
}

func dedupeRecipes(recipes []models.Recipe) []models.Recipe {
	seen := make(map[int64]struct{}, len(recipes))
	out := make([]models.Recipe, 0, len(recipes))

	for _, r := range recipes {
		if _, ok := seen[r.ID]; ok {
			continue
		}

		seen[r.ID] = struct{}{}

		out = append(out, r)
	}

	return out
}

func extension(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}

	return "." + format
}
