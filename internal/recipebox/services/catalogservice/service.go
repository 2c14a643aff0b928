package catalogservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo"
)

type Repository interface {
	GetOrCreateTag(ctx context.Context, userID int64, name string) (models.Tag, error)
	GetOrCreateIngredient(ctx context.Context, ing models.Ingredient) (models.Ingredient, error)
	GetTag(ctx context.Context, userID, tagID int64) (models.Tag, error)
	GetIngredient(ctx context.Context, userID, ingredientID int64) (models.Ingredient, error)
	ListTags(ctx context.Context, userID int64, req catalogrepo.ListRequest) ([]models.Tag, error)
	ListIngredients(ctx context.Context, userID int64, req catalogrepo.ListRequest) ([]models.Ingredient, error)
	UpdateTag(ctx context.Context, tag models.Tag) error
	UpdateIngredient(ctx context.Context, req catalogrepo.UpdateIngredientRequest) error
	DeleteTag(ctx context.Context, userID, tagID int64) error
	DeleteIngredient(ctx context.Context, userID, ingredientID int64) error
	Shutdown(ctx context.Context) error
}

type CatalogService struct {
	catalogRepo Repository
}

func New(catalogRepo Repository) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
	}
}

// ListTags returns the user's tags, name-descending. With AssignedOnly the
// join may yield a tag once per referencing recipe, so the result is reduced
// to a set before returning.
func (cs *CatalogService) ListTags(ctx context.Context, user models.User,
	req ListRequest,
) ([]models.Tag, error) {
	tags, err := cs.catalogRepo.ListTags(ctx, user.ID, catalogrepo.ListRequest{AssignedOnly: req.AssignedOnly})
	if err != nil {
		return nil, fmt.Errorf("list tags error: %w", err)
	}

	return dedupeTags(tags), nil
}

func (cs *CatalogService) ListIngredients(ctx context.Context, user models.User,
	req ListRequest,
) ([]models.Ingredient, error) {
	ingredients, err := cs.catalogRepo.ListIngredients(ctx, user.ID,
		catalogrepo.ListRequest{AssignedOnly: req.AssignedOnly})
	if err != nil {
		return nil, fmt.Errorf("list ingredients error: %w", err)
	}

	return dedupeIngredients(ingredients), nil
}

func (cs *CatalogService) UpdateTag(ctx context.Context, user models.User, tagID int64,
	req UpdateTagRequest,
) (models.Tag, error) {
	if req.Name != nil {
		tag := models.Tag{ID: tagID, UserID: user.ID, Name: strings.TrimSpace(*req.Name)}

		if err := cs.catalogRepo.UpdateTag(ctx, tag); err != nil {
			return models.Tag{}, fmt.Errorf("update tag error: %w", err)
		}
	}

	tag, err := cs.catalogRepo.GetTag(ctx, user.ID, tagID)
	if err != nil {
		return models.Tag{}, fmt.Errorf("get tag error: %w", err)
	}

	return tag, nil
}

func (cs *CatalogService) DeleteTag(ctx context.Context, user models.User, tagID int64) error {
	if err := cs.catalogRepo.DeleteTag(ctx, user.ID, tagID); err != nil {
		return fmt.Errorf("delete tag error: %w", err)
	}

	return nil
}

func (cs *CatalogService) UpdateIngredient(ctx context.Context, user models.User, ingredientID int64,
	req UpdateIngredientRequest,
) (models.Ingredient, error) {
	if req.Name != nil || req.Quantity != nil || req.Scale != nil {
		repoReq := catalogrepo.UpdateIngredientRequest{
			ID:       ingredientID,
			UserID:   user.ID,
			Name:     req.Name,
			Quantity: req.Quantity,
			Scale:    req.Scale,
		}

		if repoReq.Name != nil {
			trimmed := strings.TrimSpace(*repoReq.Name)
			repoReq.Name = &trimmed
		}

		if err := cs.catalogRepo.UpdateIngredient(ctx, repoReq); err != nil {
			return models.Ingredient{}, fmt.Errorf("update ingredient error: %w", err)
		}
	}

	ing, err := cs.catalogRepo.GetIngredient(ctx, user.ID, ingredientID)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("get ingredient error: %w", err)
	}

	return ing, nil
}

func (cs *CatalogService) DeleteIngredient(ctx context.Context, user models.User, ingredientID int64) error {
	if err := cs.catalogRepo.DeleteIngredient(ctx, user.ID, ingredientID); err != nil {
		return fmt.Errorf("delete ingredient error: %w", err)
	}

	return nil
}

func (cs *CatalogService) Shutdown(ctx context.Context) error {
	if err := cs.catalogRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown catalog repo error: %w", err)
	}

	return nil
}

func dedupeTags(tags []models.Tag) []models.Tag {
	seen := make(map[int64]struct{}, len(tags))
	out := make([]models.Tag, 0, len(tags))

	for _, t := range tags {
		if _, ok := seen[t.ID]; ok {
			continue
		}

		seen[t.ID] = struct{}{}

		out = append(out, t)
	}

	return out
}

func dedupeIngredients(ingredients []models.Ingredient) []models.Ingredient {
	seen := make(map[int64]struct{}, len(ingredients))
	out := make([]models.Ingredient, 0, len(ingredients))

	for _, i := range ingredients {
		if _, ok := seen[i.ID]; ok {
			continue
		}

		seen[i.ID] = struct{}{}

		out = append(out, i)
	}

	return out
}
