package catalogservice_test

import (
	"context"
	"testing"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/catalogservice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	tags        []models.Tag
	ingredients []models.Ingredient

	lastListReq       catalogrepo.ListRequest
	updateTagCalls    int
	updateIngredCalls int
}

func (f *fakeCatalogRepo) GetOrCreateTag(_ context.Context, userID int64, name string) (models.Tag, error) {
	for _, t := range f.tags {
		if t.UserID == userID && t.Name == name {
			return t, nil
		}
	}

	t := models.Tag{ID: int64(len(f.tags) + 1), UserID: userID, Name: name}
	f.tags = append(f.tags, t)

	return t, nil
}

func (f *fakeCatalogRepo) GetOrCreateIngredient(_ context.Context, ing models.Ingredient) (models.Ingredient, error) {
	for _, i := range f.ingredients {
		if i.UserID == ing.UserID && i.Name == ing.Name {
			return i, nil
		}
	}

	ing.ID = int64(len(f.ingredients) + 1)
	f.ingredients = append(f.ingredients, ing)

	return ing, nil
}

func (f *fakeCatalogRepo) GetTag(_ context.Context, userID, tagID int64) (models.Tag, error) {
	for _, t := range f.tags {
		if t.ID == tagID && t.UserID == userID {
			return t, nil
		}
	}

	return models.Tag{}, catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) GetIngredient(_ context.Context, userID, ingredientID int64) (models.Ingredient, error) {
	for _, i := range f.ingredients {
		if i.ID == ingredientID && i.UserID == userID {
			return i, nil
		}
	}

	return models.Ingredient{}, catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) ListTags(_ context.Context, _ int64, req catalogrepo.ListRequest) ([]models.Tag, error) {
	f.lastListReq = req

	return f.tags, nil
}

func (f *fakeCatalogRepo) ListIngredients(_ context.Context, _ int64,
	req catalogrepo.ListRequest,
) ([]models.Ingredient, error) {
	f.lastListReq = req

	return f.ingredients, nil
}

func (f *fakeCatalogRepo) UpdateTag(_ context.Context, tag models.Tag) error {
	f.updateTagCalls++

	for i, t := range f.tags {
		if t.ID == tag.ID && t.UserID == tag.UserID {
			f.tags[i].Name = tag.Name

			return nil
		}
	}

	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) UpdateIngredient(_ context.Context, req catalogrepo.UpdateIngredientRequest) error {
	f.updateIngredCalls++

	for i, ing := range f.ingredients {
		if ing.ID == req.ID && ing.UserID == req.UserID {
			if req.Name != nil {
				f.ingredients[i].Name = *req.Name
			}

			if req.Quantity != nil {
				f.ingredients[i].Quantity = *req.Quantity
			}

			if req.Scale != nil {
				f.ingredients[i].Scale = *req.Scale
			}

			return nil
		}
	}

	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) DeleteTag(_ context.Context, userID, tagID int64) error {
	for i, t := range f.tags {
		if t.ID == tagID && t.UserID == userID {
			f.tags = append(f.tags[:i], f.tags[i+1:]...)

			return nil
		}
	}

	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) DeleteIngredient(_ context.Context, userID, ingredientID int64) error {
	for i, ing := range f.ingredients {
		if ing.ID == ingredientID && ing.UserID == userID {
			f.ingredients = append(f.ingredients[:i], f.ingredients[i+1:]...)

			return nil
		}
	}

	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogRepo) Shutdown(_ context.Context) error { return nil }

var testUser = models.User{ID: 1, Email: "tester@example.com", IsActive: true} //nolint:exhaustruct,gochecknoglobals

func TestListTagsDeduplicates(t *testing.T) {
	// Джойн с recipe_tags может вернуть тег по разу на каждый рецепт.
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		tags: []models.Tag{
			{ID: 2, UserID: 1, Name: "Vegan"},
			{ID: 1, UserID: 1, Name: "Dessert"},
			{ID: 2, UserID: 1, Name: "Vegan"},
			{ID: 1, UserID: 1, Name: "Dessert"},
		},
	}
	cs := catalogservice.New(repo)

	tags, err := cs.ListTags(context.Background(), testUser, catalogservice.ListRequest{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "Vegan", tags[0].Name)
	require.Equal(t, "Dessert", tags[1].Name)
	require.True(t, repo.lastListReq.AssignedOnly)
}

func TestListIngredientsDeduplicates(t *testing.T) {
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		ingredients: []models.Ingredient{
			{ID: 3, UserID: 1, Name: "Salt", Quantity: decimal.NewFromInt(1), Scale: "tsp"},
			{ID: 3, UserID: 1, Name: "Salt", Quantity: decimal.NewFromInt(1), Scale: "tsp"},
		},
	}
	cs := catalogservice.New(repo)

	ingredients, err := cs.ListIngredients(context.Background(), testUser,
		catalogservice.ListRequest{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
}

func TestUpdateTagTrimsName(t *testing.T) {
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		tags: []models.Tag{{ID: 1, UserID: 1, Name: "Desert"}},
	}
	cs := catalogservice.New(repo)

	name := "  Dessert "

	tag, err := cs.UpdateTag(context.Background(), testUser, 1, catalogservice.UpdateTagRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Dessert", tag.Name)
}

func TestUpdateTagOtherUserNotFound(t *testing.T) {
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		tags: []models.Tag{{ID: 1, UserID: 2, Name: "Dessert"}},
	}
	cs := catalogservice.New(repo)

	name := "Stolen"

	_, err := cs.UpdateTag(context.Background(), testUser, 1, catalogservice.UpdateTagRequest{Name: &name})
	require.ErrorIs(t, err, catalogrepo.ErrNotFound)
	require.Equal(t, "Dessert", repo.tags[0].Name)
}

func TestUpdateIngredientEmptyPatch(t *testing.T) {
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		ingredients: []models.Ingredient{{ID: 1, UserID: 1, Name: "Salt", Quantity: decimal.NewFromInt(2), Scale: "g"}},
	}
	cs := catalogservice.New(repo)

	ing, err := cs.UpdateIngredient(context.Background(), testUser, 1,
		catalogservice.UpdateIngredientRequest{}) //nolint:exhaustruct
	require.NoError(t, err)
	require.Equal(t, "Salt", ing.Name)
	require.Zero(t, repo.updateIngredCalls)
}

func TestDeleteTagOtherUserNotFound(t *testing.T) {
	repo := &fakeCatalogRepo{ //nolint:exhaustruct
		tags: []models.Tag{{ID: 1, UserID: 2, Name: "Dessert"}},
	}
	cs := catalogservice.New(repo)

	err := cs.DeleteTag(context.Background(), testUser, 1)
	require.ErrorIs(t, err, catalogrepo.ErrNotFound)
	require.Len(t, repo.tags, 1)
}
