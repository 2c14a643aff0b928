package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/recipebox/api/server"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/catalogservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

var authedUser = models.User{ //nolint:exhaustruct,gochecknoglobals
	ID:       1,
	Email:    "tester@example.com",
	Name:     "Test User",
	IsActive: true,
}

type fakeAuthService struct {
	registerErr error
	loginErr    error
}

func (f *fakeAuthService) Register(_ context.Context, req authservice.RegisterRequest) (models.User, error) {
	if f.registerErr != nil {
		return models.User{}, f.registerErr
	}

	return models.User{ //nolint:exhaustruct
		ID:       2,
		Email:    req.Email,
		Name:     req.Name,
		IsActive: true,
	}, nil
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}

	return testToken, nil
}

func (f *fakeAuthService) Resolve(_ context.Context, token string) (models.User, error) {
	if token != testToken {
		return models.User{}, authservice.ErrInvalidToken
	}

	return authedUser, nil
}

func (f *fakeAuthService) UpdateProfile(_ context.Context, u models.User,
	req authservice.UpdateProfileRequest,
) (models.User, error) {
	if req.Email != nil {
		u.Email = *req.Email
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	return u, nil
}

type fakeRecipeService struct {
	recipes map[int64]models.Recipe

	lastListReq   recipeservice.ListRecipesRequest
	lastUpdateReq recipeservice.UpdateRecipeRequest
}

func newFakeRecipeService() *fakeRecipeService {
	return &fakeRecipeService{ //nolint:exhaustruct
		recipes: make(map[int64]models.Recipe),
	}
}

func (f *fakeRecipeService) CreateRecipe(_ context.Context, u models.User,
	req recipeservice.CreateRecipeRequest,
) (models.Recipe, error) {
	r := models.Recipe{ //nolint:exhaustruct
		ID:     int64(len(f.recipes) + 1),
		UserID: u.ID,
		Title:  req.Title,
	}
	f.recipes[r.ID] = r

	return r, nil
}

func (f *fakeRecipeService) GetRecipe(_ context.Context, u models.User, recipeID int64) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != u.ID {
		return models.Recipe{}, recipeservice.ErrNotFound
	}

	return r, nil
}

func (f *fakeRecipeService) ListRecipes(_ context.Context, _ models.User,
	req recipeservice.ListRecipesRequest,
) ([]models.Recipe, error) {
	f.lastListReq = req

	out := make([]models.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		out = append(out, r)
	}

	return out, nil
}

func (f *fakeRecipeService) UpdateRecipe(_ context.Context, u models.User, recipeID int64,
	req recipeservice.UpdateRecipeRequest,
) (models.Recipe, error) {
	f.lastUpdateReq = req

	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != u.ID {
		return models.Recipe{}, recipeservice.ErrNotFound
	}

	if req.Title != nil {
		r.Title = *req.Title
		f.recipes[recipeID] = r
	}

	return r, nil
}

func (f *fakeRecipeService) DeleteRecipe(_ context.Context, u models.User, recipeID int64) error {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != u.ID {
		return recipeservice.ErrNotFound
	}

	delete(f.recipes, recipeID)

	return nil
}

func (f *fakeRecipeService) AttachImage(_ context.Context, u models.User, recipeID int64,
	data []byte,
) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != u.ID {
		return models.Recipe{}, recipeservice.ErrNotFound
	}

	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		return models.Recipe{}, recipeservice.ErrInvalidImage
	}

	r.Image = "uploads/recipe.png"
	f.recipes[recipeID] = r

	return r, nil
}

func (f *fakeRecipeService) Shutdown(_ context.Context) error { return nil }

type fakeCatalogService struct {
	tags []models.Tag
}

func (f *fakeCatalogService) ListTags(_ context.Context, _ models.User,
	_ catalogservice.ListRequest,
) ([]models.Tag, error) {
	return f.tags, nil
}

func (f *fakeCatalogService) ListIngredients(_ context.Context, _ models.User,
	_ catalogservice.ListRequest,
) ([]models.Ingredient, error) {
	return nil, nil
}

func (f *fakeCatalogService) UpdateTag(_ context.Context, _ models.User, tagID int64,
	req catalogservice.UpdateTagRequest,
) (models.Tag, error) {
	for i, t := range f.tags {
		if t.ID == tagID {
			if req.Name != nil {
				f.tags[i].Name = *req.Name
			}

			return f.tags[i], nil
		}
	}

	return models.Tag{}, catalogrepo.ErrNotFound
}

func (f *fakeCatalogService) UpdateIngredient(_ context.Context, _ models.User, _ int64,
	_ catalogservice.UpdateIngredientRequest,
) (models.Ingredient, error) {
	return models.Ingredient{}, catalogrepo.ErrNotFound
}

func (f *fakeCatalogService) DeleteTag(_ context.Context, _ models.User, tagID int64) error {
	for i, t := range f.tags {
		if t.ID == tagID {
			f.tags = append(f.tags[:i], f.tags[i+1:]...)

			return nil
		}
	}

	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogService) DeleteIngredient(_ context.Context, _ models.User, _ int64) error {
	return catalogrepo.ErrNotFound
}

func (f *fakeCatalogService) Shutdown(_ context.Context) error { return nil }

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Info(string)                   {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Error(string)                  {}
func (noopLogger) Errorf(string, ...interface{}) {}

type testEnv struct {
	handler http.Handler
	auth    *fakeAuthService
	recipes *fakeRecipeService
	catalog *fakeCatalogService
}

func newTestEnv() *testEnv {
	as := &fakeAuthService{}    //nolint:exhaustruct
	rs := newFakeRecipeService()
	cs := &fakeCatalogService{} //nolint:exhaustruct

	s := server.New(config.Server{ //nolint:exhaustruct
		Addr: "127.0.0.1:0",
	}, as, rs, cs, noopLogger{})

	return &testEnv{
		handler: s.Routes(noopLogger{}),
		auth:    as,
		recipes: rs,
		catalog: cs,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authed {
		req.Header.Set("Authorization", "Token "+testToken)
	}

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	return rr
}

func TestUnauthenticatedRequests(t *testing.T) {
	env := newTestEnv()

	targets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/recipe/recipes"},
		{http.MethodGet, "/recipe/tags"},
		{http.MethodGet, "/recipe/ingredients"},
		{http.MethodGet, "/user/me"},
	}

	for _, tc := range targets {
		rr := env.do(t, tc.method, tc.target, "", false)
		require.Equal(t, http.StatusUnauthorized, rr.Code, tc.target)
	}
}

func TestProfilePostNotAllowed(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/user/me", `{"name":"x"}`, true)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/user/create",
		`{"email":"new@example.com","password":"Passwd123","name":"New User"}`, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Contains(t, rr.Body.String(), "new@example.com")
	require.NotContains(t, rr.Body.String(), "Passwd123")
	require.NotContains(t, rr.Body.String(), "password")
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv()

	testCases := []struct {
		name string
		body string
	}{
		{"short password", `{"email":"new@example.com","password":"pw","name":""}`},
		{"bad email", `{"email":"not-an-email","password":"Passwd123","name":""}`},
		{"missing password", `{"email":"new@example.com","name":""}`},
		{"broken json", `{"email":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/user/create", tc.body, false)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	env.auth.registerErr = userrepo.ErrAlreadyExists

	rr := env.do(t, http.MethodPost, "/user/create",
		`{"email":"new@example.com","password":"Passwd123","name":""}`, false)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateToken(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/user/token",
		`{"email":"tester@example.com","password":"Passwd123"}`, false)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp server.TokenResponse

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, testToken, resp.Token)
}

func TestCreateTokenBadCredentials(t *testing.T) {
	env := newTestEnv()
	env.auth.loginErr = authservice.ErrInvalidCredentials

	rr := env.do(t, http.MethodPost, "/user/token",
		`{"email":"tester@example.com","password":"wrong"}`, false)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodGet, "/user/me", "", true)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp server.ProfileResponse

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, authedUser.Email, resp.Email)
	require.Equal(t, authedUser.Name, resp.Name)
}

func TestUpdateProfileBadEmail(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPatch, "/user/me", `{"email":"not-an-email"}`, true)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListRecipesFilters(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodGet, "/recipe/recipes?tags=1,2&ingredients=3", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []int64{1, 2}, env.recipes.lastListReq.TagIDs)
	require.Equal(t, []int64{3}, env.recipes.lastListReq.IngredientIDs)
}

func TestListRecipesBadFilter(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodGet, "/recipe/recipes?tags=abc", "", true)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateRecipeRequiresTitle(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"time_minutes":5}`, true)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAndGetRecipe(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes","time_minutes":15}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/recipe/recipes/1", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Pancakes")
}

func TestGetRecipeNotFound(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodGet, "/recipe/recipes/99", "", true)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPatchRecipeRelationPresence(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Поле не передано — связи не трогаем.
	rr = env.do(t, http.MethodPatch, "/recipe/recipes/1", `{"title":"Blini"}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, env.recipes.lastUpdateReq.Tags)

	// Пустой список — связи очищаем.
	rr = env.do(t, http.MethodPatch, "/recipe/recipes/1", `{"tags":[]}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.recipes.lastUpdateReq.Tags)
	require.Empty(t, *env.recipes.lastUpdateReq.Tags)
}

func TestPutRecipeRequiresScalars(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPut, "/recipe/recipes/1", `{"title":"Blini"}`, true)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPut, "/recipe/recipes/1",
		`{"title":"Blini","time_minutes":20,"price":"3.50"}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteRecipe(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodDelete, "/recipe/recipes/1", "", true)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodDelete, "/recipe/recipes/1", "", true)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadRecipeImage(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = uploadImage(t, env, "/recipe/recipes/1/upload-image", []byte("\x89PNG\r\n\x1a\n..."))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "uploads/recipe.png")
}

func TestUploadRecipeImageInvalid(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPost, "/recipe/recipes", `{"title":"Pancakes"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = uploadImage(t, env, "/recipe/recipes/1/upload-image", []byte("not an image"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListTags(t *testing.T) {
	env := newTestEnv()
	env.catalog.tags = []models.Tag{{ID: 1, UserID: 1, Name: "Vegan"}}

	rr := env.do(t, http.MethodGet, "/recipe/tags", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Vegan")
}

func TestPatchTagNotFound(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, http.MethodPatch, "/recipe/tags/42", `{"name":"Dinner"}`, true)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteTag(t *testing.T) {
	env := newTestEnv()
	env.catalog.tags = []models.Tag{{ID: 1, UserID: 1, Name: "Vegan"}}

	rr := env.do(t, http.MethodDelete, "/recipe/tags/1", "", true)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, env.catalog.tags)
}

func uploadImage(t *testing.T, env *testEnv, target string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("image", "recipe.png")
	require.NoError(t, err)

	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Authorization", "Token "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	return rr
}
