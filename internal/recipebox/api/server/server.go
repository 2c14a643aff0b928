package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/catalogservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/Leopold1975/recipebox/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Server struct {
	serv           *http.Server
	authService    AuthService
	recipeService  RecipeService
	catalogService CatalogService
	validate       *validator.Validate
}

type AuthService interface {
	Register(context.Context, authservice.RegisterRequest) (models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Resolve(ctx context.Context, token string) (models.User, error)
	UpdateProfile(context.Context, models.User, authservice.UpdateProfileRequest) (models.User, error)
}

type RecipeService interface {
	CreateRecipe(context.Context, models.User, recipeservice.CreateRecipeRequest) (models.Recipe, error)
	GetRecipe(ctx context.Context, user models.User, recipeID int64) (models.Recipe, error)
	ListRecipes(context.Context, models.User, recipeservice.ListRecipesRequest) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, user models.User, recipeID int64,
		req recipeservice.UpdateRecipeRequest) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, user models.User, recipeID int64) error
	AttachImage(ctx context.Context, user models.User, recipeID int64, data []byte) (models.Recipe, error)
	Shutdown(context.Context) error
}

type CatalogService interface {
	ListTags(context.Context, models.User, catalogservice.ListRequest) ([]models.Tag, error)
	ListIngredients(context.Context, models.User, catalogservice.ListRequest) ([]models.Ingredient, error)
	UpdateTag(ctx context.Context, user models.User, tagID int64,
		req catalogservice.UpdateTagRequest) (models.Tag, error)
	UpdateIngredient(ctx context.Context, user models.User, ingredientID int64,
		req catalogservice.UpdateIngredientRequest) (models.Ingredient, error)
	DeleteTag(ctx context.Context, user models.User, tagID int64) error
	DeleteIngredient(ctx context.Context, user models.User, ingredientID int64) error
	Shutdown(context.Context) error
}

func New(cfg config.Server, as AuthService, rs RecipeService, cs CatalogService, lg logger.Logger) *Server {
	s := &Server{ //nolint:exhaustruct
		authService:    as,
		recipeService:  rs,
		catalogService: cs,
		validate:       validator.New(),
	}

	serv := &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.Routes(lg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	s.serv = serv

	return s
}

func (s *Server) Routes(lg logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))

	r.Route("/user", func(r chi.Router) {
		r.Post("/create", s.createUser)
		r.Post("/token", s.createToken)

		r.Route("/me", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.getProfile)
			r.Patch("/", s.updateProfile)
		})
	})

	r.Route("/recipe", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.listRecipes)
			r.Post("/", s.createRecipe)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getRecipe)
				r.Patch("/", s.patchRecipe)
				r.Put("/", s.putRecipe)
				r.Delete("/", s.deleteRecipe)
				r.Post("/upload-image", s.uploadRecipeImage)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.listTags)
			r.Patch("/{id}", s.patchTag)
			r.Delete("/{id}", s.deleteTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", s.listIngredients)
			r.Patch("/{id}", s.patchIngredient)
			r.Delete("/{id}", s.deleteIngredient)
		})
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
