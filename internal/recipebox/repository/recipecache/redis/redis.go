package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/redistools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/redis/go-redis/v9"
)

type RecipeCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.RedisCache) (RecipeCache, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return RecipeCache{}, fmt.Errorf("connect error: %w", err)
	}

	return RecipeCache{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

func (rc RecipeCache) SetRecipe(ctx context.Context, recipe models.Recipe) error {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	// Owner id is lost by json.Marshal, keep it in a sibling key-independent field.
	env := cacheEnvelope{UserID: recipe.UserID, Recipe: recipeJSON}

	envJSON, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = rc.rdb.Set(ctx, fmt.Sprintf("recipe:%d", recipe.ID), envJSON, rc.expTime).Result() //nolint:perfsprint
	if err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (rc RecipeCache) GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, error) {
	envJSON, err := rc.rdb.Get(ctx, fmt.Sprintf("recipe:%d", recipeID)).Result() //nolint:perfsprint
	if errors.Is(err, redis.Nil) {
		return models.Recipe{}, reciperepo.ErrNotFound
	} else if err != nil {
		return models.Recipe{}, fmt.Errorf("get error: %w", err)
	}

	var env cacheEnvelope

	if err := json.Unmarshal([]byte(envJSON), &env); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshal error: %w", err)
	}

	var recipe models.Recipe

	if err := json.Unmarshal(env.Recipe, &recipe); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshal error: %w", err)
	}

	recipe.UserID = env.UserID

	return recipe, nil
}

func (rc RecipeCache) DeleteRecipe(ctx context.Context, recipeID int64) error {
	if _, err := rc.rdb.Del(ctx, fmt.Sprintf("recipe:%d", recipeID)).Result(); err != nil { //nolint:perfsprint
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

type cacheEnvelope struct {
	UserID int64           `json:"user_id"` //nolint:tagliatelle
	Recipe json.RawMessage `json:"recipe"`
}
