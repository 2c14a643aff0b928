package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/pgtools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	catalogpg "github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo/postgres"
	repo "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var recipeColumns = []string{
	"id", "user_id", "title", "time_minutes", "price",
	"link", "description", "image", "created_at", "updated_at",
}

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RecipesPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (RecipesPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return RecipesPostgresRepo{
		db: db,
	}, nil
}

func (rr RecipesPostgresRepo) CreateRecipe(ctx context.Context, recipe models.Recipe) (_ models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create recipe")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("recipes").
		Columns("user_id", "title", "time_minutes", "price",
			"link", "description", "image", "created_at", "updated_at").
		Values(recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price,
			recipe.Link, recipe.Description, recipe.Image, recipe.CreatedAt, recipe.UpdatedAt).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&recipe.ID); err != nil {
		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	recipe.Tags, err = attachTags(ctx, tx, recipe.ID, recipe.UserID, recipe.Tags)
	if err != nil {
		return models.Recipe{}, err
	}

	recipe.Ingredients, err = attachIngredients(ctx, tx, recipe.ID, recipe.UserID, recipe.Ingredients)
	if err != nil {
		return models.Recipe{}, err
	}

	return recipe, nil
}

func (rr RecipesPostgresRepo) GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error) {
	return getRecipe(ctx, rr.db, userID, recipeID)
}

func (rr RecipesPostgresRepo) ListRecipes(ctx context.Context, userID int64,
	req repo.GetRecipesRequest,
) ([]models.Recipe, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	cols := make([]string, 0, len(recipeColumns))
	for _, c := range recipeColumns {
		cols = append(cols, "r."+c)
	}

	sb := psql.Select(cols...).
		From("recipes r").
		Where(squirrel.Eq{"r.user_id": userID})

	if len(req.TagIDs) != 0 {
		sb = sb.Join("recipe_tags rt ON rt.recipe_id = r.id").
			Where("rt.tag_id = ANY(?)", req.TagIDs)
	}

	if len(req.IngredientIDs) != 0 {
		sb = sb.Join("recipe_ingredients ri ON ri.recipe_id = r.id").
			Where("ri.ingredient_id = ANY(?)", req.IngredientIDs)
	}

	query, args, err := sb.OrderBy("r.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, err
	}

	rows.Close()

	if err := loadRelations(ctx, rr.db, recipes); err != nil {
		return nil, err
	}

	return recipes, nil
}

// UpdateRecipe applies the supplied scalar fields and reconciles the tag and
// ingredient sets in a single transaction, so readers never observe a recipe
// with a half-replaced relation.
func (rr RecipesPostgresRepo) UpdateRecipe(ctx context.Context, //nolint:cyclop
	req repo.UpdateRecipeRequest,
) (_ models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update recipe")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Update("recipes").Set("updated_at", req.UpdatedAt)

	if req.Title != nil {
		sb = sb.Set("title", *req.Title)
	}

	if req.TimeMinutes != nil {
		sb = sb.Set("time_minutes", *req.TimeMinutes)
	}

	if req.Price != nil {
		sb = sb.Set("price", *req.Price)
	}

	if req.Link != nil {
		sb = sb.Set("link", *req.Link)
	}

	if req.Description != nil {
		sb = sb.Set("description", *req.Description)
	}

	query, args, err := sb.Where(squirrel.Eq{"id": req.RecipeID, "user_id": req.UserID}).ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		err = repo.ErrNotFound

		return models.Recipe{}, err
	}

	if req.Tags != nil {
		if err = clearRelation(ctx, tx, "recipe_tags", req.RecipeID); err != nil {
			return models.Recipe{}, err
		}

		if _, err = attachTags(ctx, tx, req.RecipeID, req.UserID, *req.Tags); err != nil {
			return models.Recipe{}, err
		}
	}

	if req.Ingredients != nil {
		if err = clearRelation(ctx, tx, "recipe_ingredients", req.RecipeID); err != nil {
			return models.Recipe{}, err
		}

		if _, err = attachIngredients(ctx, tx, req.RecipeID, req.UserID, *req.Ingredients); err != nil {
			return models.Recipe{}, err
		}
	}

	recipe, err := getRecipe(ctx, tx, req.UserID, req.RecipeID)
	if err != nil {
		return models.Recipe{}, err
	}

	return recipe, nil
}

// DeleteRecipe removes the recipe and its join rows and reports the stored
// image path so the caller can remove the file. Tags and ingredients survive.
func (rr RecipesPostgresRepo) DeleteRecipe(ctx context.Context, userID, recipeID int64) (_ string, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete recipe")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("image").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	var image string

	if err = tx.QueryRow(ctx, query, args...).Scan(&image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = repo.ErrNotFound

			return "", err
		}

		return "", fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Delete("recipes").
		Where(squirrel.Eq{"id": recipeID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("exec error: %w", err)
	}

	return image, nil
}

// SetRecipeImage stores the new image path and returns the replaced one.
func (rr RecipesPostgresRepo) SetRecipeImage(ctx context.Context, userID, recipeID int64,
	imagePath string,
) (_ string, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "set recipe image")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("image").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	var old string

	if err = tx.QueryRow(ctx, query, args...).Scan(&old); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = repo.ErrNotFound

			return "", err
		}

		return "", fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Update("recipes").
		Set("image", imagePath).
		Where(squirrel.Eq{"id": recipeID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("exec error: %w", err)
	}

	return old, nil
}

func (rr RecipesPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		rr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func getRecipe(ctx context.Context, q querier, userID, recipeID int64) (models.Recipe, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(recipeColumns...).
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	r, err := scanRecipe(q.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Recipe{}, err
	}

	recipes := []models.Recipe{r}
	if err := loadRelations(ctx, q, recipes); err != nil {
		return models.Recipe{}, err
	}

	return recipes[0], nil
}

// collectRecipes folds the duplicate rows a multi-id filter join produces into
// one row per recipe. Relations are loaded after this, so they land on the row
// that survives.
func collectRecipes(rows pgx.Rows) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0, 10) //nolint:gomnd
	seen := make(map[int64]struct{})

	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[r.ID]; ok {
			continue
		}

		seen[r.ID] = struct{}{}

		recipes = append(recipes, r)
	}

	return recipes, nil
}

func scanRecipe(row pgx.Row) (models.Recipe, error) {
	var r models.Recipe

	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.TimeMinutes, &r.Price,
		&r.Link, &r.Description, &r.Image, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Recipe{}, repo.ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	r.Tags = make([]models.Tag, 0)
	r.Ingredients = make([]models.Ingredient, 0)

	return r, nil
}

// attachTags get-or-creates every payload tag within the caller's transaction
// and links it to the recipe.
func attachTags(ctx context.Context, tx pgx.Tx, recipeID, userID int64,
	tags []models.Tag,
) ([]models.Tag, error) {
	attached := make([]models.Tag, 0, len(tags))

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	for _, t := range tags {
		tag, err := catalogpg.GetOrCreateTag(ctx, tx, userID, t.Name)
		if err != nil {
			return nil, fmt.Errorf("get or create tag error: %w", err)
		}

		query, args, err := psql.Insert("recipe_tags").
			Columns("recipe_id", "tag_id").
			Values(recipeID, tag.ID).
			Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return nil, fmt.Errorf("to sql error: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("exec error: %w", err)
		}

		attached = append(attached, tag)
	}

	return attached, nil
}

func attachIngredients(ctx context.Context, tx pgx.Tx, recipeID, userID int64,
	ingredients []models.Ingredient,
) ([]models.Ingredient, error) {
	attached := make([]models.Ingredient, 0, len(ingredients))

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	for _, i := range ingredients {
		i.UserID = userID

		ing, err := catalogpg.GetOrCreateIngredient(ctx, tx, i)
		if err != nil {
			return nil, fmt.Errorf("get or create ingredient error: %w", err)
		}

		query, args, err := psql.Insert("recipe_ingredients").
			Columns("recipe_id", "ingredient_id").
			Values(recipeID, ing.ID).
			Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return nil, fmt.Errorf("to sql error: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("exec error: %w", err)
		}

		attached = append(attached, ing)
	}

	return attached, nil
}

func clearRelation(ctx context.Context, tx pgx.Tx, table string, recipeID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"recipe_id": recipeID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func loadRelations(ctx context.Context, q querier, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(recipes))
	byID := make(map[int64]*models.Recipe, len(recipes))

	for i := range recipes {
		ids = append(ids, recipes[i].ID)
		byID[recipes[i].ID] = &recipes[i]
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("rt.recipe_id", "t.id", "t.user_id", "t.name").
		From("recipe_tags rt").
		Join("tags t ON t.id = rt.tag_id").
		Where("rt.recipe_id = ANY(?)", ids).
		OrderBy("t.id ASC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}

	for rows.Next() {
		var (
			recipeID int64
			t        models.Tag
		)

		if err := rows.Scan(&recipeID, &t.ID, &t.UserID, &t.Name); err != nil {
			rows.Close()

			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Tags = append(byID[recipeID].Tags, t)
	}

	rows.Close()

	query, args, err = psql.Select("ri.recipe_id", "i.id", "i.user_id", "i.name", "i.quantity", "i.scale").
		From("recipe_ingredients ri").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id = ANY(?)", ids).
		OrderBy("i.id ASC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err = q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int64
			ing      models.Ingredient
		)

		if err := rows.Scan(&recipeID, &ing.ID, &ing.UserID, &ing.Name, &ing.Quantity, &ing.Scale); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, ing)
	}

	return nil
}
