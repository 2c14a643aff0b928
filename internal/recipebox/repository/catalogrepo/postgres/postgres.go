package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/pgtools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/catalogrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryer is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so get-or-create can run inside a caller-owned transaction.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CatalogPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (CatalogPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return CatalogPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return CatalogPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return CatalogPostgresRepo{
		db: db,
	}, nil
}

// GetOrCreateTag looks a tag up by its (user, name) identity and inserts it
// when absent. Repeated calls never create duplicates.
func GetOrCreateTag(ctx context.Context, q Queryer, userID int64, name string) (models.Tag, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	t := models.Tag{UserID: userID, Name: name}

	query, args, err := psql.Select("id").
		From("tags").
		Where(squirrel.Eq{"user_id": userID, "name": name}).ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("to sql error: %w", err)
	}

	err = q.QueryRow(ctx, query, args...).Scan(&t.ID)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Tag{}, fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Insert("tags").
		Columns("user_id", "name").
		Values(userID, name).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&t.ID); err != nil {
		return models.Tag{}, fmt.Errorf("scan error: %w", err)
	}

	return t, nil
}

func GetOrCreateIngredient(ctx context.Context, q Queryer, ing models.Ingredient) (models.Ingredient, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "quantity", "scale").
		From("ingredients").
		Where(squirrel.Eq{"user_id": ing.UserID, "name": ing.Name}).ToSql()
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("to sql error: %w", err)
	}

	found := ing

	err = q.QueryRow(ctx, query, args...).Scan(&found.ID, &found.Quantity, &found.Scale)
	if err == nil {
		return found, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Ingredient{}, fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Insert("ingredients").
		Columns("user_id", "name", "quantity", "scale").
		Values(ing.UserID, ing.Name, ing.Quantity, ing.Scale).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&ing.ID); err != nil {
		return models.Ingredient{}, fmt.Errorf("scan error: %w", err)
	}

	return ing, nil
}

func (cr CatalogPostgresRepo) GetOrCreateTag(ctx context.Context, userID int64, name string) (models.Tag, error) {
	return GetOrCreateTag(ctx, cr.db, userID, name)
}

func (cr CatalogPostgresRepo) GetOrCreateIngredient(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	return GetOrCreateIngredient(ctx, cr.db, ing)
}

func listTagsSQL(userID int64, req catalogrepo.ListRequest) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("t.id", "t.user_id", "t.name").
		From("tags t").
		Where(squirrel.Eq{"t.user_id": userID})

	if req.AssignedOnly {
		sb = sb.Join("recipe_tags rt ON rt.tag_id = t.id")
	}

	return sb.OrderBy("t.name DESC").ToSql() //nolint:wrapcheck
}

func (cr CatalogPostgresRepo) ListTags(ctx context.Context, userID int64,
	req catalogrepo.ListRequest,
) ([]models.Tag, error) {
	query, args, err := listTagsSQL(userID, req)
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := cr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0, 10) //nolint:gomnd

	for rows.Next() {
		var t models.Tag

		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		tags = append(tags, t)
	}

	return tags, nil
}

func (cr CatalogPostgresRepo) GetTag(ctx context.Context, userID, tagID int64) (models.Tag, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "name").
		From("tags").
		Where(squirrel.Eq{"id": tagID, "user_id": userID}).ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("to sql error: %w", err)
	}

	var t models.Tag

	if err := cr.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.UserID, &t.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tag{}, catalogrepo.ErrNotFound
		}

		return models.Tag{}, fmt.Errorf("scan error: %w", err)
	}

	return t, nil
}

func (cr CatalogPostgresRepo) GetIngredient(ctx context.Context, userID, ingredientID int64) (models.Ingredient, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "name", "quantity", "scale").
		From("ingredients").
		Where(squirrel.Eq{"id": ingredientID, "user_id": userID}).ToSql()
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("to sql error: %w", err)
	}

	var ing models.Ingredient

	if err := cr.db.QueryRow(ctx, query, args...).Scan(
		&ing.ID, &ing.UserID, &ing.Name, &ing.Quantity, &ing.Scale); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ingredient{}, catalogrepo.ErrNotFound
		}

		return models.Ingredient{}, fmt.Errorf("scan error: %w", err)
	}

	return ing, nil
}

func (cr CatalogPostgresRepo) UpdateTag(ctx context.Context, tag models.Tag) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("tags").
		Set("name", tag.Name).
		Where(squirrel.Eq{"id": tag.ID, "user_id": tag.UserID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := cr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return catalogrepo.ErrNotFound
	}

	return nil
}

func (cr CatalogPostgresRepo) DeleteTag(ctx context.Context, userID, tagID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("tags").
		Where(squirrel.Eq{"id": tagID, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := cr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return catalogrepo.ErrNotFound
	}

	return nil
}

// Теги сортируются по имени, ингредиенты — по id, оба по убыванию.
func listIngredientsSQL(userID int64, req catalogrepo.ListRequest) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("i.id", "i.user_id", "i.name", "i.quantity", "i.scale").
		From("ingredients i").
		Where(squirrel.Eq{"i.user_id": userID})

	if req.AssignedOnly {
		sb = sb.Join("recipe_ingredients ri ON ri.ingredient_id = i.id")
	}

	return sb.OrderBy("i.id DESC").ToSql() //nolint:wrapcheck
}

func (cr CatalogPostgresRepo) ListIngredients(ctx context.Context, userID int64,
	req catalogrepo.ListRequest,
) ([]models.Ingredient, error) {
	query, args, err := listIngredientsSQL(userID, req)
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := cr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	ingredients := make([]models.Ingredient, 0, 10) //nolint:gomnd

	for rows.Next() {
		var ing models.Ingredient

		if err := rows.Scan(&ing.ID, &ing.UserID, &ing.Name, &ing.Quantity, &ing.Scale); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		ingredients = append(ingredients, ing)
	}

	return ingredients, nil
}

func (cr CatalogPostgresRepo) UpdateIngredient(ctx context.Context, req catalogrepo.UpdateIngredientRequest) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Update("ingredients")

	if req.Name != nil {
		sb = sb.Set("name", *req.Name)
	}

	if req.Quantity != nil {
		sb = sb.Set("quantity", *req.Quantity)
	}

	if req.Scale != nil {
		sb = sb.Set("scale", *req.Scale)
	}

	query, args, err := sb.Where(squirrel.Eq{"id": req.ID, "user_id": req.UserID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := cr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return catalogrepo.ErrNotFound
	}

	return nil
}

func (cr CatalogPostgresRepo) DeleteIngredient(ctx context.Context, userID, ingredientID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("ingredients").
		Where(squirrel.Eq{"id": ingredientID, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := cr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return catalogrepo.ErrNotFound
	}

	return nil
}

func (cr CatalogPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		cr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}
