package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	rows [][]any
	idx  int
}

func (f *fakeRows) Next() bool {
	f.idx++

	return f.idx <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.idx-1]

	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64) //nolint:forcetypeassert
		case *int:
			*p = row[i].(int) //nolint:forcetypeassert
		case *string:
			*p = row[i].(string) //nolint:forcetypeassert
		case *decimal.Decimal:
			*p = row[i].(decimal.Decimal) //nolint:forcetypeassert
		case *time.Time:
			*p = row[i].(time.Time) //nolint:forcetypeassert
		}
	}

	return nil
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return nil }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

// fakeQuerier serves the tag query first, the ingredient query second,
// matching the order loadRelations issues them in.
type fakeQuerier struct {
	tagRows        *fakeRows
	ingredientRows *fakeRows
	calls          int
}

func (q *fakeQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	q.calls++
	if q.calls == 1 {
		return q.tagRows, nil
	}

	return q.ingredientRows, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

func (q *fakeQuerier) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func recipeRow(id int64) []any {
	return []any{
		id, int64(1), "Borscht", 45, decimal.NewFromInt(5),
		"", "", "", time.Time{}, time.Time{},
	}
}

// Рецепт, попавший под два id фильтра, приходит из джойна двумя строками.
func TestCollectRecipesFoldsFilterJoinDuplicates(t *testing.T) {
	rows := &fakeRows{rows: [][]any{ //nolint:exhaustruct
		recipeRow(3),
		recipeRow(3),
		recipeRow(1),
	}}

	recipes, err := collectRecipes(rows)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	require.Equal(t, int64(3), recipes[0].ID)
	require.Equal(t, int64(1), recipes[1].ID)

	q := &fakeQuerier{ //nolint:exhaustruct
		tagRows: &fakeRows{rows: [][]any{ //nolint:exhaustruct
			{int64(3), int64(2), int64(1), "Vegan"},
			{int64(3), int64(5), int64(1), "Soup"},
		}},
		ingredientRows: &fakeRows{rows: [][]any{ //nolint:exhaustruct
			{int64(3), int64(7), int64(1), "Beet", decimal.NewFromInt(2), "pcs"},
		}},
	}

	require.NoError(t, loadRelations(context.Background(), q, recipes))

	require.Len(t, recipes[0].Tags, 2)
	require.Equal(t, "Vegan", recipes[0].Tags[0].Name)
	require.Equal(t, "Soup", recipes[0].Tags[1].Name)
	require.Len(t, recipes[0].Ingredients, 1)
	require.Equal(t, "Beet", recipes[0].Ingredients[0].Name)
	require.Empty(t, recipes[1].Tags)
	require.Empty(t, recipes[1].Ingredients)
}

func TestLoadRelationsEmptyInput(t *testing.T) {
	q := &fakeQuerier{} //nolint:exhaustruct

	require.NoError(t, loadRelations(context.Background(), q, nil))
	require.Zero(t, q.calls)
}
