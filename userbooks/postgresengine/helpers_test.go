package postgresengine_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine"
)

var (
	personRowColumns = []string{"id", "full_name", "title", "age", "book_count"}
	bookRowColumns   = []string{"id", "title", "author", "page_count", "user_id"}
)

// givenMockedStore creates a Store on top of a sqlmock driven sql.DB.
func givenMockedStore(t *testing.T, options ...postgresengine.Option) (*postgresengine.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewStoreFromSQLDB(db, options...)
	require.NoError(t, err, "error in arranging test data")

	return store, mock
}

func personRows() *sqlmock.Rows {
	return sqlmock.NewRows(personRowColumns)
}

func bookRows() *sqlmock.Rows {
	return sqlmock.NewRows(bookRowColumns)
}

func idRows(ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}

	return rows
}

// foreignKeyViolation is the error lib/pq reports for a violated foreign key.
func foreignKeyViolation() error {
	return &pq.Error{Code: "23503", Message: "insert or update on table violates foreign key constraint"}
}

// pgxForeignKeyViolation is the error pgx reports for a violated foreign key.
func pgxForeignKeyViolation() error {
	return &pgconn.PgError{Code: "23503", Message: "insert or update on table violates foreign key constraint"}
}
