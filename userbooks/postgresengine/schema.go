package postgresengine

import (
	"context"
	_ "embed" // schema template
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	actionEnsureSchema = "ensure_schema"
	logMsgSchemaReady  = "schema ready"
	logAttrPersonTable = "person_table"
	logAttrBookTable   = "book_table"
)

//go:embed schema.sql
var schemaTemplate string

// SchemaSQL returns the DDL for the configured table names.
//
// The book table references the person table with a foreign key, and a trigger keeps
// person.book_count in sync with the number of owned books.
func (s *Store) SchemaSQL() string {
	replacer := strings.NewReplacer(
		"{{person}}", quoteIdentifier(s.personTableName),
		"{{book}}", quoteIdentifier(s.bookTableName),
		"{{book_user_id_index}}", quoteIdentifier(s.bookTableName+"_user_id_idx"),
		"{{book_count_function}}", quoteIdentifier(s.bookTableName+"_maintain_book_count"),
		"{{book_count_trigger}}", quoteIdentifier(s.bookTableName+"_book_count_trigger"),
	)

	return replacer.Replace(schemaTemplate)
}

// EnsureSchema creates the tables, the index and the book count trigger if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.exec(ctx, actionEnsureSchema, s.SchemaSQL()); err != nil {
		return err
	}

	s.logOperationContext(
		ctx,
		logMsgSchemaReady,
		logAttrPersonTable, s.personTableName,
		logAttrBookTable, s.bookTableName,
	)

	return nil
}

// quoteIdentifier quotes a table or object name for use in hand-written SQL.
func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
