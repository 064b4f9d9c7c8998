package postgresengine

import (
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	colID        = "id"
	colFullName  = "full_name"
	colTitle     = "title"
	colAge       = "age"
	colBookCount = "book_count"
	colAuthor    = "author"
	colPageCount = "page_count"
	colUserID    = "user_id"
)

// personColumns is the column order every person row mapper expects.
var personColumns = []any{colID, colFullName, colTitle, colAge, colBookCount}

// bookColumns is the column order every book row mapper expects.
var bookColumns = []any{colID, colTitle, colAuthor, colPageCount, colUserID}

// mapPersonRow maps one row selected with personColumns.
func mapPersonRow(rows adapters.DBRows) (userbooks.Person, error) {
	var person userbooks.Person

	err := rows.Scan(&person.ID, &person.FullName, &person.Title, &person.Age, &person.BookCount)

	return person, err
}

// mapBookRow maps one row selected with bookColumns.
func mapBookRow(rows adapters.DBRows) (userbooks.Book, error) {
	var book userbooks.Book

	err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.PageCount, &book.UserID)

	return book, err
}

// mapIDRow maps a single-column identity row, e.g. a generated key.
func mapIDRow(rows adapters.DBRows) (userbooks.RecordID, error) {
	var id userbooks.RecordID

	err := rows.Scan(&id)

	return id, err
}
