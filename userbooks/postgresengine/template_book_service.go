package postgresengine

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	actionTemplateInsertBook          = "template_insert_book"
	actionTemplateUpdateBook          = "template_update_book"
	actionTemplateSelectBook          = "template_select_book"
	actionTemplateDeleteBook          = "template_delete_book"
	actionTemplateSelectBookIDsByUser = "template_select_book_ids_by_user"
	actionTemplateDeleteBooksByUser   = "template_delete_books_by_user"
)

// TemplateBookService implements userbooks.BookService with hand-written parameterized statements.
type TemplateBookService struct {
	store              *Store
	insertSQL          string
	updateSQL          string
	selectSQL          string
	deleteSQL          string
	selectIDsByUserSQL string
	deleteByUserSQL    string
}

// NewTemplateBookService creates a TemplateBookService on top of the given Store.
func NewTemplateBookService(store *Store) *TemplateBookService {
	table := quoteIdentifier(store.bookTableName)

	return &TemplateBookService{
		store: store,
		insertSQL: fmt.Sprintf(
			`INSERT INTO %s (title, author, page_count, user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
			table,
		),
		updateSQL: fmt.Sprintf(
			`UPDATE %s SET title = $2, author = $3, page_count = $4 WHERE id = $1 RETURNING id, title, author, page_count, user_id`,
			table,
		),
		selectSQL: fmt.Sprintf(
			`SELECT id, title, author, page_count, user_id FROM %s WHERE id = $1`,
			table,
		),
		deleteSQL: fmt.Sprintf(
			`DELETE FROM %s WHERE id = $1`,
			table,
		),
		selectIDsByUserSQL: fmt.Sprintf(
			`SELECT id FROM %s WHERE user_id = $1 ORDER BY id`,
			table,
		),
		deleteByUserSQL: fmt.Sprintf(
			`DELETE FROM %s WHERE user_id = $1`,
			table,
		),
	}
}

// CreateBook inserts the book and returns it with the generated identity.
// An owner that does not resolve to a person fails with userbooks.ErrConstraintViolation.
func (t *TemplateBookService) CreateBook(ctx context.Context, book *userbooks.BookDTO) (userbooks.BookDTO, error) {
	if err := userbooks.ValidateBookForCreate(book); err != nil {
		return userbooks.BookDTO{}, err
	}

	id, err := t.store.queryGeneratedKey(
		ctx,
		actionTemplateInsertBook,
		t.insertSQL,
		book.Title, book.Author, book.PageCount, book.UserID,
	)
	if err != nil {
		return userbooks.BookDTO{}, err
	}

	created := *book
	created.ID = id

	t.store.logOperationContext(ctx, logMsgBookCreated, logAttrStrategy, strategyTemplate, logAttrRecord, created)

	return created, nil
}

// UpdateBook overwrites title, author and page count of an existing book with a single UPDATE.
// If the statement matches no row, the input is echoed with userbooks.NotFoundEchoed.
func (t *TemplateBookService) UpdateBook(
	ctx context.Context,
	book *userbooks.BookDTO,
) (userbooks.BookDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateBookForUpdate(book); err != nil {
		return userbooks.BookDTO{}, userbooks.Updated, err
	}

	saved, found, err := t.queryBook(
		ctx,
		actionTemplateUpdateBook,
		t.updateSQL,
		book.ID, book.Title, book.Author, book.PageCount,
	)
	if err != nil {
		return userbooks.BookDTO{}, userbooks.Updated, err
	}

	if !found {
		t.store.logOperationContext(ctx, logMsgBookUpdateNotFound, logAttrStrategy, strategyTemplate, logAttrRecordID, book.ID)
		return *book, userbooks.NotFoundEchoed, nil
	}

	updated := userbooks.BookToBookDTO(saved)
	t.store.logOperationContext(ctx, logMsgBookUpdated, logAttrStrategy, strategyTemplate, logAttrRecord, updated)

	return updated, userbooks.Updated, nil
}

// GetBookByID returns the book, or nil without an error if no book with the identity exists.
func (t *TemplateBookService) GetBookByID(ctx context.Context, id userbooks.RecordID) (*userbooks.BookDTO, error) {
	book, found, err := t.queryBook(ctx, actionTemplateSelectBook, t.selectSQL, id)
	if err != nil {
		return nil, err
	}

	if !found {
		t.store.logOperationContext(ctx, logMsgBookNotFound, logAttrStrategy, strategyTemplate, logAttrRecordID, id)
		return nil, nil
	}

	dto := userbooks.BookToBookDTO(book)
	t.store.logOperationContext(ctx, logMsgBookFetched, logAttrStrategy, strategyTemplate, logAttrRecord, dto)

	return &dto, nil
}

// DeleteBookByID deletes the book without verifying that it existed.
func (t *TemplateBookService) DeleteBookByID(ctx context.Context, id userbooks.RecordID) error {
	rowsAffected, err := t.store.exec(ctx, actionTemplateDeleteBook, t.deleteSQL, id)
	if err != nil {
		return err
	}

	t.store.logOperationContext(
		ctx,
		logMsgBookDeleted,
		logAttrStrategy, strategyTemplate,
		logAttrRecordID, id,
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

// GetBooksByUserID returns the identities of all books owned by the user, ordered by identity.
func (t *TemplateBookService) GetBooksByUserID(
	ctx context.Context,
	userID userbooks.RecordID,
) ([]userbooks.RecordID, error) {

	ids := make([]userbooks.RecordID, 0)

	err := t.store.queryRows(
		ctx,
		actionTemplateSelectBookIDsByUser,
		t.selectIDsByUserSQL,
		[]any{userID},
		func(rows adapters.DBRows) error {
			id, mapErr := mapIDRow(rows)
			if mapErr != nil {
				return mapErr
			}

			ids = append(ids, id)

			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	t.store.logOperationContext(
		ctx,
		logMsgBookIDsFetched,
		logAttrStrategy, strategyTemplate,
		logAttrUserID, userID,
		logAttrBookIDs, ids,
	)

	return ids, nil
}

// DeleteBooksByUserID deletes all books owned by the user.
func (t *TemplateBookService) DeleteBooksByUserID(ctx context.Context, userID userbooks.RecordID) error {
	rowsAffected, err := t.store.exec(ctx, actionTemplateDeleteBooksByUser, t.deleteByUserSQL, userID)
	if err != nil {
		return err
	}

	t.store.logOperationContext(
		ctx,
		logMsgBooksOfUserDeleted,
		logAttrStrategy, strategyTemplate,
		logAttrUserID, userID,
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

func (t *TemplateBookService) queryBook(
	ctx context.Context,
	action string,
	sqlQuery string,
	args ...any,
) (userbooks.Book, bool, error) {

	var book userbooks.Book
	found := false

	err := t.store.queryRows(ctx, action, sqlQuery, args, func(rows adapters.DBRows) error {
		mapped, mapErr := mapBookRow(rows)
		if mapErr != nil {
			return mapErr
		}

		book = mapped
		found = true

		return nil
	})

	return book, found, err
}
