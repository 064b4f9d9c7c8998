package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	actionInsertBook          = "insert_book"
	actionUpdateBook          = "update_book"
	actionSelectBook          = "select_book"
	actionSelectBookForUpdate = "select_book_for_update"
	actionSelectBookIDsByUser = "select_book_ids_by_user"
	actionDeleteBook          = "delete_book"
	actionDeleteBooksByUser   = "delete_books_by_user"
	logMsgBookCreated         = "book created"
	logMsgBookUpdated         = "book updated"
	logMsgBookUpdateNotFound  = "book update skipped, book not found"
	logMsgBookFetched         = "book fetched"
	logMsgBookNotFound        = "book not found"
	logMsgBookDeleted         = "book deleted"
	logMsgBookIDsFetched      = "book ids of user fetched"
	logMsgBooksOfUserDeleted  = "books of user deleted"
	logAttrUserID             = "user_id"
	logAttrBookIDs            = "book_ids"
)

// RepositoryBookService implements userbooks.BookService with statements derived from the Book record
// by the goqu query builder.
type RepositoryBookService struct {
	store   *Store
	builder goqu.DialectWrapper
}

// NewRepositoryBookService creates a RepositoryBookService on top of the given Store.
func NewRepositoryBookService(store *Store) *RepositoryBookService {
	return &RepositoryBookService{
		store:   store,
		builder: goqu.Dialect(dialectPostgres),
	}
}

// CreateBook inserts the book and returns the stored state including the generated identity.
// An owner that does not resolve to a person fails with userbooks.ErrConstraintViolation.
func (r *RepositoryBookService) CreateBook(ctx context.Context, book *userbooks.BookDTO) (userbooks.BookDTO, error) {
	if err := userbooks.ValidateBookForCreate(book); err != nil {
		return userbooks.BookDTO{}, err
	}

	sqlQuery, args, toSQLErr := r.builder.
		Insert(r.store.bookTableName).
		Prepared(true).
		Rows(userbooks.BookDTOToBook(*book)).
		Returning(bookColumns...).
		ToSQL()
	if toSQLErr != nil {
		return userbooks.BookDTO{}, r.store.buildFailed(ctx, actionInsertBook, toSQLErr)
	}

	saved, found, err := r.queryBook(ctx, actionInsertBook, sqlQuery, args)
	if err != nil {
		return userbooks.BookDTO{}, err
	}

	if !found || !saved.IsPersisted() {
		return userbooks.BookDTO{}, userbooks.ErrMissingGeneratedKey
	}

	created := userbooks.BookToBookDTO(saved)
	r.store.logOperationContext(ctx, logMsgBookCreated, logAttrStrategy, strategyRepository, logAttrRecord, created)

	return created, nil
}

// UpdateBook overwrites title, author and page count of an existing book. The owner is never changed.
//
// The row is read with SELECT ... FOR UPDATE inside a transaction. If no row exists, the input is
// echoed with userbooks.NotFoundEchoed, keeping the caller's owner reference, and nothing is written.
func (r *RepositoryBookService) UpdateBook(
	ctx context.Context,
	book *userbooks.BookDTO,
) (userbooks.BookDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateBookForUpdate(book); err != nil {
		return userbooks.BookDTO{}, userbooks.Updated, err
	}

	result := *book
	outcome := userbooks.NotFoundEchoed

	err := r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, found, findErr := r.findByIDForUpdate(ctx, book.ID)
		if findErr != nil {
			return findErr
		}

		if !found {
			return nil
		}

		existing.Title = book.Title
		existing.Author = book.Author
		existing.PageCount = book.PageCount

		sqlQuery, args, toSQLErr := r.builder.
			Update(r.store.bookTableName).
			Prepared(true).
			Set(existing).
			Where(goqu.C(colID).Eq(existing.ID)).
			Returning(bookColumns...).
			ToSQL()
		if toSQLErr != nil {
			return r.store.buildFailed(ctx, actionUpdateBook, toSQLErr)
		}

		saved, _, queryErr := r.queryBook(ctx, actionUpdateBook, sqlQuery, args)
		if queryErr != nil {
			return queryErr
		}

		result = userbooks.BookToBookDTO(saved)
		outcome = userbooks.Updated

		return nil
	})
	if err != nil {
		return userbooks.BookDTO{}, userbooks.Updated, err
	}

	if outcome == userbooks.NotFoundEchoed {
		r.store.logOperationContext(ctx, logMsgBookUpdateNotFound, logAttrStrategy, strategyRepository, logAttrRecordID, book.ID)
		return result, outcome, nil
	}

	r.store.logOperationContext(ctx, logMsgBookUpdated, logAttrStrategy, strategyRepository, logAttrRecord, result)

	return result, outcome, nil
}

// GetBookByID returns the book, or nil without an error if no book with the identity exists.
func (r *RepositoryBookService) GetBookByID(ctx context.Context, id userbooks.RecordID) (*userbooks.BookDTO, error) {
	sqlQuery, args, toSQLErr := r.selectByID(id).ToSQL()
	if toSQLErr != nil {
		return nil, r.store.buildFailed(ctx, actionSelectBook, toSQLErr)
	}

	book, found, err := r.queryBook(ctx, actionSelectBook, sqlQuery, args)
	if err != nil {
		return nil, err
	}

	if !found {
		r.store.logOperationContext(ctx, logMsgBookNotFound, logAttrStrategy, strategyRepository, logAttrRecordID, id)
		return nil, nil
	}

	dto := userbooks.BookToBookDTO(book)
	r.store.logOperationContext(ctx, logMsgBookFetched, logAttrStrategy, strategyRepository, logAttrRecord, dto)

	return &dto, nil
}

// DeleteBookByID deletes the book without verifying that it existed.
func (r *RepositoryBookService) DeleteBookByID(ctx context.Context, id userbooks.RecordID) error {
	return r.deleteWhere(ctx, actionDeleteBook, goqu.C(colID).Eq(id), logMsgBookDeleted, logAttrRecordID, id)
}

// GetBooksByUserID returns the identities of all books owned by the user, ordered by identity.
func (r *RepositoryBookService) GetBooksByUserID(
	ctx context.Context,
	userID userbooks.RecordID,
) ([]userbooks.RecordID, error) {

	sqlQuery, args, toSQLErr := r.builder.
		From(r.store.bookTableName).
		Prepared(true).
		Select(colID).
		Where(goqu.C(colUserID).Eq(userID)).
		Order(goqu.I(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, r.store.buildFailed(ctx, actionSelectBookIDsByUser, toSQLErr)
	}

	ids := make([]userbooks.RecordID, 0)

	err := r.store.queryRows(ctx, actionSelectBookIDsByUser, sqlQuery, args, func(rows adapters.DBRows) error {
		id, mapErr := mapIDRow(rows)
		if mapErr != nil {
			return mapErr
		}

		ids = append(ids, id)

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.store.logOperationContext(
		ctx,
		logMsgBookIDsFetched,
		logAttrStrategy, strategyRepository,
		logAttrUserID, userID,
		logAttrBookIDs, ids,
	)

	return ids, nil
}

// DeleteBooksByUserID deletes all books owned by the user.
func (r *RepositoryBookService) DeleteBooksByUserID(ctx context.Context, userID userbooks.RecordID) error {
	return r.deleteWhere(
		ctx,
		actionDeleteBooksByUser,
		goqu.C(colUserID).Eq(userID),
		logMsgBooksOfUserDeleted,
		logAttrUserID,
		userID,
	)
}

func (r *RepositoryBookService) deleteWhere(
	ctx context.Context,
	action string,
	condition exp.Expression,
	logMsg string,
	logAttrKey string,
	logAttrVal userbooks.RecordID,
) error {

	sqlQuery, args, toSQLErr := r.builder.
		Delete(r.store.bookTableName).
		Prepared(true).
		Where(condition).
		ToSQL()
	if toSQLErr != nil {
		return r.store.buildFailed(ctx, action, toSQLErr)
	}

	rowsAffected, err := r.store.exec(ctx, action, sqlQuery, args...)
	if err != nil {
		return err
	}

	r.store.logOperationContext(
		ctx,
		logMsg,
		logAttrStrategy, strategyRepository,
		logAttrKey, logAttrVal,
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

// findByIDForUpdate reads the book and locks its row until the transaction ends.
func (r *RepositoryBookService) findByIDForUpdate(
	ctx context.Context,
	id userbooks.RecordID,
) (userbooks.Book, bool, error) {

	sqlQuery, args, toSQLErr := r.selectByID(id).ForUpdate(exp.Wait).ToSQL()
	if toSQLErr != nil {
		return userbooks.Book{}, false, r.store.buildFailed(ctx, actionSelectBookForUpdate, toSQLErr)
	}

	return r.queryBook(ctx, actionSelectBookForUpdate, sqlQuery, args)
}

func (r *RepositoryBookService) selectByID(id userbooks.RecordID) *goqu.SelectDataset {
	return r.builder.
		From(r.store.bookTableName).
		Prepared(true).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id))
}

// queryBook runs a statement that yields at most one book row.
func (r *RepositoryBookService) queryBook(
	ctx context.Context,
	action string,
	sqlQuery string,
	args []any,
) (userbooks.Book, bool, error) {

	var book userbooks.Book
	found := false

	err := r.store.queryRows(ctx, action, sqlQuery, args, func(rows adapters.DBRows) error {
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
