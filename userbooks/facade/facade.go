package facade

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

const (
	operationCreate = "create_user_with_books"
	operationUpdate = "update_user_with_books"
	operationGet    = "get_user_with_books"
	operationDelete = "delete_user_with_books"

	stageUserInput   = "user input"
	stageUserOutput  = "user output"
	stageBookInput   = "book input"
	stageBookOutput  = "book output"
	stageBookIDs     = "book ids"
	stageUserDeleted = "user deleted"
	stageBooksDelete = "books deleted"
	stageResponse    = "response"
)

// ErrMissingDependency is returned by NewUserDataFacade when a service or the transaction runner is nil.
var ErrMissingDependency = errors.New("facade dependency is nil")

// UserDataFacade runs the four aggregate operations on a user and its books.
// It is stateless apart from its dependencies and safe for concurrent use.
type UserDataFacade struct {
	users            userbooks.UserService
	books            userbooks.BookService
	transactions     userbooks.TransactionRunner
	logger           userbooks.Logger
	contextualLogger userbooks.ContextualLogger
	metricsCollector userbooks.MetricsCollector
	tracingCollector userbooks.TracingCollector
}

// NewUserDataFacade creates a UserDataFacade with the given services and transaction runner.
func NewUserDataFacade(
	users userbooks.UserService,
	books userbooks.BookService,
	transactions userbooks.TransactionRunner,
	options ...Option,
) (UserDataFacade, error) {

	if users == nil || books == nil || transactions == nil {
		return UserDataFacade{}, ErrMissingDependency
	}

	f := UserDataFacade{
		users:        users,
		books:        books,
		transactions: transactions,
	}

	for _, option := range options {
		if err := option(&f); err != nil {
			return UserDataFacade{}, err
		}
	}

	return f, nil
}

// CreateUserWithBooks creates the user, then every non-nil book with the new user as owner.
// The book identities in the response have the order of the non-nil book requests.
func (f UserDataFacade) CreateUserWithBooks(
	ctx context.Context,
	request *userbooks.UserBookRequest,
) (userbooks.UserBookResponse, error) {

	ctx, op := f.startOperation(ctx, operationCreate)

	if err := validateRequest(request); err != nil {
		f.failOperation(ctx, op, err)
		return userbooks.UserBookResponse{}, err
	}

	var response userbooks.UserBookResponse

	err := f.transactions.WithinTransaction(ctx, func(ctx context.Context) error {
		userDTO := userbooks.UserRequestToDTO(*request.UserRequest)
		f.logStage(ctx, op, stageUserInput, logAttrInput, userDTO)

		createdUser, err := f.users.CreateUser(ctx, &userDTO)
		if err != nil {
			return err
		}

		f.logStage(ctx, op, stageUserOutput, logAttrOutput, createdUser)

		bookRequests := request.NonNilBookRequests()
		createdBooks := make([]userbooks.BookDTO, 0, len(bookRequests))

		for _, bookRequest := range bookRequests {
			bookDTO := userbooks.BookRequestToDTO(bookRequest)
			bookDTO.UserID = createdUser.ID
			f.logStage(ctx, op, stageBookInput, logAttrInput, bookDTO)

			createdBook, bookErr := f.books.CreateBook(ctx, &bookDTO)
			if bookErr != nil {
				return bookErr
			}

			f.logStage(ctx, op, stageBookOutput, logAttrOutput, createdBook)
			createdBooks = append(createdBooks, createdBook)
		}

		response = userbooks.UserBookResponse{UserID: createdUser.ID, BookIDs: userbooks.BookIDsOf(createdBooks)}

		return nil
	})
	if err != nil {
		f.failOperation(ctx, op, err)
		return userbooks.UserBookResponse{}, err
	}

	f.logStage(ctx, op, stageResponse, logAttrOutput, response)
	f.finishOperation(ctx, op, StatusSuccess)

	return response, nil
}

// UpdateUserWithBooks updates the user, then every non-nil book, each only if it exists.
//
// Missing records are not an error: their input is echoed and the response reports
// userbooks.NotFoundEchoed for them. Book updates never change the owner of a book.
func (f UserDataFacade) UpdateUserWithBooks(
	ctx context.Context,
	request *userbooks.UserBookRequest,
) (userbooks.UserBookUpdateResponse, error) {

	ctx, op := f.startOperation(ctx, operationUpdate)

	if err := validateRequest(request); err != nil {
		f.failOperation(ctx, op, err)
		return userbooks.UserBookUpdateResponse{}, err
	}

	var response userbooks.UserBookUpdateResponse

	err := f.transactions.WithinTransaction(ctx, func(ctx context.Context) error {
		userDTO := userbooks.UserRequestToDTO(*request.UserRequest)
		f.logStage(ctx, op, stageUserInput, logAttrInput, userDTO)

		updatedUser, userOutcome, err := f.users.UpdateUser(ctx, &userDTO)
		if err != nil {
			return err
		}

		f.logStage(ctx, op, stageUserOutput, logAttrOutput, updatedUser, logAttrOutcome, userOutcome)

		bookRequests := request.NonNilBookRequests()
		updatedBooks := make([]userbooks.BookDTO, 0, len(bookRequests))
		bookOutcomes := make([]userbooks.UpdateOutcome, 0, len(bookRequests))

		for _, bookRequest := range bookRequests {
			bookDTO := userbooks.BookRequestToDTO(bookRequest)
			bookDTO.UserID = userDTO.ID
			f.logStage(ctx, op, stageBookInput, logAttrInput, bookDTO)

			updatedBook, bookOutcome, bookErr := f.books.UpdateBook(ctx, &bookDTO)
			if bookErr != nil {
				return bookErr
			}

			f.logStage(ctx, op, stageBookOutput, logAttrOutput, updatedBook, logAttrOutcome, bookOutcome)
			updatedBooks = append(updatedBooks, updatedBook)
			bookOutcomes = append(bookOutcomes, bookOutcome)
		}

		response = userbooks.UserBookUpdateResponse{
			UserBookResponse: userbooks.UserBookResponse{UserID: updatedUser.ID, BookIDs: userbooks.BookIDsOf(updatedBooks)},
			UserOutcome:      userOutcome,
			BookOutcomes:     bookOutcomes,
		}

		return nil
	})
	if err != nil {
		f.failOperation(ctx, op, err)
		return userbooks.UserBookUpdateResponse{}, err
	}

	f.logStage(ctx, op, stageResponse, logAttrOutput, response)

	if response.UserOutcome == userbooks.NotFoundEchoed {
		f.finishOperation(ctx, op, StatusNotFound)
	} else {
		f.finishOperation(ctx, op, StatusSuccess)
	}

	return response, nil
}

// GetUserWithBooks returns the user identity and the identities of the books it owns.
// An absent user yields userbooks.NoID and an empty book list. Nothing is written.
//
// With userbooks.EventualConsistency in the context the reads run without a transaction,
// so a store configured with a replica serves them from the replica.
func (f UserDataFacade) GetUserWithBooks(
	ctx context.Context,
	userID userbooks.RecordID,
) (userbooks.UserBookResponse, error) {

	ctx, op := f.startOperation(ctx, operationGet)

	response := userbooks.UserBookResponse{UserID: userbooks.NoID, BookIDs: []userbooks.RecordID{}}

	read := func(ctx context.Context) error {
		f.logStage(ctx, op, stageUserInput, logAttrInput, userID)

		user, err := f.users.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		f.logStage(ctx, op, stageUserOutput, logAttrOutput, user)

		if user == nil {
			return nil
		}

		bookIDs, err := f.books.GetBooksByUserID(ctx, user.ID)
		if err != nil {
			return err
		}

		f.logStage(ctx, op, stageBookIDs, logAttrOutput, bookIDs)

		response.UserID = user.ID
		if bookIDs != nil {
			response.BookIDs = bookIDs
		}

		return nil
	}

	var err error
	if userbooks.GetConsistencyLevel(ctx) == userbooks.EventualConsistency {
		err = read(ctx)
	} else {
		err = f.transactions.WithinTransaction(ctx, read)
	}

	if err != nil {
		f.failOperation(ctx, op, err)
		return userbooks.UserBookResponse{}, err
	}

	f.logStage(ctx, op, stageResponse, logAttrOutput, response)

	if response.UserID == userbooks.NoID {
		f.finishOperation(ctx, op, StatusNotFound)
	} else {
		f.finishOperation(ctx, op, StatusSuccess)
	}

	return response, nil
}

// DeleteUserWithBooks deletes all books owned by the user, then the user itself.
// Deleting an absent user is not an error.
func (f UserDataFacade) DeleteUserWithBooks(ctx context.Context, userID userbooks.RecordID) error {
	ctx, op := f.startOperation(ctx, operationDelete)

	err := f.transactions.WithinTransaction(ctx, func(ctx context.Context) error {
		f.logStage(ctx, op, stageUserInput, logAttrInput, userID)

		if err := f.books.DeleteBooksByUserID(ctx, userID); err != nil {
			return err
		}

		f.logStage(ctx, op, stageBooksDelete, logAttrInput, userID)

		if err := f.users.DeleteUserByID(ctx, userID); err != nil {
			return err
		}

		f.logStage(ctx, op, stageUserDeleted, logAttrInput, userID)

		return nil
	})
	if err != nil {
		f.failOperation(ctx, op, err)
		return err
	}

	f.finishOperation(ctx, op, StatusSuccess)

	return nil
}

func validateRequest(request *userbooks.UserBookRequest) error {
	if request == nil {
		return errors.Join(userbooks.ErrPreconditionFailed, errors.New("user book request is nil"))
	}

	if request.UserRequest == nil {
		return errors.Join(userbooks.ErrPreconditionFailed, errors.New("user request is nil"))
	}

	return nil
}
