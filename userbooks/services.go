package userbooks

import (
	"context"
)

// UserService is the capability interface for user persistence.
//
// Both persistence strategies implement the same contract:
//   - UpdateUser only writes when a row with the input identity exists, otherwise it echoes the input
//     and returns NotFoundEchoed
//   - GetUserByID returns (nil, nil) when no row exists
//   - DeleteUserByID does not verify prior existence
//
// When UpdateUser returns an error, the returned DTO and UpdateOutcome carry no meaning.
type UserService interface {
	CreateUser(ctx context.Context, user *UserDTO) (UserDTO, error)
	UpdateUser(ctx context.Context, user *UserDTO) (UserDTO, UpdateOutcome, error)
	GetUserByID(ctx context.Context, id RecordID) (*UserDTO, error)
	DeleteUserByID(ctx context.Context, id RecordID) error
}

// BookService is the capability interface for book persistence.
//
// It mirrors UserService and adds the owner-scoped operations, which always filter by the owner column.
// When UpdateBook returns an error, the returned DTO and UpdateOutcome carry no meaning.
type BookService interface {
	CreateBook(ctx context.Context, book *BookDTO) (BookDTO, error)
	UpdateBook(ctx context.Context, book *BookDTO) (BookDTO, UpdateOutcome, error)
	GetBookByID(ctx context.Context, id RecordID) (*BookDTO, error)
	DeleteBookByID(ctx context.Context, id RecordID) error
	GetBooksByUserID(ctx context.Context, userID RecordID) ([]RecordID, error)
	DeleteBooksByUserID(ctx context.Context, userID RecordID) error
}

// TransactionRunner runs fn inside one transaction, which is committed when fn returns nil
// and rolled back otherwise. The transaction travels in the context passed to fn.
type TransactionRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
