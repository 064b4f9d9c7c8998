package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opGet    = "get"
	opDelete = "delete"
)

var errUnknownOperation = errors.New("unknown operation")

// userBookOperations is the part of facade.UserDataFacade the runner needs.
type userBookOperations interface {
	CreateUserWithBooks(ctx context.Context, request *userbooks.UserBookRequest) (userbooks.UserBookResponse, error)
	UpdateUserWithBooks(ctx context.Context, request *userbooks.UserBookRequest) (userbooks.UserBookUpdateResponse, error)
	GetUserWithBooks(ctx context.Context, userID userbooks.RecordID) (userbooks.UserBookResponse, error)
	DeleteUserWithBooks(ctx context.Context, userID userbooks.RecordID) error
}

type deleteResponse struct {
	UserID  userbooks.RecordID `json:"userId"`
	Deleted bool               `json:"deleted"`
}

// runOperation executes one facade operation and writes its response as JSON.
// create and update read their request from input, get and delete use id.
// get fails with userbooks.ErrNotFound when the user does not exist.
func runOperation(
	ctx context.Context,
	operations userBookOperations,
	operation string,
	id userbooks.RecordID,
	input io.Reader,
	output io.Writer,
) error {

	var response any

	switch operation {
	case opCreate, opUpdate:
		request, err := decodeRequest(input)
		if err != nil {
			return err
		}

		if operation == opCreate {
			response, err = operations.CreateUserWithBooks(ctx, request)
		} else {
			response, err = operations.UpdateUserWithBooks(ctx, request)
		}

		if err != nil {
			return err
		}

	case opGet:
		found, err := operations.GetUserWithBooks(ctx, id)
		if err != nil {
			return err
		}

		if found.IsEmpty() {
			return errors.Join(userbooks.ErrNotFound, fmt.Errorf("user %d", id))
		}

		response = found

	case opDelete:
		if err := operations.DeleteUserWithBooks(ctx, id); err != nil {
			return err
		}

		response = deleteResponse{UserID: id, Deleted: true}

	default:
		return errors.Join(errUnknownOperation, fmt.Errorf("%q", operation))
	}

	return encodeResponse(output, response)
}
