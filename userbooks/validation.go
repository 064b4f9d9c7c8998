package userbooks

import (
	"errors"
	"fmt"
)

// ValidateUserForCreate checks the preconditions of creating a user.
func ValidateUserForCreate(user *UserDTO) error {
	if user == nil {
		return errors.Join(ErrPreconditionFailed, errors.New("user is nil"))
	}

	if user.Age < 0 {
		return errors.Join(ErrPreconditionFailed, fmt.Errorf("age must not be negative, got %d", user.Age))
	}

	return nil
}

// ValidateUserForUpdate checks the preconditions of updating a user. An update requires an identity.
func ValidateUserForUpdate(user *UserDTO) error {
	if err := ValidateUserForCreate(user); err != nil {
		return err
	}

	if user.ID == NoID {
		return errors.Join(ErrPreconditionFailed, errors.New("user identity is missing"))
	}

	return nil
}

// ValidateBookForCreate checks the preconditions of creating a book.
// A missing owner is a constraint violation, the same error the store raises for an unknown owner.
func ValidateBookForCreate(book *BookDTO) error {
	if book == nil {
		return errors.Join(ErrPreconditionFailed, errors.New("book is nil"))
	}

	if book.PageCount < 0 {
		return errors.Join(ErrPreconditionFailed, fmt.Errorf("page count must not be negative, got %d", book.PageCount))
	}

	if book.UserID == NoID {
		return errors.Join(ErrConstraintViolation, errors.New("book has no owner"))
	}

	return nil
}

// ValidateBookForUpdate checks the preconditions of updating a book. An update requires an identity.
func ValidateBookForUpdate(book *BookDTO) error {
	if book == nil {
		return errors.Join(ErrPreconditionFailed, errors.New("book is nil"))
	}

	if book.PageCount < 0 {
		return errors.Join(ErrPreconditionFailed, fmt.Errorf("page count must not be negative, got %d", book.PageCount))
	}

	if book.ID == NoID {
		return errors.Join(ErrPreconditionFailed, errors.New("book identity is missing"))
	}

	return nil
}
