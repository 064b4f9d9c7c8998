package userbooks

import (
	"errors"
)

var (
	// ErrPreconditionFailed signals a programming error in the caller, e.g. a nil input or a missing identity.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConstraintViolation signals that the store rejected a write because of an integrity constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNotFound is only returned by callers that opt out of the soft not-found semantics.
	ErrNotFound = errors.New("record not found")
)

var ErrNilDatabaseConnection = errors.New("database connection is nil")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrBuildingQueryFailed = errors.New("building the query failed")
var ErrQueryingFailed = errors.New("querying the database failed")
var ErrExecutingFailed = errors.New("executing the statement failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrMissingGeneratedKey = errors.New("the store did not return a generated key")
var ErrBeginTransactionFailed = errors.New("beginning the transaction failed")
var ErrCommitTransactionFailed = errors.New("committing the transaction failed")

// ErrorKind classifies errors returned by the services and the facade.
type ErrorKind int

const (
	// KindNone is the kind of a nil error.
	KindNone ErrorKind = iota

	// KindPreconditionFailure marks a caller error that is surfaced immediately and never recovered.
	KindPreconditionFailure

	// KindConstraintViolation marks a write rejected by the store, propagated unmodified.
	KindConstraintViolation

	// KindNotFound marks an explicit not-found result.
	KindNotFound

	// KindInfrastructure marks every other failure: connection, statement or transaction errors.
	KindInfrastructure
)

// KindOf returns the ErrorKind of err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPreconditionFailed):
		return KindPreconditionFailure
	case errors.Is(err, ErrConstraintViolation):
		return KindConstraintViolation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInfrastructure
	}
}

// String provides a string representation of ErrorKind for logging and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPreconditionFailure:
		return "precondition_failure"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}
