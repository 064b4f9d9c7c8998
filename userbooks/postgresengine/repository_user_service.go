package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	dialectPostgres             = "postgres"
	actionInsertPerson          = "insert_person"
	actionUpdatePerson          = "update_person"
	actionSelectPerson          = "select_person"
	actionSelectPersonForUpdate = "select_person_for_update"
	actionDeletePerson          = "delete_person"
	logMsgUserCreated           = "user created"
	logMsgUserUpdated           = "user updated"
	logMsgUserUpdateNotFound    = "user update skipped, user not found"
	logMsgUserFetched           = "user fetched"
	logMsgUserNotFound          = "user not found"
	logMsgUserDeleted           = "user deleted"
)

// RepositoryUserService implements userbooks.UserService with statements derived from the Person record
// by the goqu query builder.
type RepositoryUserService struct {
	store   *Store
	builder goqu.DialectWrapper
}

// NewRepositoryUserService creates a RepositoryUserService on top of the given Store.
func NewRepositoryUserService(store *Store) *RepositoryUserService {
	return &RepositoryUserService{
		store:   store,
		builder: goqu.Dialect(dialectPostgres),
	}
}

// CreateUser inserts the user and returns the stored state including the generated identity.
func (r *RepositoryUserService) CreateUser(ctx context.Context, user *userbooks.UserDTO) (userbooks.UserDTO, error) {
	if err := userbooks.ValidateUserForCreate(user); err != nil {
		return userbooks.UserDTO{}, err
	}

	sqlQuery, args, toSQLErr := r.builder.
		Insert(r.store.personTableName).
		Prepared(true).
		Rows(userbooks.UserDTOToPerson(*user)).
		Returning(personColumns...).
		ToSQL()
	if toSQLErr != nil {
		return userbooks.UserDTO{}, r.store.buildFailed(ctx, actionInsertPerson, toSQLErr)
	}

	saved, found, err := r.queryPerson(ctx, actionInsertPerson, sqlQuery, args)
	if err != nil {
		return userbooks.UserDTO{}, err
	}

	if !found || !saved.IsPersisted() {
		return userbooks.UserDTO{}, userbooks.ErrMissingGeneratedKey
	}

	created := userbooks.PersonToUserDTO(saved)
	r.store.logOperationContext(ctx, logMsgUserCreated, logAttrStrategy, strategyRepository, logAttrRecord, created)

	return created, nil
}

// UpdateUser overwrites full name, title and age of an existing user.
//
// The row is read with SELECT ... FOR UPDATE inside a transaction (joining the caller's transaction
// if one is running). If no row exists, the input is echoed with userbooks.NotFoundEchoed and nothing is written.
func (r *RepositoryUserService) UpdateUser(
	ctx context.Context,
	user *userbooks.UserDTO,
) (userbooks.UserDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateUserForUpdate(user); err != nil {
		return userbooks.UserDTO{}, userbooks.Updated, err
	}

	result := *user
	outcome := userbooks.NotFoundEchoed

	err := r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, found, findErr := r.findByIDForUpdate(ctx, user.ID)
		if findErr != nil {
			return findErr
		}

		if !found {
			return nil
		}

		existing.FullName = user.FullName
		existing.Title = user.Title
		existing.Age = user.Age

		sqlQuery, args, toSQLErr := r.builder.
			Update(r.store.personTableName).
			Prepared(true).
			Set(existing).
			Where(goqu.C(colID).Eq(existing.ID)).
			Returning(personColumns...).
			ToSQL()
		if toSQLErr != nil {
			return r.store.buildFailed(ctx, actionUpdatePerson, toSQLErr)
		}

		saved, _, queryErr := r.queryPerson(ctx, actionUpdatePerson, sqlQuery, args)
		if queryErr != nil {
			return queryErr
		}

		result = userbooks.PersonToUserDTO(saved)
		outcome = userbooks.Updated

		return nil
	})
	if err != nil {
		return userbooks.UserDTO{}, userbooks.Updated, err
	}

	if outcome == userbooks.NotFoundEchoed {
		r.store.logOperationContext(ctx, logMsgUserUpdateNotFound, logAttrStrategy, strategyRepository, logAttrRecordID, user.ID)
		return result, outcome, nil
	}

	r.store.logOperationContext(ctx, logMsgUserUpdated, logAttrStrategy, strategyRepository, logAttrRecord, result)

	return result, outcome, nil
}

// GetUserByID returns the user, or nil without an error if no user with the identity exists.
func (r *RepositoryUserService) GetUserByID(ctx context.Context, id userbooks.RecordID) (*userbooks.UserDTO, error) {
	sqlQuery, args, toSQLErr := r.selectByID(id).ToSQL()
	if toSQLErr != nil {
		return nil, r.store.buildFailed(ctx, actionSelectPerson, toSQLErr)
	}

	person, found, err := r.queryPerson(ctx, actionSelectPerson, sqlQuery, args)
	if err != nil {
		return nil, err
	}

	if !found {
		r.store.logOperationContext(ctx, logMsgUserNotFound, logAttrStrategy, strategyRepository, logAttrRecordID, id)
		return nil, nil
	}

	user := userbooks.PersonToUserDTO(person)
	r.store.logOperationContext(ctx, logMsgUserFetched, logAttrStrategy, strategyRepository, logAttrRecord, user)

	return &user, nil
}

// DeleteUserByID deletes the user without verifying that it existed.
// Deleting a user who still owns books violates the foreign key and fails with userbooks.ErrConstraintViolation.
func (r *RepositoryUserService) DeleteUserByID(ctx context.Context, id userbooks.RecordID) error {
	sqlQuery, args, toSQLErr := r.builder.
		Delete(r.store.personTableName).
		Prepared(true).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if toSQLErr != nil {
		return r.store.buildFailed(ctx, actionDeletePerson, toSQLErr)
	}

	rowsAffected, err := r.store.exec(ctx, actionDeletePerson, sqlQuery, args...)
	if err != nil {
		return err
	}

	r.store.logOperationContext(
		ctx,
		logMsgUserDeleted,
		logAttrStrategy, strategyRepository,
		logAttrRecordID, id,
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

// findByIDForUpdate reads the user and locks its row until the transaction ends.
func (r *RepositoryUserService) findByIDForUpdate(
	ctx context.Context,
	id userbooks.RecordID,
) (userbooks.Person, bool, error) {

	sqlQuery, args, toSQLErr := r.selectByID(id).ForUpdate(exp.Wait).ToSQL()
	if toSQLErr != nil {
		return userbooks.Person{}, false, r.store.buildFailed(ctx, actionSelectPersonForUpdate, toSQLErr)
	}

	return r.queryPerson(ctx, actionSelectPersonForUpdate, sqlQuery, args)
}

func (r *RepositoryUserService) selectByID(id userbooks.RecordID) *goqu.SelectDataset {
	return r.builder.
		From(r.store.personTableName).
		Prepared(true).
		Select(personColumns...).
		Where(goqu.C(colID).Eq(id))
}

// queryPerson runs a statement that yields at most one person row.
func (r *RepositoryUserService) queryPerson(
	ctx context.Context,
	action string,
	sqlQuery string,
	args []any,
) (userbooks.Person, bool, error) {

	var person userbooks.Person
	found := false

	err := r.store.queryRows(ctx, action, sqlQuery, args, func(rows adapters.DBRows) error {
		mapped, mapErr := mapPersonRow(rows)
		if mapErr != nil {
			return mapErr
		}

		person = mapped
		found = true

		return nil
	})

	return person, found, err
}
