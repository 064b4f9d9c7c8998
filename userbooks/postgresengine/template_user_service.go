package postgresengine

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	actionTemplateInsertPerson = "template_insert_person"
	actionTemplateUpdatePerson = "template_update_person"
	actionTemplateSelectPerson = "template_select_person"
	actionTemplateDeletePerson = "template_delete_person"
)

// TemplateUserService implements userbooks.UserService with hand-written parameterized statements.
// Generated keys are read back with RETURNING id.
type TemplateUserService struct {
	store     *Store
	insertSQL string
	updateSQL string
	selectSQL string
	deleteSQL string
}

// NewTemplateUserService creates a TemplateUserService on top of the given Store.
// The statements are rendered once for the configured person table.
func NewTemplateUserService(store *Store) *TemplateUserService {
	table := quoteIdentifier(store.personTableName)

	return &TemplateUserService{
		store: store,
		insertSQL: fmt.Sprintf(
			`INSERT INTO %s (full_name, title, age) VALUES ($1, $2, $3) RETURNING id`,
			table,
		),
		updateSQL: fmt.Sprintf(
			`UPDATE %s SET full_name = $2, title = $3, age = $4 WHERE id = $1 RETURNING id, full_name, title, age, book_count`,
			table,
		),
		selectSQL: fmt.Sprintf(
			`SELECT id, full_name, title, age, book_count FROM %s WHERE id = $1`,
			table,
		),
		deleteSQL: fmt.Sprintf(
			`DELETE FROM %s WHERE id = $1`,
			table,
		),
	}
}

// CreateUser inserts the user and returns it with the generated identity and a book count of zero.
func (t *TemplateUserService) CreateUser(ctx context.Context, user *userbooks.UserDTO) (userbooks.UserDTO, error) {
	if err := userbooks.ValidateUserForCreate(user); err != nil {
		return userbooks.UserDTO{}, err
	}

	id, err := t.store.queryGeneratedKey(
		ctx,
		actionTemplateInsertPerson,
		t.insertSQL,
		user.FullName, user.Title, user.Age,
	)
	if err != nil {
		return userbooks.UserDTO{}, err
	}

	created := *user
	created.ID = id
	created.BookCount = 0

	t.store.logOperationContext(ctx, logMsgUserCreated, logAttrStrategy, strategyTemplate, logAttrRecord, created)

	return created, nil
}

// UpdateUser overwrites full name, title and age of an existing user with a single UPDATE.
// If the statement matches no row, the input is echoed with userbooks.NotFoundEchoed.
func (t *TemplateUserService) UpdateUser(
	ctx context.Context,
	user *userbooks.UserDTO,
) (userbooks.UserDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateUserForUpdate(user); err != nil {
		return userbooks.UserDTO{}, userbooks.Updated, err
	}

	saved, found, err := t.queryPerson(
		ctx,
		actionTemplateUpdatePerson,
		t.updateSQL,
		user.ID, user.FullName, user.Title, user.Age,
	)
	if err != nil {
		return userbooks.UserDTO{}, userbooks.Updated, err
	}

	if !found {
		t.store.logOperationContext(ctx, logMsgUserUpdateNotFound, logAttrStrategy, strategyTemplate, logAttrRecordID, user.ID)
		return *user, userbooks.NotFoundEchoed, nil
	}

	updated := userbooks.PersonToUserDTO(saved)
	t.store.logOperationContext(ctx, logMsgUserUpdated, logAttrStrategy, strategyTemplate, logAttrRecord, updated)

	return updated, userbooks.Updated, nil
}

// GetUserByID returns the user, or nil without an error if no user with the identity exists.
func (t *TemplateUserService) GetUserByID(ctx context.Context, id userbooks.RecordID) (*userbooks.UserDTO, error) {
	person, found, err := t.queryPerson(ctx, actionTemplateSelectPerson, t.selectSQL, id)
	if err != nil {
		return nil, err
	}

	if !found {
		t.store.logOperationContext(ctx, logMsgUserNotFound, logAttrStrategy, strategyTemplate, logAttrRecordID, id)
		return nil, nil
	}

	user := userbooks.PersonToUserDTO(person)
	t.store.logOperationContext(ctx, logMsgUserFetched, logAttrStrategy, strategyTemplate, logAttrRecord, user)

	return &user, nil
}

// DeleteUserByID deletes the user without verifying that it existed.
func (t *TemplateUserService) DeleteUserByID(ctx context.Context, id userbooks.RecordID) error {
	rowsAffected, err := t.store.exec(ctx, actionTemplateDeletePerson, t.deleteSQL, id)
	if err != nil {
		return err
	}

	t.store.logOperationContext(
		ctx,
		logMsgUserDeleted,
		logAttrStrategy, strategyTemplate,
		logAttrRecordID, id,
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

func (t *TemplateUserService) queryPerson(
	ctx context.Context,
	action string,
	sqlQuery string,
	args ...any,
) (userbooks.Person, bool, error) {

	var person userbooks.Person
	found := false

	err := t.store.queryRows(ctx, action, sqlQuery, args, func(rows adapters.DBRows) error {
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
