package facade_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

var errInjected = errors.New("injected failure")

// memoryStore is an in-memory UserService, BookService and TransactionRunner.
// A transaction snapshots both tables and restores them when fn fails.
type memoryStore struct {
	mu     sync.Mutex
	nextID userbooks.RecordID
	users  map[userbooks.RecordID]userbooks.UserDTO
	books  map[userbooks.RecordID]userbooks.BookDTO

	writes    int
	commits   int
	rollbacks int
	calls     []string

	failCreateBookAt int
	createBookCalls  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID: 1,
		users:  make(map[userbooks.RecordID]userbooks.UserDTO),
		books:  make(map[userbooks.RecordID]userbooks.BookDTO),
	}
}

func (m *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	m.mu.Lock()
	users := maps.Clone(m.users)
	books := maps.Clone(m.books)
	writes := m.writes
	m.mu.Unlock()

	restore := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.users = users
		m.books = books
		m.writes = writes
		m.rollbacks++
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			restore()
			panic(recovered)
		}
	}()

	if err = fn(ctx); err != nil {
		restore()
		return err
	}

	m.mu.Lock()
	m.commits++
	m.mu.Unlock()

	return nil
}

func (m *memoryStore) CreateUser(_ context.Context, user *userbooks.UserDTO) (userbooks.UserDTO, error) {
	if err := userbooks.ValidateUserForCreate(user); err != nil {
		return userbooks.UserDTO{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "CreateUser")

	created := *user
	created.ID = m.nextID
	created.BookCount = 0
	m.nextID++
	m.users[created.ID] = created
	m.writes++

	return created, nil
}

func (m *memoryStore) UpdateUser(
	_ context.Context,
	user *userbooks.UserDTO,
) (userbooks.UserDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateUserForUpdate(user); err != nil {
		return userbooks.UserDTO{}, userbooks.Updated, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "UpdateUser")

	existing, found := m.users[user.ID]
	if !found {
		return *user, userbooks.NotFoundEchoed, nil
	}

	existing.FullName = user.FullName
	existing.Title = user.Title
	existing.Age = user.Age
	m.users[existing.ID] = existing
	m.writes++

	return m.withBookCount(existing), userbooks.Updated, nil
}

func (m *memoryStore) GetUserByID(_ context.Context, id userbooks.RecordID) (*userbooks.UserDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "GetUserByID")

	user, found := m.users[id]
	if !found {
		return nil, nil
	}

	user = m.withBookCount(user)

	return &user, nil
}

func (m *memoryStore) DeleteUserByID(_ context.Context, id userbooks.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "DeleteUserByID")

	for _, book := range m.books {
		if book.UserID == id {
			return errors.Join(userbooks.ErrConstraintViolation, errors.New("person still owns books"))
		}
	}

	if _, found := m.users[id]; found {
		delete(m.users, id)
		m.writes++
	}

	return nil
}

func (m *memoryStore) CreateBook(_ context.Context, book *userbooks.BookDTO) (userbooks.BookDTO, error) {
	if err := userbooks.ValidateBookForCreate(book); err != nil {
		return userbooks.BookDTO{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "CreateBook")
	m.createBookCalls++

	if m.failCreateBookAt > 0 && m.createBookCalls == m.failCreateBookAt {
		return userbooks.BookDTO{}, errInjected
	}

	if _, found := m.users[book.UserID]; !found {
		return userbooks.BookDTO{}, errors.Join(userbooks.ErrConstraintViolation, errors.New("unknown owner"))
	}

	created := *book
	created.ID = m.nextID
	m.nextID++
	m.books[created.ID] = created
	m.writes++

	return created, nil
}

func (m *memoryStore) UpdateBook(
	_ context.Context,
	book *userbooks.BookDTO,
) (userbooks.BookDTO, userbooks.UpdateOutcome, error) {

	if err := userbooks.ValidateBookForUpdate(book); err != nil {
		return userbooks.BookDTO{}, userbooks.Updated, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "UpdateBook")

	existing, found := m.books[book.ID]
	if !found {
		return *book, userbooks.NotFoundEchoed, nil
	}

	existing.Title = book.Title
	existing.Author = book.Author
	existing.PageCount = book.PageCount
	m.books[existing.ID] = existing
	m.writes++

	return existing, userbooks.Updated, nil
}

func (m *memoryStore) GetBookByID(_ context.Context, id userbooks.RecordID) (*userbooks.BookDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "GetBookByID")

	book, found := m.books[id]
	if !found {
		return nil, nil
	}

	return &book, nil
}

func (m *memoryStore) DeleteBookByID(_ context.Context, id userbooks.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "DeleteBookByID")

	if _, found := m.books[id]; found {
		delete(m.books, id)
		m.writes++
	}

	return nil
}

func (m *memoryStore) GetBooksByUserID(_ context.Context, userID userbooks.RecordID) ([]userbooks.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "GetBooksByUserID")

	return m.bookIDsOf(userID), nil
}

func (m *memoryStore) DeleteBooksByUserID(_ context.Context, userID userbooks.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "DeleteBooksByUserID")

	for _, id := range m.bookIDsOf(userID) {
		delete(m.books, id)
		m.writes++
	}

	return nil
}

func (m *memoryStore) bookIDsOf(userID userbooks.RecordID) []userbooks.RecordID {
	ids := make([]userbooks.RecordID, 0)
	for id, book := range m.books {
		if book.UserID == userID {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	return ids
}

func (m *memoryStore) withBookCount(user userbooks.UserDTO) userbooks.UserDTO {
	user.BookCount = len(m.bookIDsOf(user.ID))
	return user
}

func (m *memoryStore) user(id userbooks.RecordID) (userbooks.UserDTO, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, found := m.users[id]

	return user, found
}

func (m *memoryStore) book(id userbooks.RecordID) (userbooks.BookDTO, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, found := m.books[id]

	return book, found
}

func (m *memoryStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

func (m *memoryStore) recordedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.calls)
}

func (m *memoryStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.commits + m.rollbacks
}
