package facade_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/userbooks-store-go/testutil/helper"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/facade"
)

func Test_NewUserDataFacade_FailsWithoutDependencies(t *testing.T) {
	store := newMemoryStore()

	_, err := facade.NewUserDataFacade(nil, store, store)
	assert.ErrorIs(t, err, facade.ErrMissingDependency)

	_, err = facade.NewUserDataFacade(store, nil, store)
	assert.ErrorIs(t, err, facade.ErrMissingDependency)

	_, err = facade.NewUserDataFacade(store, store, nil)
	assert.ErrorIs(t, err, facade.ErrMissingDependency)
}

func Test_CreateUserWithBooks_DropsNilBookRequests_AndKeepsInputOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore()
	f := givenFacade(t, store)

	request := &userbooks.UserBookRequest{
		UserRequest: &userbooks.UserRequest{FullName: "Ann", Title: "reader", Age: 30},
		BookRequests: []*userbooks.BookRequest{
			{Title: "A", Author: "X", PageCount: 100},
			nil,
			{Title: "B", Author: "Y", PageCount: 50},
		},
	}

	// act
	response, err := f.CreateUserWithBooks(ctx, request)

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, userbooks.NoID, response.UserID)
	require.Len(t, response.BookIDs, 2)

	first, found := store.book(response.BookIDs[0])
	require.True(t, found)
	assert.Equal(t, "A", first.Title)
	assert.Equal(t, response.UserID, first.UserID)

	second, found := store.book(response.BookIDs[1])
	require.True(t, found)
	assert.Equal(t, "B", second.Title)
	assert.Equal(t, response.UserID, second.UserID)

	assert.Equal(t, 1, store.commits)
	assert.Equal(t, 0, store.rollbacks)
}

func Test_CreateUserWithBooks_ReturnsOneBookIDPerNonNilRequest(t *testing.T) {
	for _, numBooks := range []int{0, 1, 5} {
		// arrange
		store := newMemoryStore()
		f := givenFacade(t, store)

		request := &userbooks.UserBookRequest{UserRequest: &userbooks.UserRequest{FullName: "Bob", Age: 40}}
		for i := 0; i < numBooks; i++ {
			request.BookRequests = append(request.BookRequests, &userbooks.BookRequest{Title: "T", PageCount: int64(i)}, nil)
		}

		// act
		response, err := f.CreateUserWithBooks(context.Background(), request)

		// assert
		require.NoError(t, err)
		assert.NotNil(t, response.BookIDs)
		assert.Len(t, response.BookIDs, numBooks)
		assert.NotEqual(t, userbooks.NoID, response.UserID)
	}
}

func Test_CreateUserWithBooks_FailsWithPrecondition_ForNilRequests(t *testing.T) {
	store := newMemoryStore()
	f := givenFacade(t, store)

	_, err := f.CreateUserWithBooks(context.Background(), nil)
	assert.ErrorIs(t, err, userbooks.ErrPreconditionFailed)
	assert.Equal(t, userbooks.KindPreconditionFailure, userbooks.KindOf(err))

	_, err = f.CreateUserWithBooks(context.Background(), &userbooks.UserBookRequest{})
	assert.ErrorIs(t, err, userbooks.ErrPreconditionFailed)

	assert.Empty(t, store.recordedCalls())
	assert.Equal(t, 0, store.commits+store.rollbacks)
}

func Test_CreateUserWithBooks_RollsBack_WhenABookFails(t *testing.T) {
	// arrange
	store := newMemoryStore()
	store.failCreateBookAt = 2
	f := givenFacade(t, store)

	request := &userbooks.UserBookRequest{
		UserRequest: &userbooks.UserRequest{FullName: "Ann", Age: 30},
		BookRequests: []*userbooks.BookRequest{
			{Title: "A", PageCount: 1},
			{Title: "B", PageCount: 2},
		},
	}

	// act
	response, err := f.CreateUserWithBooks(context.Background(), request)

	// assert
	assert.ErrorIs(t, err, errInjected)
	assert.True(t, response.IsEmpty())
	assert.Equal(t, 0, store.writeCount())
	assert.Equal(t, 1, store.rollbacks)
	assert.Equal(t, 0, store.commits)
}

func Test_UpdateUserWithBooks_EchoesInput_ForMissingUser(t *testing.T) {
	// arrange
	store := newMemoryStore()
	f := givenFacade(t, store)

	request := &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{ID: 4711, FullName: "Nobody", Title: "ghost", Age: 99},
		BookRequests: []*userbooks.BookRequest{{ID: 999, Title: "Z"}},
	}

	// act
	response, err := f.UpdateUserWithBooks(context.Background(), request)

	// assert
	require.NoError(t, err)
	assert.Equal(t, userbooks.RecordID(4711), response.UserID)
	assert.Equal(t, userbooks.NotFoundEchoed, response.UserOutcome)
	assert.Equal(t, []userbooks.RecordID{999}, response.BookIDs)
	assert.Equal(t, []userbooks.UpdateOutcome{userbooks.NotFoundEchoed}, response.BookOutcomes)
	assert.Equal(t, 0, store.writeCount())
}

func Test_UpdateUserWithBooks_OverwritesExistingRecords_Idempotently(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore()
	f := givenFacade(t, store)

	created, err := f.CreateUserWithBooks(ctx, &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{FullName: "Ann", Title: "reader", Age: 30},
		BookRequests: []*userbooks.BookRequest{{Title: "A", Author: "X", PageCount: 100}},
	})
	require.NoError(t, err, "error in arranging test data")

	request := &userbooks.UserBookRequest{
		UserRequest: &userbooks.UserRequest{ID: created.UserID, FullName: "Ann Smith", Title: "author", Age: 31},
		BookRequests: []*userbooks.BookRequest{
			{ID: created.BookIDs[0], Title: "A2", Author: "X2", PageCount: 120},
		},
	}

	// act
	first, err := f.UpdateUserWithBooks(ctx, request)
	require.NoError(t, err)
	userAfterFirst, _ := store.user(created.UserID)
	bookAfterFirst, _ := store.book(created.BookIDs[0])

	second, err := f.UpdateUserWithBooks(ctx, request)
	require.NoError(t, err)
	userAfterSecond, _ := store.user(created.UserID)
	bookAfterSecond, _ := store.book(created.BookIDs[0])

	// assert
	assert.Equal(t, userbooks.Updated, first.UserOutcome)
	assert.Equal(t, []userbooks.UpdateOutcome{userbooks.Updated}, first.BookOutcomes)
	assert.Equal(t, first, second)

	assert.Equal(t, "Ann Smith", userAfterFirst.FullName)
	assert.Equal(t, "author", userAfterFirst.Title)
	assert.Equal(t, 31, userAfterFirst.Age)
	assert.Equal(t, userAfterFirst, userAfterSecond)

	assert.Equal(t, "A2", bookAfterFirst.Title)
	assert.Equal(t, "X2", bookAfterFirst.Author)
	assert.Equal(t, int64(120), bookAfterFirst.PageCount)
	assert.Equal(t, created.UserID, bookAfterFirst.UserID)
	assert.Equal(t, bookAfterFirst, bookAfterSecond)
}

func Test_UpdateUserWithBooks_FailsWithPrecondition_ForNilUserRequest(t *testing.T) {
	store := newMemoryStore()
	f := givenFacade(t, store)

	_, err := f.UpdateUserWithBooks(context.Background(), &userbooks.UserBookRequest{})

	assert.ErrorIs(t, err, userbooks.ErrPreconditionFailed)
	assert.Empty(t, store.recordedCalls())
}

func Test_UpdateUserWithBooks_FailsWithPrecondition_ForMissingUserIdentity(t *testing.T) {
	store := newMemoryStore()
	f := givenFacade(t, store)

	_, err := f.UpdateUserWithBooks(context.Background(), &userbooks.UserBookRequest{
		UserRequest: &userbooks.UserRequest{FullName: "Ann"},
	})

	assert.ErrorIs(t, err, userbooks.ErrPreconditionFailed)
	assert.Equal(t, 1, store.rollbacks)
}

func Test_GetUserWithBooks_ReturnsOwnedBookIDs_WithoutWriting(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore()
	f := givenFacade(t, store)

	created, err := f.CreateUserWithBooks(ctx, &userbooks.UserBookRequest{
		UserRequest: &userbooks.UserRequest{FullName: "Ann", Age: 30},
		BookRequests: []*userbooks.BookRequest{
			{Title: "A", PageCount: 1},
			{Title: "B", PageCount: 2},
		},
	})
	require.NoError(t, err, "error in arranging test data")

	_, err = f.CreateUserWithBooks(ctx, &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{FullName: "Bob", Age: 40},
		BookRequests: []*userbooks.BookRequest{{Title: "C", PageCount: 3}},
	})
	require.NoError(t, err, "error in arranging test data")

	writesBefore := store.writeCount()

	// act
	response, err := f.GetUserWithBooks(ctx, created.UserID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, created, response)
	assert.Equal(t, writesBefore, store.writeCount())
}

func Test_GetUserWithBooks_RunsWithoutTransaction_ForEventualConsistency(t *testing.T) {
	// arrange
	store := newMemoryStore()
	f := givenFacade(t, store)

	created, err := f.CreateUserWithBooks(context.Background(), &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{FullName: "Ann", Age: 30},
		BookRequests: []*userbooks.BookRequest{{Title: "A", PageCount: 1}},
	})
	require.NoError(t, err, "error in arranging test data")

	transactionsBefore := store.transactionCount()

	// act
	eventual, eventualErr := f.GetUserWithBooks(userbooks.WithEventualConsistency(context.Background()), created.UserID)
	transactionsAfterEventual := store.transactionCount()
	strong, strongErr := f.GetUserWithBooks(context.Background(), created.UserID)

	// assert
	require.NoError(t, eventualErr)
	require.NoError(t, strongErr)
	assert.Equal(t, created, eventual)
	assert.Equal(t, created, strong)
	assert.Equal(t, transactionsBefore, transactionsAfterEventual)
	assert.Equal(t, transactionsBefore+1, store.transactionCount())
}

func Test_GetUserWithBooks_ReturnsEmptyResponse_ForMissingUser(t *testing.T) {
	// arrange
	store := newMemoryStore()
	f := givenFacade(t, store)

	// act
	response, err := f.GetUserWithBooks(context.Background(), 12345)

	// assert
	require.NoError(t, err)
	assert.Equal(t, userbooks.NoID, response.UserID)
	assert.NotNil(t, response.BookIDs)
	assert.Empty(t, response.BookIDs)
	assert.True(t, response.IsEmpty())
	assert.NotContains(t, store.recordedCalls(), "GetBooksByUserID")
}

func Test_DeleteUserWithBooks_DeletesBooksBeforeUser(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore()
	f := givenFacade(t, store)

	created, err := f.CreateUserWithBooks(ctx, &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{FullName: "Ann", Age: 30},
		BookRequests: []*userbooks.BookRequest{{Title: "A", PageCount: 1}},
	})
	require.NoError(t, err, "error in arranging test data")

	// act
	err = f.DeleteUserWithBooks(ctx, created.UserID)

	// assert
	require.NoError(t, err)

	calls := store.recordedCalls()
	assert.Equal(t, []string{"DeleteBooksByUserID", "DeleteUserByID"}, calls[len(calls)-2:])

	response, err := f.GetUserWithBooks(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, userbooks.NoID, response.UserID)
	assert.Empty(t, response.BookIDs)

	_, found := store.book(created.BookIDs[0])
	assert.False(t, found)
}

func Test_DeleteUserWithBooks_IsNotAnError_ForMissingUser(t *testing.T) {
	store := newMemoryStore()
	f := givenFacade(t, store)

	err := f.DeleteUserWithBooks(context.Background(), 777)

	assert.NoError(t, err)
	assert.Equal(t, 0, store.writeCount())
}

func Test_Facade_LogsEveryStage_WithOneOperationID(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	store := newMemoryStore()
	f := givenFacade(t, store, facade.WithLogger(slog.New(logHandler)))

	// act
	_, err := f.CreateUserWithBooks(context.Background(), &userbooks.UserBookRequest{
		UserRequest:  &userbooks.UserRequest{FullName: "Ann", Age: 30},
		BookRequests: []*userbooks.BookRequest{{Title: "A", PageCount: 1}},
	})

	// assert
	require.NoError(t, err)
	assert.True(t, logHandler.HasInfoLogWithMessage("facade operation started").WithAttr("operation_id").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("facade stage: user input").WithAttr("input").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("facade stage: user output").WithAttr("output").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("facade stage: book input").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("facade stage: book output").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("facade operation completed").
		WithStringAttr("status", facade.StatusSuccess).
		WithDurationMS().
		Assert())

	operationIDs := make(map[string]struct{})
	for _, record := range logHandler.GetRecords() {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "operation_id" {
				operationIDs[attr.Value.String()] = struct{}{}
			}

			return true
		})
	}

	assert.Len(t, operationIDs, 1)
}

func Test_Facade_LogsFailure_WithErrorKind(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	store := newMemoryStore()
	f := givenFacade(t, store, facade.WithContextualLogger(slog.New(logHandler)))

	// act
	_, err := f.CreateUserWithBooks(context.Background(), nil)

	// assert
	require.Error(t, err)
	assert.True(t, logHandler.HasErrorLogWithMessage("facade operation failed").
		WithStringAttr("error_kind", userbooks.KindPreconditionFailure.String()).
		WithStringAttr("status", facade.StatusError).
		Assert())
}

func Test_Facade_RecordsMetricsAndSpans(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	store := newMemoryStore()
	f := givenFacade(t, store, facade.WithMetrics(metrics), facade.WithTracing(tracing))

	// act
	_, err := f.GetUserWithBooks(context.Background(), 1)

	// assert
	require.NoError(t, err)
	assert.True(t, tracing.HasSpanRecordForName(facade.SpanNameOperation).
		WithStartAttribute("operation", "get_user_with_books").
		WithStatus(facade.StatusNotFound).
		WithEndAttribute("duration_ms").
		Assert())
	assert.True(t, metrics.HasDurationRecord(facade.OperationDurationMetric, map[string]string{
		"operation": "get_user_with_books",
		"status":    facade.StatusNotFound,
	}))
	assert.Equal(t, 1, metrics.CountCounterRecords(facade.OperationCallsMetric, map[string]string{
		"operation": "get_user_with_books",
	}))
}

func Test_Facade_RecordsOneMetricPairAndSpan_PerOperation(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	f := givenFacade(t, newMemoryStore(), facade.WithMetrics(metrics), facade.WithTracing(tracing))
	_, err := f.GetUserWithBooks(context.Background(), 1)
	require.NoError(t, err, "error in arranging test data")
	metrics.Reset()

	// act
	err = f.DeleteUserWithBooks(context.Background(), 1)

	// assert
	require.NoError(t, err)

	durations := metrics.GetDurationRecords()
	require.Len(t, durations, 1)
	assert.Equal(t, "delete_user_with_books", durations[0].Labels["operation"])

	counters := metrics.GetCounterRecords()
	require.Len(t, counters, 1)
	assert.Equal(t, facade.OperationCallsMetric, counters[0].Metric)

	spans := tracing.GetSpanRecords()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.True(t, span.Finished)
		assert.NotEmpty(t, span.StartAttributes["operation_id"])
	}
	assert.NotEqual(t, spans[0].StartAttributes["operation_id"], spans[1].StartAttributes["operation_id"])
}

func Test_Facade_ReportsCanceledStatus_ForCanceledContext(t *testing.T) {
	// arrange
	tracing := helper.NewTracingCollectorSpy()
	f := givenFacade(t, cancelingStore{newMemoryStore()}, facade.WithTracing(tracing))

	// act
	err := f.DeleteUserWithBooks(context.Background(), 1)

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, tracing.HasSpanRecordForName(facade.SpanNameOperation).
		WithStatus(facade.StatusCanceled).
		WithEndAttribute("error").
		Assert())
}

// cancelingStore fails every transaction the way a canceled request would.
type cancelingStore struct {
	*memoryStore
}

func (s cancelingStore) WithinTransaction(_ context.Context, _ func(ctx context.Context) error) error {
	return context.Canceled
}

func givenFacade(t *testing.T, store interface {
	userbooks.UserService
	userbooks.BookService
	userbooks.TransactionRunner
}, options ...facade.Option) facade.UserDataFacade {

	f, err := facade.NewUserDataFacade(store, store, store, options...)
	require.NoError(t, err, "error in arranging test data")

	return f
}
