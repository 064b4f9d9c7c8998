package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine/internal/adapters"
)

const (
	defaultPersonTableName       = "person"
	defaultBookTableName         = "book"
	integrityConstraintClass     = "23"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database statement execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgBuildQueryFailed       = "failed to build query"
	logMsgBeginTxFailed          = "failed to begin transaction"
	logMsgCommitTxFailed         = "failed to commit transaction"
	logMsgRollbackTxFailed       = "failed to roll back transaction"
	logMsgConstraintViolation    = "integrity constraint violated"
	logMsgMissingGeneratedKey    = "statement returned no generated key"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "store operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrAction                = "action"
	logAttrDurationMS            = "duration_ms"
	logAttrRowsAffected          = "rows_affected"
	logAttrRecordID              = "record_id"
	logAttrOutcome               = "outcome"
	logAttrRecord                = "record"
	logAttrStrategy              = "strategy"
	strategyRepository           = "repository"
	strategyTemplate             = "template"
	errorTypeQuery               = "query_failed"
	errorTypeExec                = "exec_failed"
	errorTypeScan                = "scan_failed"
	errorTypeConstraint          = "constraint_violation"
	errorTypeRowsAffected        = "rows_affected_failed"
	errorTypeBeginTx             = "begin_tx_failed"
	errorTypeCommitTx            = "commit_tx_failed"
	metricStatementDuration      = "userbooks_statement_duration_seconds"
	metricDatabaseErrors         = "userbooks_database_errors_total"
	metricTransactionsRolledBack = "userbooks_transactions_rolled_back_total"
	metricTransactionsCommitted  = "userbooks_transactions_committed_total"
	metricLabelAction            = "action"
	metricLabelStatus            = "status"
	metricLabelErrorType         = "error_type"
	statusSuccess                = "success"
	statusError                  = "error"
	actionTransaction            = "transaction"
)

// txContextKey is the private context key of the running transaction.
type txContextKey struct{}

// Store represents the PostgreSQL storage shared by both persistence strategies.
// It owns the database adapter, the table names, the observability collectors and the transaction boundary.
type Store struct {
	db               adapters.DBAdapter
	personTableName  string
	bookTableName    string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, userbooks.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolWithReplica creates a new Store using a primary pgx Pool and a replica pgx Pool.
// Reads outside a transaction go to the replica when the context carries userbooks.EventualConsistency.
func NewStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, userbooks.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, userbooks.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBWithReplica creates a new Store using a primary sql.DB and a replica sql.DB.
func NewStoreFromSQLDBWithReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, userbooks.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, userbooks.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:              db,
		personTableName: defaultPersonTableName,
		bookTableName:   defaultBookTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// PersonTableName returns the configured person table name.
func (s *Store) PersonTableName() string {
	return s.personTableName
}

// BookTableName returns the configured book table name.
func (s *Store) BookTableName() string {
	return s.bookTableName
}

// WithinTransaction runs fn inside one database transaction.
//
// The transaction is committed when fn returns nil and rolled back when fn returns an error or panics.
// Calls nested in a running transaction join it; only the outermost call commits or rolls back.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, running := ctx.Value(txContextKey{}).(adapters.DBTx); running {
		return fn(ctx)
	}

	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		s.logErrorContext(ctx, logMsgBeginTxFailed, beginErr)
		s.recordErrorMetricsContext(ctx, actionTransaction, errorTypeBeginTx)

		return errors.Join(userbooks.ErrBeginTransactionFailed, beginErr)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			s.rollback(ctx, tx)
			panic(recovered)
		}

		if err != nil {
			s.rollback(ctx, tx)
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			s.logErrorContext(ctx, logMsgCommitTxFailed, commitErr)
			s.recordErrorMetricsContext(ctx, actionTransaction, errorTypeCommitTx)
			err = errors.Join(userbooks.ErrCommitTransactionFailed, s.classifyDBError(commitErr))

			return
		}

		s.incrementCounterContext(ctx, metricTransactionsCommitted, actionTransaction)
	}()

	return fn(context.WithValue(ctx, txContextKey{}, tx))
}

// rollback rolls the transaction back and logs failures, which are not propagated.
func (s *Store) rollback(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
		s.logWarnContext(ctx, logMsgRollbackTxFailed, rollbackErr)
	}

	s.incrementCounterContext(ctx, metricTransactionsRolledBack, actionTransaction)
}

// executor returns the running transaction, or the connection when no transaction is running.
func (s *Store) executor(ctx context.Context) adapters.Executor {
	if tx, ok := ctx.Value(txContextKey{}).(adapters.DBTx); ok {
		return tx
	}

	return s.db
}

// queryRows executes the query and hands every row to scanRow.
// Errors raised while iterating are classified the same way as errors raised by the query itself.
func (s *Store) queryRows(
	ctx context.Context,
	action string,
	sqlQuery string,
	args []any,
	scanRow func(rows adapters.DBRows) error,
) error {

	start := time.Now()
	rows, queryErr := s.executor(ctx).Query(ctx, sqlQuery, args...)
	if queryErr != nil {
		return s.queryFailed(ctx, action, sqlQuery, queryErr, time.Since(start))
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scanRow(rows); scanErr != nil {
			s.logErrorContext(ctx, logMsgScanRowFailed, scanErr, logAttrAction, action)
			s.recordErrorMetricsContext(ctx, action, errorTypeScan)

			return errors.Join(userbooks.ErrScanningDBRowFailed, scanErr)
		}
	}

	if iterErr := rows.Err(); iterErr != nil {
		return s.queryFailed(ctx, action, sqlQuery, iterErr, time.Since(start))
	}

	duration := time.Since(start)
	s.logQueryWithDurationContext(ctx, sqlQuery, action, duration)
	s.recordDurationMetricsContext(ctx, action, statusSuccess, duration)

	return nil
}

// queryFailed logs, records and classifies a failed query.
func (s *Store) queryFailed(ctx context.Context, action, sqlQuery string, err error, duration time.Duration) error {
	s.logQueryWithDurationContext(ctx, sqlQuery, action, duration)
	s.recordDurationMetricsContext(ctx, action, statusError, duration)

	if isIntegrityConstraintViolation(err) {
		s.logErrorContext(ctx, logMsgConstraintViolation, err, logAttrAction, action)
		s.recordErrorMetricsContext(ctx, action, errorTypeConstraint)

		return errors.Join(userbooks.ErrConstraintViolation, err)
	}

	s.logErrorContext(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
	s.recordErrorMetricsContext(ctx, action, errorTypeQuery)

	return errors.Join(userbooks.ErrQueryingFailed, err)
}

// queryGeneratedKey executes an INSERT ... RETURNING id statement and returns the generated identity.
func (s *Store) queryGeneratedKey(
	ctx context.Context,
	action string,
	sqlQuery string,
	args ...any,
) (userbooks.RecordID, error) {

	id := userbooks.NoID

	err := s.queryRows(ctx, action, sqlQuery, args, func(rows adapters.DBRows) error {
		var mapErr error
		id, mapErr = mapIDRow(rows)

		return mapErr
	})
	if err != nil {
		return userbooks.NoID, err
	}

	if id == userbooks.NoID {
		s.logErrorContext(ctx, logMsgMissingGeneratedKey, userbooks.ErrMissingGeneratedKey, logAttrAction, action)
		return userbooks.NoID, userbooks.ErrMissingGeneratedKey
	}

	return id, nil
}

// exec executes a statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, action string, sqlQuery string, args ...any) (int64, error) {
	start := time.Now()
	result, execErr := s.executor(ctx).Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDurationContext(ctx, sqlQuery, action, duration)

	if execErr != nil {
		s.recordDurationMetricsContext(ctx, action, statusError, duration)

		if isIntegrityConstraintViolation(execErr) {
			s.logErrorContext(ctx, logMsgConstraintViolation, execErr, logAttrAction, action)
			s.recordErrorMetricsContext(ctx, action, errorTypeConstraint)

			return 0, errors.Join(userbooks.ErrConstraintViolation, execErr)
		}

		s.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		s.recordErrorMetricsContext(ctx, action, errorTypeExec)

		return 0, errors.Join(userbooks.ErrExecutingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logErrorContext(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		s.recordErrorMetricsContext(ctx, action, errorTypeRowsAffected)

		return 0, errors.Join(userbooks.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	s.recordDurationMetricsContext(ctx, action, statusSuccess, duration)

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarnContext(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// buildFailed logs a statement that could not be built and wraps the cause.
func (s *Store) buildFailed(ctx context.Context, action string, err error) error {
	s.logErrorContext(ctx, logMsgBuildQueryFailed, err, logAttrAction, action)

	return errors.Join(userbooks.ErrBuildingQueryFailed, fmt.Errorf("%s: %w", action, err))
}

// classifyDBError marks integrity constraint violations; other errors are returned unchanged.
func (s *Store) classifyDBError(err error) error {
	if isIntegrityConstraintViolation(err) {
		return errors.Join(userbooks.ErrConstraintViolation, err)
	}

	return err
}

// isIntegrityConstraintViolation reports whether err is a PostgreSQL class 23 error,
// raised either through pgx or through lib/pq.
func isIntegrityConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == integrityConstraintClass
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code.Class()) == integrityConstraintClass
	}

	return false
}
