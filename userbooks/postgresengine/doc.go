// Package postgresengine provides the PostgreSQL implementations of the userbooks services.
//
// The Store owns the database connection (pgx, sql.DB or sqlx adapters), the table names,
// the observability collectors and the transaction boundary. Two persistence strategies are
// built on top of it, both implementing userbooks.UserService and userbooks.BookService with
// the same behavioral contract:
//
//   - Repository strategy (RepositoryUserService, RepositoryBookService): statements are derived
//     from the record's struct tags by the goqu query builder; updates read the row with
//     SELECT ... FOR UPDATE before writing it.
//   - Template strategy (TemplateUserService, TemplateBookService): hand-written parameterized SQL,
//     generated keys are extracted from RETURNING clauses and rows are mapped by hand.
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db, postgresengine.WithLogger(logger))
//	_ = store.EnsureSchema(ctx)
//
//	users := postgresengine.NewRepositoryUserService(store)
//	books := postgresengine.NewRepositoryBookService(store)
//
//	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
//		user, err := users.CreateUser(ctx, &userbooks.UserDTO{FullName: "Ann", Title: "reader", Age: 30})
//		if err != nil {
//			return err
//		}
//		_, err = books.CreateBook(ctx, &userbooks.BookDTO{Title: "A", Author: "X", PageCount: 100, UserID: user.ID})
//		return err
//	})
package postgresengine
