// Package facade orchestrates the aggregate operations on one user and the books it owns.
//
// Every operation of UserDataFacade runs inside one transaction of the configured
// userbooks.TransactionRunner. The transaction is committed when the operation succeeds and
// rolled back on any error, so a failed book write never leaves a half-written aggregate behind.
// There is no process-wide lock: concurrent operations on different users only contend on the
// rows they touch.
//
// Usage example:
//
//	f, err := facade.NewUserDataFacade(users, books, store, facade.WithContextualLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	response, err := f.CreateUserWithBooks(ctx, &userbooks.UserBookRequest{
//		UserRequest:  &userbooks.UserRequest{FullName: "Ann", Title: "reader", Age: 30},
//		BookRequests: []*userbooks.BookRequest{{Title: "A", Author: "X", PageCount: 100}},
//	})
package facade
