// Package userbooks provides the core types and contracts for managing users ("persons")
// and the books they own.
//
// This package defines the records, the data-transfer objects that cross the service boundary,
// the inbound requests and outbound responses of the aggregate operations, the pure mapping
// functions between them, and the service capability interfaces that the persistence
// strategies implement.
//
// Key types:
//   - Person, Book: persisted records (one person owns zero or more books)
//   - UserDTO, BookDTO: flat mutable transfer objects
//   - UserBookRequest, UserBookResponse: aggregate request/response shapes
//   - UserService, BookService: capability interfaces with two interchangeable implementations
//   - UpdateOutcome: explicit result kind of an existence-gated update
//
// Common usage pattern:
//
//	dto := userbooks.UserRequestToDTO(request.UserRequest)
//	created, err := userService.CreateUser(ctx, &dto)
//	if err != nil {
//		// handle error
//	}
//
//	updated, outcome, err := userService.UpdateUser(ctx, &created)
//	if outcome == userbooks.NotFoundEchoed {
//		// nothing was written
//	}
package userbooks
