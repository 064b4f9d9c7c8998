package userbooks

// UserRequest is the inbound shape of a user. ID is only relevant for updates.
type UserRequest struct {
	ID       RecordID `json:"id"`
	FullName string   `json:"fullName"`
	Title    string   `json:"title"`
	Age      int      `json:"age"`
}

// BookRequest is the inbound shape of a book. ID is only relevant for updates.
type BookRequest struct {
	ID        RecordID `json:"id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	PageCount int64    `json:"pageCount"`
}

// UserBookRequest is the aggregate request: one user and an ordered list of book requests.
// Nil entries in BookRequests are dropped, not rejected.
type UserBookRequest struct {
	UserRequest  *UserRequest   `json:"userRequest"`
	BookRequests []*BookRequest `json:"bookRequests"`
}

// UserBookResponse is the aggregate response: the user identity and the ordered book identities.
type UserBookResponse struct {
	UserID  RecordID   `json:"userId"`
	BookIDs []RecordID `json:"booksIdList"`
}

// IsEmpty reports whether the response describes an absent user.
func (r UserBookResponse) IsEmpty() bool {
	return r.UserID == NoID && len(r.BookIDs) == 0
}

// UserBookUpdateResponse extends UserBookResponse with the outcome of each existence-gated update.
// BookOutcomes has the same length and order as BookIDs.
type UserBookUpdateResponse struct {
	UserBookResponse
	UserOutcome  UpdateOutcome   `json:"userOutcome"`
	BookOutcomes []UpdateOutcome `json:"bookOutcomes"`
}

// NonNilBookRequests returns the book requests without nil entries, preserving the input order.
func (r UserBookRequest) NonNilBookRequests() []BookRequest {
	requests := make([]BookRequest, 0, len(r.BookRequests))

	for _, bookRequest := range r.BookRequests {
		if bookRequest == nil {
			continue
		}

		requests = append(requests, *bookRequest)
	}

	return requests
}
