package userbooks

// UserDTO is the flat transfer object for a user that crosses the service boundary.
type UserDTO struct {
	ID        RecordID `json:"id"`
	FullName  string   `json:"fullName"`
	Title     string   `json:"title"`
	Age       int      `json:"age"`
	BookCount int      `json:"bookCount"`
}

// BookDTO is the flat transfer object for a book that crosses the service boundary.
type BookDTO struct {
	ID        RecordID `json:"id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	PageCount int64    `json:"pageCount"`
	UserID    RecordID `json:"userId"`
}
