package userbooks

// RecordID is a type alias for int64, representing a store-assigned identity.
type RecordID = int64

// NoID is the identity of a record that was not persisted yet.
const NoID RecordID = 0

// Person is the persisted user record.
//
// BookCount is maintained by the store and is never written by the application.
type Person struct {
	ID        RecordID `db:"id" goqu:"skipinsert,skipupdate"`
	FullName  string   `db:"full_name"`
	Title     string   `db:"title"`
	Age       int      `db:"age"`
	BookCount int      `db:"book_count" goqu:"skipinsert,skipupdate"`
}

// Book is the persisted book record. UserID references the owning Person.
type Book struct {
	ID        RecordID `db:"id" goqu:"skipinsert,skipupdate"`
	Title     string   `db:"title"`
	Author    string   `db:"author"`
	PageCount int64    `db:"page_count"`
	UserID    RecordID `db:"user_id" goqu:"skipupdate"`
}

// IsPersisted reports whether the store has assigned an identity.
func (p Person) IsPersisted() bool {
	return p.ID != NoID
}

// IsPersisted reports whether the store has assigned an identity.
func (b Book) IsPersisted() bool {
	return b.ID != NoID
}
