package userbooks

// UserRequestToDTO maps an inbound user request to a transfer object.
func UserRequestToDTO(request UserRequest) UserDTO {
	return UserDTO{
		ID:       request.ID,
		FullName: request.FullName,
		Title:    request.Title,
		Age:      request.Age,
	}
}

// BookRequestToDTO maps an inbound book request to a transfer object without an owner.
func BookRequestToDTO(request BookRequest) BookDTO {
	return BookDTO{
		ID:        request.ID,
		Title:     request.Title,
		Author:    request.Author,
		PageCount: request.PageCount,
	}
}

// UserDTOToPerson maps a transfer object to a record. BookCount is owned by the store and not copied.
func UserDTOToPerson(dto UserDTO) Person {
	return Person{
		ID:       dto.ID,
		FullName: dto.FullName,
		Title:    dto.Title,
		Age:      dto.Age,
	}
}

// PersonToUserDTO maps a record to a transfer object.
func PersonToUserDTO(person Person) UserDTO {
	return UserDTO{
		ID:        person.ID,
		FullName:  person.FullName,
		Title:     person.Title,
		Age:       person.Age,
		BookCount: person.BookCount,
	}
}

// BookDTOToBook maps a transfer object to a record.
func BookDTOToBook(dto BookDTO) Book {
	return Book{
		ID:        dto.ID,
		Title:     dto.Title,
		Author:    dto.Author,
		PageCount: dto.PageCount,
		UserID:    dto.UserID,
	}
}

// BookToBookDTO maps a record to a transfer object.
func BookToBookDTO(book Book) BookDTO {
	return BookDTO{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		PageCount: book.PageCount,
		UserID:    book.UserID,
	}
}

// BookIDsOf returns the identities of the given books in order.
func BookIDsOf(books []BookDTO) []RecordID {
	ids := make([]RecordID, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID)
	}

	return ids
}
