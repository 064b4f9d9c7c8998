package main

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

var errDecodingRequestFailed = errors.New("decoding request failed")

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeRequest reads one UserBookRequest document.
// A document without a user request fails with userbooks.ErrPreconditionFailed.
func decodeRequest(r io.Reader) (*userbooks.UserBookRequest, error) {
	var request userbooks.UserBookRequest

	if err := codec.NewDecoder(r).Decode(&request); err != nil {
		return nil, errors.Join(errDecodingRequestFailed, err)
	}

	if request.UserRequest == nil {
		return nil, errors.Join(userbooks.ErrPreconditionFailed, errors.New("userRequest is missing"))
	}

	return &request, nil
}

func encodeResponse(w io.Writer, response any) error {
	data, err := codec.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}
