package model

import "errors"

var (
	// ErrMalformedDocument indicates a listing page without the expected structure
	ErrMalformedDocument = errors.New("malformed_document")

	// ErrUnknownLength indicates a response without a usable Content-Length
	ErrUnknownLength = errors.New("unknown_content_length")

	// ErrSizeMismatch indicates fewer bytes were written than declared
	ErrSizeMismatch = errors.New("size_mismatch")

	// ErrUnexpectedStatus indicates a non-2xx HTTP response
	ErrUnexpectedStatus = errors.New("unexpected_status")

	// ErrEmptyURL indicates a download was requested without a URL
	ErrEmptyURL = errors.New("empty_url")
)
