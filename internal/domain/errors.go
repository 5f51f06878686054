package domain

import "errors"

var (
	ErrStateNotFound       = errors.New("slideshow state not found")
	ErrCollectionNotFound  = errors.New("image collection not found")
	ErrInvalidConfig       = errors.New("invalid selection config")
	ErrUnsupportedBackend  = errors.New("unsupported state backend")
	ErrUnsupportedEncoding = errors.New("unsupported collection encoding")
)
