package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in document")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadableArchive = errors.New("could not open archive")
	ErrEmptyUpload       = errors.New("uploaded file is empty")
)
