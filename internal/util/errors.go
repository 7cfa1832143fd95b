package util

import "errors"

var (
	ErrNoExtractableText   = errors.New("no extractable text in document")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrEmptyDocument       = errors.New("empty document")
	ErrDocumentTooLarge    = errors.New("document exceeds upload limit")
)
