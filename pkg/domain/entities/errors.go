package entities

import "errors"

// Domain errors. Absence of a product is an expected lookup outcome, not an
// exceptional condition; callers branch on ErrProductNotFound with errors.Is.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCatalog    = errors.New("catalog is empty")
)
