package employee

import "github.com/pkg/errors"

var (
	ErrNotFound         = errors.New("employee not found")
	ErrMalformedPayload = errors.New("malformed employee payload")
)
