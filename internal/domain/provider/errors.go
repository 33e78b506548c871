package provider

import "errors"

var (
	ErrNotFound       = errors.New("provider service not found")
	ErrEmptyPatch     = errors.New("nothing to update")
	ErrUnknownService = errors.New("unknown catalog service")
)
