package dge

import "errors"

// Validation errors returned at the boundary, before any record is built.
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPercent  = errors.New("invalid valuation percent")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrScfCapExceeded  = errors.New("SCF request exceeds cap")
	ErrInvalidScfTerm  = errors.New("invalid SCF term")
	ErrInvalidService  = errors.New("invalid ancillary service")
	ErrInvalidRecord   = errors.New("invalid record")
)

// Store errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)
