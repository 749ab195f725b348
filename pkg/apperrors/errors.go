package apperrors

import "errors"

var (
	ErrModelPathMissing = errors.New("semantic model path not found")
	ErrEmptyVocabulary  = errors.New("vocabulary has no entities")
	ErrEntityNoTerms    = errors.New("vocabulary entity has no terms")
	ErrInvalidBinding   = errors.New("binding violates kind/aggregation invariant")
)
