package types

import "errors"

var (
	// ErrTypeMismatch is returned by strict accessors when a slot holds a
	// value of an incompatible kind. It marks a bug in the calling rule.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedCapability is returned by every short-array operation.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrParse marks a malformed embedded payload.
	ErrParse = errors.New("parse error")

	// ErrForeignValue is returned when a value of unknown Go type is stored.
	ErrForeignValue = errors.New("value cannot be stored in this tree")
)

// IsContractViolation reports whether err must escape a migration instead of
// being absorbed at a rule boundary.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrTypeMismatch) || errors.Is(err, ErrUnsupportedCapability)
}
