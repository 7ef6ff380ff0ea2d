package converter

import (
	"errors"
	"fmt"

	"github.com/zeusync/dataconverter/internal/core/types"
)

// Rule transforms data registered at one version. Returning the zero value
// means data was changed in place.
type Rule[T any] func(data T, from, to Version) (T, error)

// Walker finds nested typed values inside data and advances them from one
// version to another through the registry. Like a rule, it may replace data.
type Walker[T any] func(data T, from, to Version) (T, error)

type (
	MapRule     = Rule[types.MapType]
	ValueRule   = Rule[any]
	MapWalker   = Walker[types.MapType]
	ValueWalker = Walker[any]
)

// ErrRulePanic marks a rule that panicked instead of returning an error.
var ErrRulePanic = errors.New("rule panicked")

// RuleFailure is a contained failure of one rule or walker step.
type RuleFailure struct {
	Type    string
	Version Version
	ID      string
	Err     error
}

func (f *RuleFailure) Error() string {
	if f.ID != "" {
		return fmt.Sprintf("rule for %s[%s] at %s: %v", f.Type, f.ID, f.Version, f.Err)
	}
	return fmt.Sprintf("rule for %s at %s: %v", f.Type, f.Version, f.Err)
}

func (f *RuleFailure) Unwrap() error { return f.Err }
