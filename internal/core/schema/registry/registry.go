// Package registry is the arena of named record types and the dispatcher
// that walks each type's rules in version order. A registry is filled by a
// single registration sequence, frozen, and then read concurrently without
// locks.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
)

var (
	ErrUnknownType   = errors.New("unknown type")
	ErrKindMismatch  = errors.New("type is registered with another value kind")
	ErrNotFrozen     = errors.New("registry is not frozen")
	ErrFrozen        = errors.New("registry is frozen")
	ErrDuplicateType = errors.New("type already registered")
	ErrNoIDField     = errors.New("type has no id field")
)

// Kind tells how a type's values are represented.
type Kind string

const (
	KindMap   Kind = "map"
	KindID    Kind = "id"
	KindValue Kind = "value"
)

// TypeName identifies a registered type.
type TypeName = string

type dispatcher interface {
	info() TypeInfo
	freeze()
	disable()
}

// Registry maps type names to their rule tables.
type Registry struct {
	log    log.Log
	types  map[TypeName]dispatcher
	order  []TypeName
	frozen bool
}

// New returns an empty registry. Rule failures are reported to logger.
func New(logger log.Log) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		log:   logger.With(log.String("component", "registry")),
		types: make(map[TypeName]dispatcher),
	}
}

// RegisterMapType adds a map type without an id field. Registration panics
// on misuse: duplicates or calls after Freeze.
func (r *Registry) RegisterMapType(name TypeName) *MapTypeDef {
	return r.registerMap(name, "")
}

// RegisterIDType adds a map type whose id-keyed rules are selected by the
// string in field.
func (r *Registry) RegisterIDType(name TypeName, field string) *MapTypeDef {
	return r.registerMap(name, field)
}

func (r *Registry) registerMap(name TypeName, field string) *MapTypeDef {
	def := newTypeDef[types.MapType](r, name, field)
	r.add(name, def)
	return def
}

// RegisterValueType adds a type whose values are scalars or any other
// non-map value, such as command strings.
func (r *Registry) RegisterValueType(name TypeName) *ValueTypeDef {
	def := newTypeDef[any](r, name, "")
	r.add(name, def)
	return def
}

func (r *Registry) add(name TypeName, d dispatcher) {
	r.mustBeOpen()
	if _, ok := r.types[name]; ok {
		panic(fmt.Errorf("%w: %s", ErrDuplicateType, name))
	}
	r.types[name] = d
	r.order = append(r.order, name)
}

// Disable turns dispatch for a type into identity.
func (r *Registry) Disable(name TypeName) error {
	r.mustBeOpen()
	d, ok := r.types[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	d.disable()
	return nil
}

// Freeze ends registration. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	rules := 0
	for _, name := range r.order {
		d := r.types[name]
		d.freeze()
		rules += d.info().Rules
	}
	r.frozen = true
	r.log.Debug("registry frozen", log.Int("types", len(r.order)), log.Int("rules", rules))
}

func (r *Registry) Frozen() bool { return r.frozen }

func (r *Registry) mustBeOpen() {
	if r.frozen {
		panic(ErrFrozen)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name TypeName) bool {
	_, ok := r.types[name]
	return ok
}

// Info describes every type in registration order.
func (r *Registry) Info() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name].info())
	}
	return out
}

// ConvertMap advances a map value of type name from one version to another.
// A nil value or an empty range returns data unchanged. Only contract
// violations and lookup errors are returned; failing rules are logged and
// skipped.
func (r *Registry) ConvertMap(name TypeName, data types.MapType, from, to converter.Version) (types.MapType, error) {
	def, err := lookup[types.MapType](r, name)
	if err != nil {
		return data, err
	}
	return def.convert(data, from, to)
}

// ConvertValue is ConvertMap for value types.
func (r *Registry) ConvertValue(name TypeName, data any, from, to converter.Version) (any, error) {
	def, err := lookup[any](r, name)
	if err != nil {
		return data, err
	}
	return def.convert(data, from, to)
}

func lookup[T any](r *Registry, name TypeName) (*TypeDef[T], error) {
	if !r.frozen {
		return nil, ErrNotFrozen
	}
	d, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	def, ok := d.(*TypeDef[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKindMismatch, name)
	}
	return def, nil
}

// TypeInfo summarizes one registered type.
type TypeInfo struct {
	Name     string   `yaml:"name"`
	Kind     Kind     `yaml:"kind"`
	IDField  string   `yaml:"id_field,omitempty"`
	Disabled bool     `yaml:"disabled,omitempty"`
	Rules    int      `yaml:"rules"`
	Walkers  int      `yaml:"walkers"`
	IDs      []string `yaml:"ids,omitempty"`
	Versions []string `yaml:"versions,omitempty"`
}

func versionStrings(vs []converter.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func sortVersions(vs []converter.Version) []converter.Version {
	slices.SortFunc(vs, converter.Version.Compare)
	return slices.Compact(vs)
}
