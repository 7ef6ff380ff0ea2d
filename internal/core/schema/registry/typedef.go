package registry

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
)

type (
	MapTypeDef   = TypeDef[types.MapType]
	ValueTypeDef = TypeDef[any]
)

type step[T any] func(data T, from, to converter.Version) (T, error)

// TypeDef is the rule table of one registered type.
type TypeDef[T any] struct {
	reg      *Registry
	name     TypeName
	idField  string
	disabled bool

	generic   map[converter.Version][]converter.Rule[T]
	byID      map[string]map[converter.Version][]converter.Rule[T]
	structure map[converter.Version][]converter.Rule[T]

	walkers     *floorTable[T]
	walkersByID map[string]*floorTable[T]

	// versions holds every version with at least one rule, sorted by Freeze.
	versions []converter.Version
}

func newTypeDef[T any](reg *Registry, name TypeName, idField string) *TypeDef[T] {
	return &TypeDef[T]{
		reg:         reg,
		name:        name,
		idField:     idField,
		generic:     make(map[converter.Version][]converter.Rule[T]),
		byID:        make(map[string]map[converter.Version][]converter.Rule[T]),
		structure:   make(map[converter.Version][]converter.Rule[T]),
		walkers:     newFloorTable[T](),
		walkersByID: make(map[string]*floorTable[T]),
	}
}

func (d *TypeDef[T]) Name() TypeName { return d.name }

// AddConverter registers a rule run for every value at version v.
func (d *TypeDef[T]) AddConverter(v converter.Version, rule converter.Rule[T]) {
	d.reg.mustBeOpen()
	d.generic[v] = append(d.generic[v], rule)
}

// AddConverterForID registers a rule run at version v only for values whose
// id field holds id. It runs before the generic rules of the same version.
func (d *TypeDef[T]) AddConverterForID(id string, v converter.Version, rule converter.Rule[T]) {
	d.reg.mustBeOpen()
	if d.idField == "" {
		panic(fmt.Errorf("%w: %s", ErrNoIDField, d.name))
	}
	if d.byID[id] == nil {
		d.byID[id] = make(map[converter.Version][]converter.Rule[T])
	}
	d.byID[id][v] = append(d.byID[id][v], rule)
}

// AddStructureConverter registers a rule run last in its version, after the
// id and generic rules.
func (d *TypeDef[T]) AddStructureConverter(v converter.Version, rule converter.Rule[T]) {
	d.reg.mustBeOpen()
	d.structure[v] = append(d.structure[v], rule)
}

// SetWalker registers a walker valid from the beginning of time.
func (d *TypeDef[T]) SetWalker(w converter.Walker[T]) {
	d.AddWalker(converter.Version{}, w)
}

// AddWalker registers a walker used for data laid out as of v or later, up
// to the next version with walkers.
func (d *TypeDef[T]) AddWalker(v converter.Version, w converter.Walker[T]) {
	d.reg.mustBeOpen()
	d.walkers.add(v, w)
}

// AddWalkerForID registers a walker used only for values with the given id.
func (d *TypeDef[T]) AddWalkerForID(id string, v converter.Version, w converter.Walker[T]) {
	d.reg.mustBeOpen()
	if d.idField == "" {
		panic(fmt.Errorf("%w: %s", ErrNoIDField, d.name))
	}
	t := d.walkersByID[id]
	if t == nil {
		t = newFloorTable[T]()
		d.walkersByID[id] = t
	}
	t.add(v, w)
}

func (d *TypeDef[T]) disable() { d.disabled = true }

func (d *TypeDef[T]) freeze() {
	var vs []converter.Version
	vs = slices.AppendSeq(vs, maps.Keys(d.generic))
	vs = slices.AppendSeq(vs, maps.Keys(d.structure))
	for _, rules := range d.byID {
		vs = slices.AppendSeq(vs, maps.Keys(rules))
	}
	d.versions = sortVersions(vs)

	d.walkers.freeze()
	for _, t := range d.walkersByID {
		t.freeze()
	}
}

func (d *TypeDef[T]) info() TypeInfo {
	kind := KindValue
	if _, ok := any((*T)(nil)).(*types.MapType); ok {
		kind = KindMap
		if d.idField != "" {
			kind = KindID
		}
	}

	rules := 0
	for _, rs := range d.generic {
		rules += len(rs)
	}
	for _, rs := range d.structure {
		rules += len(rs)
	}
	ids := make([]string, 0, len(d.byID))
	for id, table := range d.byID {
		ids = append(ids, id)
		for _, rs := range table {
			rules += len(rs)
		}
	}
	walkers := d.walkers.count()
	for _, t := range d.walkersByID {
		walkers += t.count()
	}
	sort.Strings(ids)

	return TypeInfo{
		Name:     d.name,
		Kind:     kind,
		IDField:  d.idField,
		Disabled: d.disabled,
		Rules:    rules,
		Walkers:  walkers,
		IDs:      ids,
		Versions: versionStrings(d.versions),
	}
}

// convert runs every version bucket in (from, to]. Each bucket first walks
// children from the previous bucket up to this one using the walkers of the
// layout the value is in, then runs id rules, generic rules and structure
// rules. A last walk brings children from the final bucket to the target.
func (d *TypeDef[T]) convert(data T, from, to converter.Version) (T, error) {
	if any(data) == nil || d.disabled || from.Compare(to) >= 0 {
		return data, nil
	}

	start, found := slices.BinarySearchFunc(d.versions, from, converter.Version.Compare)
	if found {
		start++
	}

	var err error
	prev := from
	for _, v := range d.versions[start:] {
		if v.Compare(to) > 0 {
			break
		}
		if data, err = d.walk(data, prev, v, prev); err != nil {
			return data, err
		}
		if data, err = d.apply(data, v, from, to); err != nil {
			return data, err
		}
		prev = v
	}

	if prev.Less(to) {
		return d.walk(data, prev, to, to)
	}
	return data, nil
}

func (d *TypeDef[T]) apply(data T, v, from, to converter.Version) (T, error) {
	var err error
	if id := d.id(data); id != "" {
		for _, rule := range d.byID[id][v] {
			if data, err = d.run(step[T](rule), data, v, id, from, to); err != nil {
				return data, err
			}
		}
	}
	for _, rule := range d.generic[v] {
		if data, err = d.run(step[T](rule), data, v, d.id(data), from, to); err != nil {
			return data, err
		}
	}
	for _, rule := range d.structure[v] {
		if data, err = d.run(step[T](rule), data, v, d.id(data), from, to); err != nil {
			return data, err
		}
	}
	return data, nil
}

// walk advances children from one version to another with the walkers in
// force at layout.
func (d *TypeDef[T]) walk(data T, from, to, layout converter.Version) (T, error) {
	var err error
	for _, w := range d.walkers.floor(layout) {
		if data, err = d.run(step[T](w), data, to, d.id(data), from, to); err != nil {
			return data, err
		}
	}
	if id := d.id(data); id != "" {
		if t := d.walkersByID[id]; t != nil {
			for _, w := range t.floor(layout) {
				if data, err = d.run(step[T](w), data, to, id, from, to); err != nil {
					return data, err
				}
			}
		}
	}
	return data, nil
}

// run calls one rule or walker. A failing step leaves no trace on the value:
// edits it made before failing are rolled back. Contract violations are then
// returned; any other error or panic is logged and the value is carried
// forward.
func (d *TypeDef[T]) run(fn step[T], data T, v converter.Version, id string, from, to converter.Version) (T, error) {
	restore := snapshot(data)
	out, err := call(fn, data, from, to)
	if err != nil {
		restore()
		if types.IsContractViolation(err) {
			return data, err
		}
		d.reg.report(&converter.RuleFailure{Type: d.name, Version: v, ID: id, Err: err})
		return data, nil
	}
	if any(out) != nil {
		return out, nil
	}
	return data, nil
}

// snapshot copies a map value and returns a func that puts the copy back in
// place. Parents and walkers hold the same map, so it is restored rather than
// replaced.
func snapshot[T any](data T) func() {
	m, ok := any(data).(types.MapType)
	if !ok || m == nil {
		return func() {}
	}
	saved := m.Copy()
	return func() {
		m.Clear()
		for _, key := range saved.Keys() {
			_ = m.SetGeneric(key, saved.GetGeneric(key))
		}
	}
}

func call[T any](fn step[T], data T, from, to converter.Version) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", converter.ErrRulePanic, p)
		}
	}()
	return fn(data, from, to)
}

func (d *TypeDef[T]) id(data T) string {
	if d.idField == "" {
		return ""
	}
	m, ok := any(data).(types.MapType)
	if !ok {
		return ""
	}
	return m.GetString(d.idField, "")
}

func (r *Registry) report(f *converter.RuleFailure) {
	r.log.Error("rule failed",
		log.String("type", f.Type),
		log.String("version", f.Version.String()),
		log.String("id", f.ID),
		log.Error(f.Err),
	)
}

// floorTable holds walkers keyed by the version they start at.
type floorTable[T any] struct {
	fns      map[converter.Version][]converter.Walker[T]
	versions []converter.Version
}

func newFloorTable[T any]() *floorTable[T] {
	return &floorTable[T]{fns: make(map[converter.Version][]converter.Walker[T])}
}

func (f *floorTable[T]) add(v converter.Version, w converter.Walker[T]) {
	f.fns[v] = append(f.fns[v], w)
}

func (f *floorTable[T]) freeze() {
	f.versions = sortVersions(slices.Collect(maps.Keys(f.fns)))
}

// floor returns the walkers of the greatest version not after v.
func (f *floorTable[T]) floor(v converter.Version) []converter.Walker[T] {
	i, found := slices.BinarySearchFunc(f.versions, v, converter.Version.Compare)
	if found {
		return f.fns[f.versions[i]]
	}
	if i == 0 {
		return nil
	}
	return f.fns[f.versions[i-1]]
}

func (f *floorTable[T]) count() int {
	n := 0
	for _, ws := range f.fns {
		n += len(ws)
	}
	return n
}
