// Package walkers builds the walkers that locate nested typed values inside a
// record and hand them back to the registry. Types are referenced by name;
// the Converter resolves them on every call.
package walkers

import (
	"strings"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/types"
)

// Converter is the part of the registry walkers dispatch through.
type Converter interface {
	ConvertMap(name string, data types.MapType, from, to converter.Version) (types.MapType, error)
	ConvertValue(name string, data any, from, to converter.Version) (any, error)
}

// Path is a dot separated chain of map keys, e.g. "tag.BlockEntityTag".
// resolve returns the map holding the last key, or nil when an intermediate
// map is missing.
func resolve(data types.MapType, path string) (types.MapType, string) {
	parts := strings.Split(path, ".")
	for _, key := range parts[:len(parts)-1] {
		if data = data.GetMap(key); data == nil {
			return nil, ""
		}
	}
	return data, parts[len(parts)-1]
}

// ConvertMap advances the map at path as type typ.
func ConvertMap(c Converter, typ string, data types.MapType, path string, from, to converter.Version) error {
	parent, key := resolve(data, path)
	if parent == nil {
		return nil
	}
	child := parent.GetMap(key)
	if child == nil {
		return nil
	}
	out, err := c.ConvertMap(typ, child, from, to)
	if err != nil {
		return err
	}
	if out != nil && out != child {
		parent.SetMap(key, out)
	}
	return nil
}

// ConvertList advances every map element of the list at path as type typ.
func ConvertList(c Converter, typ string, data types.MapType, path string, from, to converter.Version) error {
	parent, key := resolve(data, path)
	if parent == nil {
		return nil
	}
	list := parent.GetList(key, types.Map)
	if list == nil {
		return nil
	}
	for i := range list.Size() {
		child, err := list.GetMap(i)
		if err != nil || child == nil {
			continue
		}
		out, err := c.ConvertMap(typ, child, from, to)
		if err != nil {
			return err
		}
		if out != nil && out != child {
			list.SetMap(i, out)
		}
	}
	return nil
}

// ConvertValue advances the slot at path as value type typ.
func ConvertValue(c Converter, typ string, data types.MapType, path string, from, to converter.Version) error {
	parent, key := resolve(data, path)
	if parent == nil {
		return nil
	}
	v := parent.GetGeneric(key)
	if v == nil {
		return nil
	}
	out, err := c.ConvertValue(typ, v, from, to)
	if err != nil {
		return err
	}
	if out != nil {
		return parent.SetGeneric(key, out)
	}
	return nil
}

// Maps walks the maps at paths as type typ.
func Maps(c Converter, typ string, paths ...string) converter.MapWalker {
	return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		for _, p := range paths {
			if err := ConvertMap(c, typ, data, p, from, to); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// Lists walks the lists of maps at paths as type typ.
func Lists(c Converter, typ string, paths ...string) converter.MapWalker {
	return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		for _, p := range paths {
			if err := ConvertList(c, typ, data, p, from, to); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// Values walks the scalar slots at paths as value type typ.
func Values(c Converter, typ string, paths ...string) converter.MapWalker {
	return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		for _, p := range paths {
			if err := ConvertValue(c, typ, data, p, from, to); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// Each applies w to every map element of the list at path.
func Each(w converter.MapWalker, path string) converter.MapWalker {
	return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		parent, key := resolve(data, path)
		if parent == nil {
			return nil, nil
		}
		list := parent.GetList(key, types.Map)
		if list == nil {
			return nil, nil
		}
		for i := range list.Size() {
			child, err := list.GetMap(i)
			if err != nil || child == nil {
				continue
			}
			out, err := w(child, from, to)
			if err != nil {
				return nil, err
			}
			if out != nil && out != child {
				list.SetMap(i, out)
			}
		}
		return nil, nil
	}
}

// Compose runs walkers in order, feeding each the previous result.
func Compose(ws ...converter.MapWalker) converter.MapWalker {
	return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		changed := false
		for _, w := range ws {
			out, err := w(data, from, to)
			if err != nil {
				return nil, err
			}
			if out != nil {
				data, changed = out, true
			}
		}
		if changed {
			return data, nil
		}
		return nil, nil
	}
}
