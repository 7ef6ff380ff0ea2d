package datafix

import (
	"strings"

	"github.com/zeusync/dataconverter/internal/core/types"
)

const defaultNamespace = "minecraft"

// CorrectNamespace returns value as a full "namespace:path" key. Values that
// are not valid keys are returned as they are.
func CorrectNamespace(value string) string {
	ns, path := defaultNamespace, value
	if i := strings.IndexByte(value, ':'); i >= 0 {
		path = value[i+1:]
		if i >= 1 {
			ns = value[:i]
		}
	}
	if !validKeyPart(ns, false) || !validKeyPart(path, true) {
		return value
	}
	return ns + ":" + path
}

// CorrectNamespaceOrNil returns the corrected key, or "" and false when value
// is already correct.
func CorrectNamespaceOrNil(value string) (string, bool) {
	fixed := CorrectNamespace(value)
	if fixed == value {
		return "", false
	}
	return fixed, true
}

// EnforceNamespace corrects the string at path in place.
func EnforceNamespace(data types.MapType, path string) {
	if data == nil || !data.HasKeyOfType(path, types.String) {
		return
	}
	if fixed, ok := CorrectNamespaceOrNil(data.GetString(path, "")); ok {
		data.SetString(path, fixed)
	}
}

func validKeyPart(s string, path bool) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		case path && c == '/':
		default:
			return false
		}
	}
	return true
}
