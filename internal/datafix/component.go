package datafix

import (
	"encoding/json"

	"github.com/zeusync/dataconverter/pkg/encoding"
)

// EmptyComponent is the text component of an empty line.
var EmptyComponent = CreatePlainTextComponent("")

func CreatePlainTextComponent(text string) string {
	return stable(map[string]any{"text": text})
}

func CreateTranslatableComponent(key string) string {
	return stable(map[string]any{"translate": key})
}

// RetrieveTranslationString returns the translate key of a JSON component.
func RetrieveTranslationString(possibleJSON string) (string, bool) {
	v, err := encoding.DecodeJSON([]byte(possibleJSON))
	if err != nil {
		return "", false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	key, ok := obj["translate"].(string)
	return key, ok
}

// ConvertFromLenient turns legacy free-form sign text into a JSON component.
// JSON objects and arrays are re-encoded with sorted keys, JSON primitives and
// anything else become plain text.
func ConvertFromLenient(input string) string {
	if input == "" || input == "null" {
		return EmptyComponent
	}

	first, last := input[0], input[len(input)-1]
	if first == '"' && last == '"' || first == '{' && last == '}' || first == '[' && last == ']' {
		if v, err := encoding.DecodeJSON([]byte(input)); err == nil {
			switch p := v.(type) {
			case string:
				return CreatePlainTextComponent(p)
			case json.Number:
				return CreatePlainTextComponent(p.String())
			case bool:
				if p {
					return CreatePlainTextComponent("true")
				}
				return CreatePlainTextComponent("false")
			case nil:
				return EmptyComponent
			default:
				return stable(v)
			}
		}
	}
	return CreatePlainTextComponent(input)
}

func stable(v any) string {
	b, err := encoding.StableJSON(v)
	if err != nil {
		// only plain decoded trees reach here
		panic(err)
	}
	return string(b)
}
