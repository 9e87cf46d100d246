package normalize

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errEmbeddedNotObject = errors.New("embedded JSON is not an object")

// parseEmbeddedJSON decodes a value that should hold a JSON object, either
// inline or encoded as a string. Absent values and failures yield an empty
// object. The error only reports why a present value was discarded.
func parseEmbeddedJSON(value gjson.Result) (gjson.Result, error) {
	switch {
	case value.IsObject():
		return value, nil
	case value.Type == gjson.String:
		text := strings.TrimSpace(value.Str)
		if text == "" {
			return emptyObject(), nil
		}
		if !gjson.Valid(text) {
			return emptyObject(), errors.New("embedded JSON is malformed")
		}
		parsed := gjson.Parse(text)
		if !parsed.IsObject() {
			return emptyObject(), errEmbeddedNotObject
		}
		return parsed, nil
	case value.Exists() && value.Type != gjson.Null:
		return emptyObject(), errEmbeddedNotObject
	}
	return emptyObject(), nil
}

func emptyObject() gjson.Result {
	return gjson.Parse("{}")
}
