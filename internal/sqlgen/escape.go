package sqlgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EscapeString renders s as a single-quoted SQL string literal. Embedded
// single quotes and backslashes are doubled and NUL bytes stripped, so the
// result can never terminate the literal early.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `''`)
	return "'" + s + "'"
}

// QuoteIdent wraps a table or column name in backticks. Backticks inside the
// identifier are doubled per MySQL quoting rules.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Literal renders a Go value as SQL value syntax.
//
// nil renders as NULL; booleans and numbers as bare literals; strings through
// EscapeString. Maps and slices render through the JSON constructor functions
// (JSON_OBJECT / JSON_ARRAY) with every key and value passed as an escaped
// string literal; non-string members are JSON-stringified first. Nested JSON
// is therefore stored as escaped string literals inside the constructor call,
// not as native JSON. That matches the data already on disk and must be
// preserved for round-trip compatibility.
func Literal(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return EscapeString(val)
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = EscapeString(s)
		}
		return "JSON_ARRAY(" + strings.Join(parts, ", ") + ")"
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = jsonMember(item)
		}
		return "JSON_ARRAY(" + strings.Join(parts, ", ") + ")"
	case map[string]interface{}:
		// Go maps are unordered; keys are sorted so identical input always
		// renders the identical statement.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(val)*2)
		for _, k := range keys {
			parts = append(parts, EscapeString(k), jsonMember(val[k]))
		}
		return "JSON_OBJECT(" + strings.Join(parts, ", ") + ")"
	default:
		// Last resort for unrecognized types (e.g. fmt.Stringer).
		return EscapeString(fmt.Sprintf("%v", val))
	}
}

// jsonMember renders one member of a JSON constructor call. Strings pass
// through escaping directly; everything else is stringified to JSON text and
// embedded as an escaped string literal.
func jsonMember(v interface{}) string {
	if s, ok := v.(string); ok {
		return EscapeString(s)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return EscapeString(fmt.Sprintf("%v", v))
	}
	return EscapeString(string(raw))
}
