package sqlite

import (
	"database/sql/driver"
	"strings"

	msqlite "modernc.org/sqlite"
)

// LowerFunction folds text to lower case using Unicode rules. The built-in
// LOWER only folds ASCII letters.
const LowerFunction = "unicode_lower"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(LowerFunction, 1, unicodeLower)
}

func unicodeLower(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
