// Package sql contains the query-building core: identifier whitelisting, a
// libinjection screen for request values, and the parameterized SELECT
// builder for the reporting backend's MySQL dialect.
package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

// MaxIdentifierLength caps table, column, and alias names.
const MaxIdentifierLength = 100

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedWords are SQL keywords that may never be used as identifiers, even
// when they satisfy the grammar. Checked case-insensitively.
var reservedWords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {},
	"CREATE": {}, "ALTER": {}, "TABLE": {}, "DATABASE": {}, "INDEX": {},
	"VIEW": {}, "PROCEDURE": {}, "FUNCTION": {}, "TRIGGER": {}, "SCHEMA": {},
	"GRANT": {}, "REVOKE": {},
}

// ValidateIdentifier checks that name is a safe SQL identifier: it must match
// ^[A-Za-z_][A-Za-z0-9_]*$, be at most MaxIdentifierLength characters, and
// not be a reserved keyword. This is the first layer of the whitelist; live
// schema membership is the second.
func ValidateIdentifier(name string) error {
	if len(name) > MaxIdentifierLength || !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, name)
	}
	if _, ok := reservedWords[strings.ToUpper(name)]; ok {
		return fmt.Errorf("%w: %q", apperrors.ErrReservedWord, name)
	}
	return nil
}

// QuoteIdentifier wraps an already-validated identifier in backticks.
// Quoting is defense in depth, not a substitute for ValidateIdentifier.
func QuoteIdentifier(name string) string {
	return "`" + name + "`"
}
