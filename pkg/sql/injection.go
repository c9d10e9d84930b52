package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes a request value flagged by libinjection.
type InjectionFinding struct {
	Field       string // request field that carried the value
	Value       string // the flagged value
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// ScreenValue runs libinjection over a single request string. The structural
// whitelist (grammar, reserved words, registry membership) is the primary
// defense; this screen exists so a value that somehow slips past it is still
// caught before any SQL is assembled.
//
// Returns nil when the value is clean.
func ScreenValue(field, value string) *InjectionFinding {
	if value == "" {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{
		Field:       field,
		Value:       value,
		Fingerprint: string(fingerprint),
	}
}

// ScreenValues checks every string carried by a query request. Returns the
// first finding, or nil if all values are clean.
func ScreenValues(fields map[string]string) *InjectionFinding {
	for field, value := range fields {
		if finding := ScreenValue(field, value); finding != nil {
			return finding
		}
	}
	return nil
}
