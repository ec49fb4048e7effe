package utils

import "strings"

// NormalizeName uppercases and collapses whitespace so names from different
// sources compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// LastName returns the uppercased surname. Catalog names look like
// "PATTIS, R."; everything else is treated as "First Last".
func LastName(name string) string {
	n := strings.TrimSpace(name)
	if i := strings.Index(n, ","); i >= 0 {
		return NormalizeName(n[:i])
	}
	fields := strings.Fields(n)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[len(fields)-1])
}
