package core

import (
	"strings"
)

// Operation represents a backend storage operation, one of Create, Read,
// Update, Delete, List. The REST layer tags request logs with it.
type Operation string

// all supported storage operations
const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationList   Operation = "list"
)

// Plural returns the plural form of the passed singular string.
//
// This is the algorithm used to create idiomatic REST routes. Words
// ending in a single "s" (such as "hours") are treated as plural-only
// nouns and pass through unchanged; a double "s" gets the regular "es"
// suffix ("address" becomes "addresses").
func Plural(singular string) string {
	if strings.HasSuffix(singular, "y") {
		return strings.TrimSuffix(singular, "y") + "ies"
	}
	if strings.HasSuffix(singular, "ss") {
		return singular + "es"
	}
	if strings.HasSuffix(singular, "s") {
		return singular
	}
	return singular + "s"
}
