// Package schema maps logical entities and fields to SQL identifiers.
//
// An Entity is an explicit description of one logical record type: its
// name, an optional table override, and the fields it declares (each with
// an optional column override). Entities are built in code with NewEntity
// or Describe, or loaded from CUE and YAML mapping files with Load.
//
// Resolution rules:
//
//	entity "Person", table "PersonDetails"   → [PersonDetails]
//	field  "Firstname"                        → [Firstname]
//	field  "DOB", column "BirthDate"          → [BirthDate]
//	field  "[City]"                           → [City]   (never double-delimited)
//
// Overrides are supplied by the caller; nothing is discovered from struct
// tags. Describe only uses reflection to list the exported fields of a Go
// struct once, and a Registry caches the result per type.
package schema
