// Package scenario replays predicate build sessions described in YAML.
//
// # Scenario Format
//
//	name: person_by_name
//	description: "Prefix and suffix match on a person"
//	entity: Person
//	columns: [City, Firstname]
//	where:
//	  - op: starts_with
//	    field: Firstname
//	    value: P
//	  - op: and
//	  - op: ends_with
//	    field: Lastname
//	    value: N
//
// Optional keys: only_where, date_format, placeholders (question, dollar,
// colon or atp). Steps of op "group" carry nested steps. A step's type
// (date, char or uuid) reinterprets textual operands, since YAML has no
// character or UUID scalars and dates decode as plain text.
//
// # Golden Files
//
// RunWithGolden compares the composed statement with
// testdata/golden/<name>.golden. Bound values follow the SQL, one per line.
package scenario
