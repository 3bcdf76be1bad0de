// Package sqlcheck verifies composed statements against SQLite without
// running them.
//
// A Checker opens an in-memory database, creates one untyped table per
// entity using its resolved table and column identifiers, switches the
// connection to query_only, and prepares each statement. SQLite accepts
// bracket-delimited identifiers, so unknown columns and malformed clauses
// surface as *CheckError.
package sqlcheck
