// Package predicate builds the boolean clause of a WHERE statement from
// typed comparison and pattern operations on entity fields.
//
// BUILD SESSIONS:
//
// A Builder is one build session. Callers create a fresh Builder with New,
// chain operations, and hand it to querysql.Compose. A Builder must not be
// shared between goroutines or reused for an unrelated predicate.
//
//	b := predicate.New(person).
//	    StartsWith("Firstname", "P").
//	    And().
//	    EndsWith("Lastname", "N")
//
// FRAGMENTS:
//
// Every operation appends one self-contained fragment. Fragments are joined
// by single spaces:
//
//	EqualsTo        (col = lit)
//	NotEqualsTo     (col <> lit)
//	GreaterThan     (col > lit)          and >=, <, <=
//	In              (col IN (a, b))
//	IsNull          (col IS NULL )
//	IsNotNull       (col IS NOT NULL )
//	Between         (col BETWEEN lo AND hi)
//	StartsWith      (LTRIM(RTRIM(LOWER(col))) LIKE 'p%' )
//	EndsWith        (LTRIM(RTRIM(LOWER(col))) LIKE '%p' )
//	Contains        (LTRIM(RTRIM(LOWER(col))) LIKE '%p%' )
//	And, Or, Not    AND, OR, NOT
//	GroupConditions ((inner clause))
//
// GROUPING:
//
// GroupConditions runs the caller's function against a child Builder that
// shares the entity and options but owns its own buffer. The child's
// validated clause is embedded in parentheses; the function's return value
// is ignored.
//
// ERRORS:
//
// The first error raised by an operation is kept and every later operation
// becomes a no-op. Clause (and querysql.Compose) return it. A clause that
// ends in AND, OR or NOT fails with *DanglingOperatorError.
//
// PARAMETERS:
//
// Literals are embedded in the text unescaped. WithPlaceholders switches a
// Builder to emit BindMarker for each value and record the value in Args;
// querysql rewrites the markers to the chosen placeholder style.
package predicate
