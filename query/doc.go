// Package query defines the engine-neutral descriptors of the data-access
// layer (filters, projections, aggregates, bulk mutations) and compiles
// them into parameterized statements against a declared schema.
//
// A filter maps column names to either a literal (implicit equality) or an
// operator object drawn from a closed set:
//
//	query.Where{
//	    "name":  query.Ops{"$like": "al%"},
//	    "age":   query.Ops{"$gte": 18, "$lt": 65},
//	    "state": query.Ops{"$in": []any{"active", "pending"}},
//	}
//
// Column entries combine with logical AND. Unrecognized operator keys fail
// validation before any statement is built; they are never silently
// ignored. All validation happens at compile time, so no partially
// validated statement ever reaches the engine.
package query
