package query

// Where is a filter descriptor: a mapping from column name to either a
// literal value (implicit equality) or an Ops object. Multiple entries
// combine with logical AND.
type Where map[string]any

// Ops is an operator object applied to one column. Keys are drawn from
// the closed operator set ($eq, $ne, $gt, $gte, $lt, $lte, $in, $nin,
// $like, $between, $isNull); anything else fails validation.
type Ops map[string]any

// Order is one ORDER BY term.
type Order struct {
	// Column to order by. Must exist in the table schema.
	Column string
	// Desc orders descending instead of ascending.
	Desc bool
}

// Options describes a SELECT: filter, projection, ordering and pagination.
// Without an explicit OrderBy, row order is engine-native scan order and
// is not stable across calls.
type Options struct {
	// Where filters the selected rows.
	Where Where
	// Columns is the projection. Empty selects every declared column in
	// declared order.
	Columns []string
	// OrderBy sorts the result.
	OrderBy []Order
	// Limit bounds the number of returned rows. Nil means unbounded;
	// negative values fail validation.
	Limit *int
	// Offset skips rows before returning. Nil means zero.
	Offset *int
}

// An AggregateFunc is one of the supported aggregate functions.
type AggregateFunc string

// Aggregate functions.
const (
	Count AggregateFunc = "COUNT"
	Sum   AggregateFunc = "SUM"
	Avg   AggregateFunc = "AVG"
	Min   AggregateFunc = "MIN"
	Max   AggregateFunc = "MAX"
)

// Aggregate describes an aggregate query. Sum, Avg, Min and Max require a
// target column; Count defaults to counting rows.
type Aggregate struct {
	// Fn is the aggregate function.
	Fn AggregateFunc
	// Column the function aggregates over. Optional for Count.
	Column string
	// GroupBy columns. Each appears in the result alongside the
	// aggregate value.
	GroupBy []string
	// Columns is an optional projection the GroupBy set must be a
	// subset of.
	Columns []string
	// Where filters the rows before aggregation.
	Where Where
}

// BulkUpdate describes a scoped multi-row update. An absent Where fails
// validation unless AllowUnscoped is set: mutating every row must be an
// explicit opt-in, never the default.
type BulkUpdate struct {
	// Where scopes the update.
	Where Where
	// Set maps columns to their new values. Assigning to an
	// autoincrement column fails validation.
	Set map[string]any
	// AllowUnscoped permits an update without a Where clause.
	AllowUnscoped bool
}

// Delete describes a scoped multi-row delete, with the same unscoped
// opt-in rule as BulkUpdate.
type Delete struct {
	// Where scopes the delete.
	Where Where
	// AllowUnscoped permits a delete without a Where clause.
	AllowUnscoped bool
}
