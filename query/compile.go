package query

import (
	"fmt"
	"slices"
	"sort"

	"github.com/syssam/flint/dialect/sql"
	"github.com/syssam/flint/schema"
)

// CompileSelect compiles a SELECT descriptor against the table schema.
// Every referenced column must exist; all validation happens here, before
// the statement can reach an engine.
func CompileSelect(t *schema.Table, opts Options) (*sql.Selector, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = t.ColumnNames()
	} else {
		for _, column := range columns {
			if _, ok := t.Column(column); !ok {
				return nil, NewUnknownColumnError(t.Name, column)
			}
		}
	}
	selector := sql.Select(columns...).From(sql.Table(t.Name))
	p, err := WherePredicate(t, opts.Where)
	if err != nil {
		return nil, err
	}
	selector.Where(p)
	for _, o := range opts.OrderBy {
		if _, ok := t.Column(o.Column); !ok {
			return nil, NewUnknownColumnError(t.Name, o.Column)
		}
		if o.Desc {
			selector.OrderBy(sql.Desc(o.Column))
		} else {
			selector.OrderBy(sql.Asc(o.Column))
		}
	}
	if err := paginate(selector, opts.Limit, opts.Offset); err != nil {
		return nil, err
	}
	return selector, nil
}

// CompileAggregate compiles an aggregate descriptor. The aggregate value
// is aliased with the lowercase function name ("count", "sum", ...), and
// group-by columns are projected alongside it.
func CompileAggregate(t *schema.Table, agg Aggregate) (*sql.Selector, error) {
	var expr string
	switch agg.Fn {
	case Count:
		column := agg.Column
		if column == "" {
			column = "*"
		} else if _, ok := t.Column(column); !ok {
			return nil, NewUnknownColumnError(t.Name, column)
		}
		expr = sql.Count(column)
	case Sum, Avg, Min, Max:
		if agg.Column == "" {
			return nil, NewValidationError("", "", fmt.Sprintf("%s requires a target column", agg.Fn))
		}
		if _, ok := t.Column(agg.Column); !ok {
			return nil, NewUnknownColumnError(t.Name, agg.Column)
		}
		switch agg.Fn {
		case Sum:
			expr = sql.Sum(agg.Column)
		case Avg:
			expr = sql.Avg(agg.Column)
		case Min:
			expr = sql.Min(agg.Column)
		default:
			expr = sql.Max(agg.Column)
		}
	default:
		return nil, NewValidationError("", "", fmt.Sprintf("unknown aggregate function %q", agg.Fn))
	}
	for _, column := range agg.Columns {
		if _, ok := t.Column(column); !ok {
			return nil, NewUnknownColumnError(t.Name, column)
		}
	}
	for _, column := range agg.GroupBy {
		if _, ok := t.Column(column); !ok {
			return nil, NewUnknownColumnError(t.Name, column)
		}
		if len(agg.Columns) > 0 && !slices.Contains(agg.Columns, column) {
			return nil, NewValidationError(column, "", "group-by column is not part of the projection")
		}
	}
	projection := []string{sql.As(expr, alias(agg.Fn))}
	projection = append(projection, agg.GroupBy...)
	selector := sql.Select(projection...).From(sql.Table(t.Name))
	p, err := WherePredicate(t, agg.Where)
	if err != nil {
		return nil, err
	}
	selector.Where(p)
	selector.GroupBy(agg.GroupBy...)
	return selector, nil
}

// alias returns the result column name of an aggregate function.
func alias(fn AggregateFunc) string {
	switch fn {
	case Count:
		return "count"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Min:
		return "min"
	default:
		return "max"
	}
}

// CompileInsert compiles an insert descriptor. Required columns (not null,
// no default) must be present; defaults fill absent optional columns; an
// unset autoincrement column is omitted entirely so the engine assigns it.
// The returned map is the application-form row the statement stores,
// without the engine-assigned key.
func CompileInsert(t *schema.Table, values map[string]any) (*sql.InsertBuilder, map[string]any, error) {
	for column := range values {
		if _, ok := t.Column(column); !ok {
			return nil, nil, NewUnknownColumnError(t.Name, column)
		}
	}
	insert := sql.Insert(t.Name)
	stored := make(map[string]any, len(t.Columns))
	var columns []string
	var row []any
	for i := range t.Columns {
		c := &t.Columns[i]
		v, given := values[c.Name]
		switch {
		case !given && c.AutoIncrement:
			continue
		case !given && c.HasDefault():
			v = c.Default
		case !given && c.NotNull:
			return nil, nil, NewValidationError(c.Name, "", "required column is missing")
		case !given:
			stored[c.Name] = nil
			continue
		}
		encoded, err := schema.EncodeValue(c.Type, v)
		if err != nil {
			return nil, nil, NewValidationError(c.Name, "", err.Error())
		}
		columns = append(columns, c.Name)
		row = append(row, encoded)
		stored[c.Name] = v
	}
	if len(columns) == 0 {
		insert.Default()
	} else {
		insert.Columns(columns...).Values(row...)
	}
	return insert, stored, nil
}

// CompileUpdate compiles a bulk-update descriptor. An absent Where fails
// validation unless explicitly opted out, and the autoincrement column can
// never be assigned.
func CompileUpdate(t *schema.Table, u BulkUpdate) (*sql.UpdateBuilder, error) {
	if len(u.Where) == 0 && !u.AllowUnscoped {
		return nil, NewValidationError("", "", "bulk update without a where clause requires AllowUnscoped")
	}
	if len(u.Set) == 0 {
		return nil, NewValidationError("", "", "bulk update has no assignments")
	}
	columns := make([]string, 0, len(u.Set))
	for column := range u.Set {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	update := sql.Update(t.Name)
	for _, column := range columns {
		c, ok := t.Column(column)
		if !ok {
			return nil, NewUnknownColumnError(t.Name, column)
		}
		if c.AutoIncrement {
			return nil, NewValidationError(column, "", "cannot assign to an autoincrement column")
		}
		encoded, err := schema.EncodeValue(c.Type, u.Set[column])
		if err != nil {
			return nil, NewValidationError(column, "", err.Error())
		}
		update.Set(column, encoded)
	}
	p, err := WherePredicate(t, u.Where)
	if err != nil {
		return nil, err
	}
	update.Where(p)
	return update, nil
}

// CompileDelete compiles a bulk-delete descriptor with the same unscoped
// opt-in rule as CompileUpdate.
func CompileDelete(t *schema.Table, d Delete) (*sql.DeleteBuilder, error) {
	if len(d.Where) == 0 && !d.AllowUnscoped {
		return nil, NewValidationError("", "", "delete without a where clause requires AllowUnscoped")
	}
	del := sql.Delete(t.Name)
	p, err := WherePredicate(t, d.Where)
	if err != nil {
		return nil, err
	}
	del.Where(p)
	return del, nil
}

func paginate(s *sql.Selector, limit, offset *int) error {
	if limit != nil {
		if *limit < 0 {
			return NewValidationError("", "", "limit must be non-negative")
		}
		s.Limit(*limit)
	}
	if offset != nil {
		if *offset < 0 {
			return NewValidationError("", "", "offset must be non-negative")
		}
		s.Offset(*offset)
	}
	return nil
}
