package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Querier wraps the Query method. It is implemented by every statement
// builder and by Predicate.
type Querier interface {
	// Query returns the statement text and its ordered bound values.
	Query() (string, []any)
}

// Builder is the base for all statement builders. It accumulates SQL text
// and bound arguments, and collects identifier errors instead of panicking.
type Builder struct {
	sb   strings.Builder
	args []any
	errs []error
}

// Quote returns the quoted form of the given identifier.
func (b *Builder) Quote(ident string) string {
	return "`" + ident + "`"
}

// Ident writes the given identifier, quoting it unless it is the star
// projection, an already-built expression, or a qualified name.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "*":
		b.WriteString(s)
	case strings.ContainsAny(s, "(` "):
		// Expressions built by helpers like Count or Asc pass through.
		b.WriteString(s)
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		for i, p := range parts {
			if i > 0 {
				b.WriteByte('.')
			}
			b.Ident(p)
		}
	default:
		if !ValidIdentifier(s) {
			b.AddError(fmt.Errorf("invalid identifier %q", s))
			return b
		}
		b.WriteString(b.Quote(s))
	}
	return b
}

// IdentComma writes the given identifiers separated by commas.
func (b *Builder) IdentComma(ss ...string) *Builder {
	for i, s := range ss {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s)
	}
	return b
}

// Arg binds the given value and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	b.sb.WriteByte('?')
	return b
}

// Args binds the given values as a comma-separated placeholder list.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.Comma()
		}
		b.Arg(v)
	}
	return b
}

// WriteString appends s to the statement text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the statement text.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Comma writes a comma separator.
func (b *Builder) Comma() *Builder { return b.WriteString(", ") }

// Pad writes a single space.
func (b *Builder) Pad() *Builder { return b.WriteByte(' ') }

// Nested writes the output of f wrapped in parentheses.
func (b *Builder) Nested(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// AddError records an error that occurred while building the statement.
func (b *Builder) AddError(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// Err returns the errors recorded during the last build, joined.
func (b *Builder) Err() error { return errors.Join(b.errs...) }

// String returns the accumulated statement text.
func (b *Builder) String() string { return b.sb.String() }

// Reset clears the accumulated text, arguments and errors so the builder
// can produce its statement again.
func (b *Builder) Reset() *Builder {
	b.sb.Reset()
	b.args = nil
	b.errs = nil
	return b
}

// An Op represents a SQL comparison operator.
type Op int

// Comparison operators.
const (
	OpEQ      Op = iota // =
	OpNEQ               // <>
	OpGT                // >
	OpGTE               // >=
	OpLT                // <
	OpLTE               // <=
	OpIn                // IN
	OpNotIn             // NOT IN
	OpLike              // LIKE
	OpIsNull            // IS NULL
	OpNotNull           // IS NOT NULL
)

var ops = [...]string{
	OpEQ:      "=",
	OpNEQ:     "<>",
	OpGT:      ">",
	OpGTE:     ">=",
	OpLT:      "<",
	OpLTE:     "<=",
	OpIn:      "IN",
	OpNotIn:   "NOT IN",
	OpLike:    "LIKE",
	OpIsNull:  "IS NULL",
	OpNotNull: "IS NOT NULL",
}

// String returns the SQL spelling of the operator.
func (o Op) String() string {
	if o < 0 || int(o) >= len(ops) {
		return ""
	}
	return ops[o]
}

// Predicate is a parameterized WHERE fragment: SQL text plus its ordered
// bound values, composed without interpolating operands into the text.
type Predicate struct {
	fns []func(*Builder)
}

// P creates a new predicate from the given build steps.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append adds a build step to the predicate.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

// emit writes the predicate into b.
func (p *Predicate) emit(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// Query returns the predicate fragment and its bound values.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{}
	p.emit(b)
	return b.String(), b.args
}

func binaryOp(col string, op Op, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(op.String()).Pad().Arg(v)
	})
}

// EQ returns a `col = ?` predicate.
func EQ(col string, v any) *Predicate { return binaryOp(col, OpEQ, v) }

// NEQ returns a `col <> ?` predicate.
func NEQ(col string, v any) *Predicate { return binaryOp(col, OpNEQ, v) }

// GT returns a `col > ?` predicate.
func GT(col string, v any) *Predicate { return binaryOp(col, OpGT, v) }

// GTE returns a `col >= ?` predicate.
func GTE(col string, v any) *Predicate { return binaryOp(col, OpGTE, v) }

// LT returns a `col < ?` predicate.
func LT(col string, v any) *Predicate { return binaryOp(col, OpLT, v) }

// LTE returns a `col <= ?` predicate.
func LTE(col string, v any) *Predicate { return binaryOp(col, OpLTE, v) }

// In returns a `col IN (?, ...)` predicate with one placeholder per value.
// An empty value list never matches; descriptor validation rejects it
// before statements are built, this is the safe fallback.
func In(col string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN ")
		b.Nested(func(b *Builder) {
			b.Args(vs...)
		})
	})
}

// NotIn returns a `col NOT IN (?, ...)` predicate.
func NotIn(col string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Ident(col).WriteString(" NOT IN ")
		b.Nested(func(b *Builder) {
			b.Args(vs...)
		})
	})
}

// Like returns a `col LIKE ?` predicate. The pattern is bound verbatim:
// escaping % and _ is the caller's responsibility.
func Like(col, pattern string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(OpLike.String()).Pad().Arg(pattern)
	})
}

// Between returns a `col BETWEEN ? AND ?` predicate, inclusive on both ends.
func Between(col string, low, high any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" BETWEEN ").Arg(low).WriteString(" AND ").Arg(high)
	})
}

// IsNull returns a `col IS NULL` predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(OpIsNull.String())
	})
}

// NotNull returns a `col IS NOT NULL` predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(OpNotNull.String())
	})
}

// And combines the given predicates with AND. A single predicate is
// returned as-is.
func And(preds ...*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return P(func(b *Builder) {
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p.emit(b)
		}
	})
}

// Or combines the given predicates with OR, wrapped in parentheses to
// preserve precedence when further composed.
func Or(preds ...*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return P(func(b *Builder) {
		b.Nested(func(b *Builder) {
			for i, p := range preds {
				if i > 0 {
					b.WriteString(" OR ")
				}
				p.emit(b)
			}
		})
	})
}

// Not negates the given predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT ")
		b.Nested(func(b *Builder) {
			p.emit(b)
		})
	})
}

// SelectTable is a table reference in a SELECT statement.
type SelectTable struct {
	name string
	as   string
}

// Table returns a new table reference.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the table alias.
func (t *SelectTable) As(alias string) *SelectTable {
	t.as = alias
	return t
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

// C returns the given column qualified with the table name or alias.
func (t *SelectTable) C(column string) string {
	name := t.name
	if t.as != "" {
		name = t.as
	}
	return quoteIdent(name) + "." + quoteIdent(column)
}

// Selector builds a SELECT statement.
type Selector struct {
	Builder
	distinct bool
	columns  []string
	from     *SelectTable
	where    *Predicate
	groupBy  []string
	order    []string
	limit    *int
	offset   *int
}

// Select returns a new Selector with the given projection. An empty
// projection selects every column.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// Distinct makes the projection distinct.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// From sets the table the statement selects from.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Where sets or ANDs the WHERE predicate.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where != nil {
		s.where = And(s.where, p)
	} else {
		s.where = p
	}
	return s
}

// P returns the current predicate of the selector.
func (s *Selector) P() *Predicate { return s.where }

// OrderBy appends ordering terms. Use Asc and Desc to build them.
func (s *Selector) OrderBy(terms ...string) *Selector {
	s.order = append(s.order, terms...)
	return s
}

// GroupBy appends grouping columns.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Limit bounds the number of returned rows. The bound is a parameter,
// not statement text.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset skips the first n rows. The bound is a parameter.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query returns the SELECT statement and its bound values.
func (s *Selector) Query() (string, []any) {
	s.Reset()
	s.WriteString("SELECT ")
	if s.distinct {
		s.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		s.WriteByte('*')
	} else {
		s.IdentComma(s.columns...)
	}
	s.WriteString(" FROM ")
	s.Ident(s.from.Name())
	if s.from.as != "" {
		s.WriteString(" AS ").Ident(s.from.as)
	}
	if s.where != nil {
		s.WriteString(" WHERE ")
		s.where.emit(&s.Builder)
	}
	if len(s.groupBy) > 0 {
		s.WriteString(" GROUP BY ")
		s.IdentComma(s.groupBy...)
	}
	if len(s.order) > 0 {
		s.WriteString(" ORDER BY ")
		s.IdentComma(s.order...)
	}
	switch {
	case s.limit != nil:
		s.WriteString(" LIMIT ").Arg(*s.limit)
	case s.offset != nil:
		// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
		s.WriteString(" LIMIT -1")
	}
	if s.offset != nil {
		s.WriteString(" OFFSET ").Arg(*s.offset)
	}
	return s.String(), s.args
}

// Asc returns an ascending ordering term for the given column.
func Asc(column string) string {
	return quoteIdent(column) + " ASC"
}

// Desc returns a descending ordering term for the given column.
func Desc(column string) string {
	return quoteIdent(column) + " DESC"
}

// As returns the expression aliased with the given name.
func As(expr, alias string) string {
	return expr + " AS " + quoteIdent(alias)
}

// Count returns the COUNT aggregate over the given column.
func Count(column string) string { return aggr("COUNT", column) }

// Sum returns the SUM aggregate over the given column.
func Sum(column string) string { return aggr("SUM", column) }

// Avg returns the AVG aggregate over the given column.
func Avg(column string) string { return aggr("AVG", column) }

// Min returns the MIN aggregate over the given column.
func Min(column string) string { return aggr("MIN", column) }

// Max returns the MAX aggregate over the given column.
func Max(column string) string { return aggr("MAX", column) }

func aggr(fn, column string) string {
	if column == "*" {
		return fn + "(*)"
	}
	return fn + "(" + quoteIdent(column) + ")"
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    [][]any
	defaults  bool
	returning []string
}

// Insert returns a new InsertBuilder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Columns sets the insertion columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values appends one row of values, positionally matching Columns.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Default makes the statement insert a row of column defaults.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning appends columns to a RETURNING clause.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = append(i.returning, columns...)
	return i
}

// Query returns the INSERT statement and its bound values.
func (i *InsertBuilder) Query() (string, []any) {
	i.Reset()
	i.WriteString("INSERT INTO ")
	i.Ident(i.table)
	if i.defaults && len(i.columns) == 0 {
		i.WriteString(" DEFAULT VALUES")
	} else {
		i.WriteByte(' ')
		i.Nested(func(b *Builder) {
			b.IdentComma(i.columns...)
		})
		i.WriteString(" VALUES ")
		for j, row := range i.values {
			if j > 0 {
				i.Comma()
			}
			i.Nested(func(b *Builder) {
				b.Args(row...)
			})
		}
	}
	if len(i.returning) > 0 {
		i.WriteString(" RETURNING ")
		i.IdentComma(i.returning...)
	}
	return i.String(), i.args
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Update returns a new UpdateBuilder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns a new value to a column. Assignment order is preserved.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where sets or ANDs the WHERE predicate.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if p == nil {
		return u
	}
	if u.where != nil {
		u.where = And(u.where, p)
	} else {
		u.where = p
	}
	return u
}

// Empty reports whether the builder has no assignments.
func (u *UpdateBuilder) Empty() bool { return len(u.columns) == 0 }

// Query returns the UPDATE statement and its bound values.
func (u *UpdateBuilder) Query() (string, []any) {
	u.Reset()
	u.WriteString("UPDATE ")
	u.Ident(u.table)
	u.WriteString(" SET ")
	for j, column := range u.columns {
		if j > 0 {
			u.Comma()
		}
		u.Ident(column).WriteString(" = ").Arg(u.values[j])
	}
	if u.where != nil {
		u.WriteString(" WHERE ")
		u.where.emit(&u.Builder)
	}
	return u.String(), u.args
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Delete returns a new DeleteBuilder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where sets or ANDs the WHERE predicate.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if p == nil {
		return d
	}
	if d.where != nil {
		d.where = And(d.where, p)
	} else {
		d.where = p
	}
	return d
}

// Query returns the DELETE statement and its bound values.
func (d *DeleteBuilder) Query() (string, []any) {
	d.Reset()
	d.WriteString("DELETE FROM ")
	d.Ident(d.table)
	if d.where != nil {
		d.WriteString(" WHERE ")
		d.where.emit(&d.Builder)
	}
	return d.String(), d.args
}

// ColumnBuilder builds one column definition inside a CREATE TABLE or
// ALTER TABLE statement.
type ColumnBuilder struct {
	Builder
	name  string
	typ   string
	attrs []string
	def   any
	hasD  bool
}

// Column returns a new ColumnBuilder for the given column name.
func Column(name string) *ColumnBuilder {
	return &ColumnBuilder{name: name}
}

// Type sets the column storage type.
func (c *ColumnBuilder) Type(t string) *ColumnBuilder {
	c.typ = t
	return c
}

// Attr appends a raw column attribute, e.g. "NOT NULL".
func (c *ColumnBuilder) Attr(attr string) *ColumnBuilder {
	c.attrs = append(c.attrs, attr)
	return c
}

// Default sets the column DEFAULT. DDL cannot bind parameters, so the
// value is rendered as a SQL literal.
func (c *ColumnBuilder) Default(v any) *ColumnBuilder {
	c.def = v
	c.hasD = true
	return c
}

// Query returns the column definition fragment.
func (c *ColumnBuilder) Query() (string, []any) {
	c.Reset()
	c.Ident(c.name)
	if c.typ != "" {
		c.Pad().WriteString(c.typ)
	}
	for _, attr := range c.attrs {
		c.Pad().WriteString(attr)
	}
	if c.hasD {
		lit, err := literal(c.def)
		if err != nil {
			c.AddError(err)
		} else {
			c.WriteString(" DEFAULT ").WriteString(lit)
		}
	}
	return c.String(), c.args
}

// CreateTableBuilder builds a CREATE TABLE statement.
type CreateTableBuilder struct {
	Builder
	table       string
	ifNotExists bool
	columns     []*ColumnBuilder
	primary     []string
	uniques     [][]string
}

// CreateTable returns a new CreateTableBuilder for the given table.
func CreateTable(table string) *CreateTableBuilder {
	return &CreateTableBuilder{table: table}
}

// IfNotExists makes the statement a no-op when the table already exists.
func (t *CreateTableBuilder) IfNotExists() *CreateTableBuilder {
	t.ifNotExists = true
	return t
}

// Columns appends column definitions.
func (t *CreateTableBuilder) Columns(columns ...*ColumnBuilder) *CreateTableBuilder {
	t.columns = append(t.columns, columns...)
	return t
}

// PrimaryKey declares a table-level primary key over the given columns.
// Single-column integer keys belong on the column itself instead.
func (t *CreateTableBuilder) PrimaryKey(columns ...string) *CreateTableBuilder {
	t.primary = append(t.primary, columns...)
	return t
}

// Unique declares a table-level unique constraint over the given columns.
func (t *CreateTableBuilder) Unique(columns ...string) *CreateTableBuilder {
	t.uniques = append(t.uniques, columns)
	return t
}

// Query returns the CREATE TABLE statement. DDL binds no parameters.
func (t *CreateTableBuilder) Query() (string, []any) {
	t.Reset()
	t.WriteString("CREATE TABLE ")
	if t.ifNotExists {
		t.WriteString("IF NOT EXISTS ")
	}
	t.Ident(t.table)
	t.Pad()
	t.Nested(func(b *Builder) {
		for i, c := range t.columns {
			if i > 0 {
				b.Comma()
			}
			q, _ := c.Query()
			if err := c.Err(); err != nil {
				b.AddError(err)
			}
			b.WriteString(q)
		}
		if len(t.primary) > 0 {
			b.Comma().WriteString("PRIMARY KEY ")
			b.Nested(func(b *Builder) {
				b.IdentComma(t.primary...)
			})
		}
		for _, u := range t.uniques {
			b.Comma().WriteString("UNIQUE ")
			b.Nested(func(b *Builder) {
				b.IdentComma(u...)
			})
		}
	})
	return t.String(), t.args
}

// CreateIndexBuilder builds a CREATE INDEX statement.
type CreateIndexBuilder struct {
	Builder
	name        string
	table       string
	unique      bool
	ifNotExists bool
	columns     []string
}

// CreateIndex returns a new CreateIndexBuilder with the given index name.
func CreateIndex(name string) *CreateIndexBuilder {
	return &CreateIndexBuilder{name: name}
}

// IfNotExists makes the statement a no-op when the index already exists.
func (i *CreateIndexBuilder) IfNotExists() *CreateIndexBuilder {
	i.ifNotExists = true
	return i
}

// Unique makes the index a uniqueness constraint.
func (i *CreateIndexBuilder) Unique() *CreateIndexBuilder {
	i.unique = true
	return i
}

// Table sets the table the index is created on.
func (i *CreateIndexBuilder) Table(table string) *CreateIndexBuilder {
	i.table = table
	return i
}

// Columns sets the indexed columns, in order.
func (i *CreateIndexBuilder) Columns(columns ...string) *CreateIndexBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Query returns the CREATE INDEX statement.
func (i *CreateIndexBuilder) Query() (string, []any) {
	i.Reset()
	i.WriteString("CREATE ")
	if i.unique {
		i.WriteString("UNIQUE ")
	}
	i.WriteString("INDEX ")
	if i.ifNotExists {
		i.WriteString("IF NOT EXISTS ")
	}
	i.Ident(i.name)
	i.WriteString(" ON ")
	i.Ident(i.table)
	i.Pad()
	i.Nested(func(b *Builder) {
		b.IdentComma(i.columns...)
	})
	return i.String(), i.args
}

// AlterTableBuilder builds an ALTER TABLE statement. SQLite supports a
// single change per statement, additive column changes only.
type AlterTableBuilder struct {
	Builder
	table  string
	column *ColumnBuilder
}

// AlterTable returns a new AlterTableBuilder for the given table.
func AlterTable(table string) *AlterTableBuilder {
	return &AlterTableBuilder{table: table}
}

// AddColumn sets the column definition the statement adds.
func (a *AlterTableBuilder) AddColumn(c *ColumnBuilder) *AlterTableBuilder {
	a.column = c
	return a
}

// Query returns the ALTER TABLE statement.
func (a *AlterTableBuilder) Query() (string, []any) {
	a.Reset()
	a.WriteString("ALTER TABLE ")
	a.Ident(a.table)
	a.WriteString(" ADD COLUMN ")
	q, _ := a.column.Query()
	if err := a.column.Err(); err != nil {
		a.AddError(err)
	}
	a.WriteString(q)
	return a.String(), a.args
}

// literal renders a DDL-safe SQL literal for the given value.
func literal(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case string:
		return "'" + escapeString(v) + "'", nil
	case []byte:
		return "X'" + strings.ToUpper(hexEncode(v)) + "'", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", v)
	}
}

// escapeString escapes a string for embedding in a SQL literal by
// doubling single quotes.
func escapeString(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	return strings.ReplaceAll(s, "'", "''")
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

func quoteIdent(s string) string {
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		for i, p := range parts {
			parts[i] = "`" + p + "`"
		}
		return strings.Join(parts, ".")
	}
	return "`" + s + "`"
}
