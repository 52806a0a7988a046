package query

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/syssam/flint/dialect/sql"
	"github.com/syssam/flint/schema"
)

// An Op is one operator of the closed filter set. Descriptors use the
// string keys; after validation every condition carries the resolved
// variant, and translation is one function per variant.
type Op uint8

// Filter operators.
const (
	OpEQ      Op = iota // $eq
	OpNE                // $ne
	OpGT                // $gt
	OpGTE               // $gte
	OpLT                // $lt
	OpLTE               // $lte
	OpIn                // $in
	OpNotIn             // $nin
	OpLike              // $like
	OpBetween           // $between
	OpIsNull            // $isNull
)

var opTokens = [...]string{
	OpEQ:      "$eq",
	OpNE:      "$ne",
	OpGT:      "$gt",
	OpGTE:     "$gte",
	OpLT:      "$lt",
	OpLTE:     "$lte",
	OpIn:      "$in",
	OpNotIn:   "$nin",
	OpLike:    "$like",
	OpBetween: "$between",
	OpIsNull:  "$isNull",
}

var opSet = func() map[string]Op {
	m := make(map[string]Op, len(opTokens))
	for op, token := range opTokens {
		m[token] = Op(op)
	}
	return m
}()

// Token returns the descriptor key of the operator.
func (o Op) Token() string {
	if int(o) < len(opTokens) {
		return opTokens[o]
	}
	return ""
}

// A Cond is one validated filter condition: a column, a resolved operator
// and its encoded operands, ready for translation into a predicate.
type Cond struct {
	Column string
	Op     Op
	// Args are the operands in binding order, already coerced to the
	// column's storage representation. IsNull carries the boolean flag
	// instead.
	Args []any
	// Null is the $isNull operand.
	Null bool
}

// Predicate translates the condition into a parameterized predicate
// fragment. Operand values are always bound, never written into SQL text.
func (c *Cond) Predicate() *sql.Predicate {
	switch c.Op {
	case OpEQ:
		return sql.EQ(c.Column, c.Args[0])
	case OpNE:
		return sql.NEQ(c.Column, c.Args[0])
	case OpGT:
		return sql.GT(c.Column, c.Args[0])
	case OpGTE:
		return sql.GTE(c.Column, c.Args[0])
	case OpLT:
		return sql.LT(c.Column, c.Args[0])
	case OpLTE:
		return sql.LTE(c.Column, c.Args[0])
	case OpIn:
		return sql.In(c.Column, c.Args...)
	case OpNotIn:
		return sql.NotIn(c.Column, c.Args...)
	case OpLike:
		return sql.Like(c.Column, c.Args[0].(string))
	case OpBetween:
		return sql.Between(c.Column, c.Args[0], c.Args[1])
	case OpIsNull:
		if c.Null {
			return sql.IsNull(c.Column)
		}
		return sql.NotNull(c.Column)
	}
	return nil
}

// ParseWhere validates a filter descriptor against the table schema and
// returns the resolved conditions. Columns, and operators within a column,
// are processed in sorted order so binding order is deterministic.
func ParseWhere(t *schema.Table, w Where) ([]Cond, error) {
	if len(w) == 0 {
		return nil, nil
	}
	columns := make([]string, 0, len(w))
	for column := range w {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	var conds []Cond
	for _, column := range columns {
		c, ok := t.Column(column)
		if !ok {
			return nil, NewUnknownColumnError(t.Name, column)
		}
		ops, ok := operatorObject(w[column])
		if !ok {
			// A literal value is implicit equality.
			cond, err := parseCond(c, OpEQ, w[column])
			if err != nil {
				return nil, err
			}
			conds = append(conds, *cond)
			continue
		}
		keys := make([]string, 0, len(ops))
		for key := range ops {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			op, ok := opSet[key]
			if !ok {
				return nil, NewValidationError(column, key, "unknown operator")
			}
			cond, err := parseCond(c, op, ops[key])
			if err != nil {
				return nil, err
			}
			conds = append(conds, *cond)
		}
	}
	return conds, nil
}

// operatorObject reports whether v is an operator object rather than a
// literal operand.
func operatorObject(v any) (Ops, bool) {
	switch v := v.(type) {
	case Ops:
		return v, true
	case map[string]any:
		return Ops(v), true
	}
	return nil, false
}

// parseCond validates one (column, operator, operand) triple and encodes
// the operands for binding.
func parseCond(c *schema.Column, op Op, operand any) (*Cond, error) {
	token := op.Token()
	// Serialized columns compare as opaque text: only equality and null
	// checks have a defined ordering semantic.
	if c.Type.Serialized() && op != OpEQ && op != OpIsNull {
		return nil, NewUnsupportedOperatorError(c.Name, token, c.Type)
	}
	cond := &Cond{Column: c.Name, Op: op}
	switch op {
	case OpIsNull:
		null, ok := operand.(bool)
		if !ok {
			return nil, NewValidationError(c.Name, token, fmt.Sprintf("operand must be a boolean, got %T", operand))
		}
		cond.Null = null
	case OpIn, OpNotIn:
		operands, ok := operandSlice(operand)
		if !ok {
			return nil, NewValidationError(c.Name, token, fmt.Sprintf("operand must be a sequence, got %T", operand))
		}
		if len(operands) == 0 {
			return nil, NewValidationError(c.Name, token, "operand sequence is empty")
		}
		for _, v := range operands {
			if err := cond.appendArg(c, token, v); err != nil {
				return nil, err
			}
		}
	case OpBetween:
		operands, ok := operandSlice(operand)
		if !ok || len(operands) != 2 {
			return nil, NewValidationError(c.Name, token, "operand must be a [low, high] pair")
		}
		for _, v := range operands {
			if err := cond.appendArg(c, token, v); err != nil {
				return nil, err
			}
		}
	case OpLike:
		pattern, ok := operand.(string)
		if !ok {
			return nil, NewValidationError(c.Name, token, fmt.Sprintf("operand must be a string, got %T", operand))
		}
		// The pattern is bound verbatim: % and _ are not escaped here.
		cond.Args = append(cond.Args, pattern)
	default:
		if err := cond.appendArg(c, token, operand); err != nil {
			return nil, err
		}
	}
	return cond, nil
}

func (c *Cond) appendArg(col *schema.Column, token string, v any) error {
	encoded, err := schema.EncodeValue(col.Type, v)
	if err != nil {
		return NewValidationError(col.Name, token, err.Error())
	}
	c.Args = append(c.Args, encoded)
	return nil
}

// operandSlice normalizes an operand sequence of any element type.
func operandSlice(v any) ([]any, bool) {
	if vs, ok := v.([]any); ok {
		return vs, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, true
}

// WherePredicate parses the filter and combines the resulting conditions
// into one AND-conjoined predicate. A nil predicate means no filter.
func WherePredicate(t *schema.Table, w Where) (*sql.Predicate, error) {
	conds, err := ParseWhere(t, w)
	if err != nil {
		return nil, err
	}
	if len(conds) == 0 {
		return nil, nil
	}
	preds := make([]*sql.Predicate, len(conds))
	for i := range conds {
		preds[i] = conds[i].Predicate()
	}
	return sql.And(preds...), nil
}
