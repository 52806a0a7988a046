package flint

import (
	"github.com/syssam/flint/dialect/sql"
	"github.com/syssam/flint/schema"
)

// A Record is one row in application form: column name to decoded value.
// Serialized JSON, Object and Array columns come back as the deserialized
// value, dates as time.Time, and absent values as nil.
type Record map[string]any

// scanRecords drains the rows into records, decoding each value through
// the column's declared type. Columns outside the schema (aggregate
// aliases like "count") pass through in their engine representation.
func scanRecords(t *schema.Table, rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var records []Record
	for rows.Next() {
		dest := make([]any, len(columns))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		record := make(Record, len(columns))
		for i, column := range columns {
			raw := *dest[i].(*any)
			c, ok := t.Column(column)
			if !ok {
				record[column] = normalizeRaw(raw)
				continue
			}
			v, err := schema.DecodeValue(c.Type, raw)
			if err != nil {
				return nil, err
			}
			record[column] = v
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// normalizeRaw converts driver-specific scan types into plain values.
func normalizeRaw(raw any) any {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	return raw
}
