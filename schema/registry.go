package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Changes is the set of DDL changes needed to bring a logical database in
// line with a planned table definition. An empty Changes means the
// definition is already in place.
type Changes struct {
	// Table is the target shape the changes lead to.
	Table *Table
	// CreateTable is set when the table does not exist yet.
	CreateTable bool
	// AddColumns are new optional columns added to an existing table.
	AddColumns []Column
	// AddIndexes are indexes that do not exist yet.
	AddIndexes []Index
}

// IsZero reports whether there is nothing to apply.
func (ch *Changes) IsZero() bool {
	return !ch.CreateTable && len(ch.AddColumns) == 0 && len(ch.AddIndexes) == 0
}

// Registry owns the authoritative table definitions of one logical
// database. Definitions are registered in two phases: Plan computes and
// validates the changes a definition requires, and Commit records the new
// shape once the corresponding DDL has been applied. Plan never mutates
// the registry, so a failed DDL application leaves it untouched.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Table returns the registered definition of the named table.
func (r *Registry) Table(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, NewValidationError(name, "", "table not defined")
	}
	return t, nil
}

// TableNames returns the names of all registered tables, sorted.
func (r *Registry) TableNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plan validates the definition and computes the changes needed to apply
// it. Registering an unknown table creates it; an identical redefinition
// yields zero changes; a compatible redefinition (new optional columns,
// new indexes) yields additive changes; an incompatible one fails with
// ConflictError.
func (r *Registry) Plan(t *Table) (*Changes, error) {
	target := t.clone()
	if err := target.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	existing, ok := r.tables[target.Name]
	r.mu.RUnlock()
	if !ok {
		return &Changes{
			Table:       target,
			CreateTable: true,
			AddIndexes:  target.allIndexes(),
		}, nil
	}
	return diff(existing, target)
}

// Commit records the table shape the changes lead to. It must be called
// only after the DDL produced by Plan was applied successfully.
func (r *Registry) Commit(ch *Changes) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[ch.Table.Name] = ch.Table
}

// PlanIndex validates a standalone index definition against a registered
// table and returns the changes needed. Creating an index whose name and
// shape already exist is a no-op; reusing a name for a different shape
// fails with IndexConflictError.
func (r *Registry) PlanIndex(table string, idx Index) (*Changes, error) {
	r.mu.RLock()
	existing, ok := r.tables[table]
	r.mu.RUnlock()
	if !ok {
		return nil, NewValidationError(table, "", "table not defined")
	}
	target := existing.clone()
	if err := idx.normalize(target); err != nil {
		return nil, err
	}
	for i := range target.allIndexes() {
		prev := target.allIndexes()[i]
		if prev.Name != idx.Name {
			continue
		}
		if prev.equal(&idx) {
			return &Changes{Table: target}, nil
		}
		return nil, NewIndexConflictError(table, idx.Name)
	}
	target.Indexes = append(target.Indexes, idx)
	return &Changes{Table: target, AddIndexes: []Index{idx}}, nil
}

// diff computes the additive changes from old to target, or fails with
// ConflictError when the redefinition is incompatible.
func diff(old, target *Table) (*Changes, error) {
	var reasons []string
	for i := range old.Columns {
		oc := &old.Columns[i]
		nc, ok := target.Column(oc.Name)
		switch {
		case !ok:
			reasons = append(reasons, fmt.Sprintf("column %q removed", oc.Name))
		case !oc.equal(nc):
			reasons = append(reasons, fmt.Sprintf("column %q redefined", oc.Name))
		}
	}
	var added []Column
	for i := range target.Columns {
		nc := &target.Columns[i]
		if _, ok := old.Column(nc.Name); ok {
			continue
		}
		switch {
		case nc.PrimaryKey || nc.AutoIncrement:
			reasons = append(reasons, fmt.Sprintf("column %q cannot be added to the primary key", nc.Name))
		case nc.NotNull && !nc.HasDefault():
			reasons = append(reasons, fmt.Sprintf("new column %q must be nullable or carry a default", nc.Name))
		default:
			added = append(added, *nc)
		}
	}
	if len(reasons) > 0 {
		return nil, NewConflictError(target.Name, reasons...)
	}
	oldIndexes := make(map[string]Index)
	for _, idx := range old.allIndexes() {
		oldIndexes[idx.Name] = idx
	}
	var addedIdx []Index
	for _, idx := range target.allIndexes() {
		prev, ok := oldIndexes[idx.Name]
		if !ok {
			addedIdx = append(addedIdx, idx)
			continue
		}
		if !prev.equal(&idx) {
			return nil, NewIndexConflictError(target.Name, idx.Name)
		}
	}
	// The committed shape keeps every index the database already has.
	for _, idx := range old.Indexes {
		found := false
		for _, t := range target.Indexes {
			if t.Name == idx.Name {
				found = true
				break
			}
		}
		if !found {
			target.Indexes = append(target.Indexes, idx)
		}
	}
	return &Changes{Table: target, AddColumns: added, AddIndexes: addedIdx}, nil
}
