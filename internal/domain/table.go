package domain

import "fmt"

// Table is an in-memory CSV dataset keyed by column name.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

type Row map[string]string

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns an error naming the first missing column.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("table %q has no column %q", t.Name, n)
		}
	}
	return nil
}

// Tables is the set of datasets loaded for a run, keyed by logical name.
type Tables map[string]*Table

// Require returns the named table or an error telling the caller to load it.
func (ts Tables) Require(name string) (*Table, error) {
	t, ok := ts[name]
	if !ok {
		return nil, fmt.Errorf("table %q not loaded; call %s first", name, ToolLoadCSV)
	}
	return t, nil
}
