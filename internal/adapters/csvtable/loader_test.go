package csvtable

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapFiles(t *testing.T) {
	got, err := MapFiles([]string{"/tmp/up/invoices.csv", "/tmp/up/employees.csv"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"invoices":  "/tmp/up/invoices.csv",
		"employees": "/tmp/up/employees.csv",
	}, got)
}

func TestMapFilesRejectsUnknown(t *testing.T) {
	_, err := MapFiles([]string{"/tmp/up/payroll.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payroll.csv")
	assert.Contains(t, err.Error(), "invoices.csv")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoices.csv", "vendor_id,invoice_no,amount\nV1,INV-1,100.50\nV1,INV-2,80\n")

	l := NewLoader()
	table, err := l.Load(context.Background(), "invoices", path)
	require.NoError(t, err)

	assert.Equal(t, "invoices", table.Name)
	assert.Equal(t, []string{"vendor_id", "invoice_no", "amount"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "INV-2", table.Rows[1]["invoice_no"])
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vendors.csv", "")

	_, err := NewLoader().Load(context.Background(), "vendors", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "invoices.csv", "vendor_id,invoice_no,amount\nV1,INV-1,10\n"),
		writeFile(t, dir, "employees.csv", "user_id,employment_status,address\nU1,active,12 Elm St\n"),
		writeFile(t, dir, "vendors.csv", "vendor_id,address\nV1,12 Elm St\n"),
	}

	tables, err := NewLoader().LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	emp, err := tables.Require("employees")
	require.NoError(t, err)
	assert.Equal(t, 1, emp.Len())

	_, err = tables.Require("jes")
	require.Error(t, err)
}
