package sheet

import (
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

// build writes headers and rows into a new single-sheet workbook.
func build(sheetName string, headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "" && sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return nil, err
		}
	} else {
		sheetName = "Sheet1"
	}
	all := append([][]string{headers}, rows...)
	for i, r := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func TestInspect(t *testing.T) {
	data, err := build("Departments", []string{"name", "deptCode"}, [][]string{
		{"IT", "IT01"},
		{"Network", "NET"},
		{"NOC", "NOC"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if s.Sheet != "Departments" {
		t.Errorf("Sheet = %q", s.Sheet)
	}
	if !reflect.DeepEqual(s.Headers, []string{"name", "deptCode"}) {
		t.Errorf("Headers = %v", s.Headers)
	}
	if s.Rows != 3 {
		t.Errorf("Rows = %d, want 3", s.Rows)
	}
}

func TestInspectHeaderOnly(t *testing.T) {
	data, err := build("", []string{"fullName", "phone"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if s.Sheet != "Sheet1" || s.Rows != 0 || len(s.Headers) != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	if _, err := Inspect([]byte("not a workbook")); err == nil {
		t.Error("expected error for non-xlsx data")
	}
}

func TestPreview(t *testing.T) {
	data, err := build("S", []string{"code", "name", "level"}, [][]string{
		{"DOWN", "Down", "5"},
		{"CRITICAL", "Critical"},
		{"MAJOR", "Major", "3"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rows, err := Preview(data, 2)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := [][]string{
		{"code", "name", "level"},
		{"DOWN", "Down", "5"},
		{"CRITICAL", "Critical", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Preview = %v, want %v", rows, want)
	}
}
