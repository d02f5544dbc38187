package models

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"number", `42`, "42"},
		{"string", `"abc-1"`, "abc-1"},
		{"null", `null`, ""},
		{"large number", `9007199254740993`, "9007199254740993"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if id != tt.want {
				t.Errorf("got %q, want %q", id, tt.want)
			}
		})
	}
}

func TestIDMarshal(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"42", `42`},
		{"abc", `"abc"`},
		{"", `null`},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatalf("Marshal(%q): %v", tt.id, err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%q) = %s, want %s", tt.id, b, tt.want)
		}
	}
}

func TestDepartmentDecode(t *testing.T) {
	body := `{"id":7,"name":"IT","deptCode":"IT01","isActive":true,"createdBy":"admin","parentId":null}`

	var d Department
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d.ID != "7" || d.Name != "IT" || d.DeptCode != "IT01" || !d.IsActive {
		t.Errorf("unexpected department: %+v", d)
	}
	if d.CreatedBy != "admin" {
		t.Errorf("audit field not decoded: %+v", d.Audit)
	}
}

func TestDuplicate(t *testing.T) {
	d := Department{ID: "1", Name: "IT", DeptCode: "IT01", IsActive: true}

	in, ok := d.Duplicate().(DepartmentInput)
	if !ok {
		t.Fatalf("Duplicate returned %T", d.Duplicate())
	}
	if in.Name != "IT (Copy)" {
		t.Errorf("Name = %q, want %q", in.Name, "IT (Copy)")
	}
	if in.Description != nil {
		t.Error("empty description should stay omitted")
	}
	if in.IsActive == nil || !*in.IsActive {
		t.Error("expected isActive to carry over")
	}
}

func TestInputOmitsAbsentOptionals(t *testing.T) {
	empty := ""
	in := DepartmentInput{Name: "IT", DeptCode: "IT01", Description: &empty}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	_ = json.Unmarshal(b, &got)
	if _, ok := got["parentId"]; ok {
		t.Error("nil parentId should be omitted")
	}
	if v, ok := got["description"]; !ok || v != "" {
		t.Errorf("cleared description should be sent as empty string, got %v (present %v)", v, ok)
	}
}
