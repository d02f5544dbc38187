package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/truccaai/trucca/internal/models"
)

func TestBuildFormOverlaysData(t *testing.T) {
	base := models.Department{ID: "4", Name: "IT", DeptCode: "IT01", Description: "core", IsActive: true}

	form, err := buildForm(func() any { return &models.DepartmentInput{} }, base, `{"name":"IT Ops"}`)
	if err != nil {
		t.Fatalf("buildForm: %v", err)
	}
	in := form.(*models.DepartmentInput)
	if in.Name != "IT Ops" || in.DeptCode != "IT01" {
		t.Errorf("form = %+v", in)
	}
	if in.Description == nil || *in.Description != "core" {
		t.Errorf("description not carried over: %v", in.Description)
	}
}

func TestBuildFormRejectsUnknownFields(t *testing.T) {
	_, err := buildForm(func() any { return &models.DepartmentInput{} }, nil, `{"nmae":"typo"}`)
	if err == nil || !strings.Contains(err.Error(), "--data") {
		t.Errorf("err = %v", err)
	}
}

func TestResourceCommandsRegistered(t *testing.T) {
	want := map[string][]string{
		"department": {"list", "get", "create", "update", "delete", "copy", "export", "import", "template"},
		"log":        {"list", "get", "export"},
		"alert":      {"list", "get", "export", "delete", "ack"},
	}
	for name, subs := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not found: %v", name, err)
		}
		have := map[string]bool{}
		for _, c := range cmd.Commands() {
			have[c.Name()] = true
		}
		for _, s := range subs {
			if !have[s] {
				t.Errorf("%s has no %s subcommand", name, s)
			}
		}
		if name == "log" && (have["create"] || have["delete"]) {
			t.Error("read-only resource exposes writes")
		}
	}
}

func TestDepartmentListCommand(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{
			"data":  []any{map[string]any{"id": 1, "name": "Network", "deptCode": "NET", "isActive": true}},
			"total": 1, "page": 1, "size": 5,
		}})
	}))
	defer srv.Close()

	t.Setenv("TRUCCA_LOG_LEVEL", "error")
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{
		"department", "list",
		"--base-url", srv.URL,
		"--storage", filepath.Join(dir, "s.db"),
		"--config", writeConfig(t, dir),
		"--limit", "5", "--keyword", "net", "--sort", "name",
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v (stderr %s)", err, errOut.String())
	}
	if query != "page=1&limit=5&sort_key=name&sort_dir=asc&keyword=net" {
		t.Errorf("query = %q", query)
	}
	if !strings.Contains(out.String(), "NET") || !strings.Contains(out.String(), "page 1/1, 1 total") {
		t.Errorf("output = %q", out.String())
	}
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := writeFile(path, "page_size: 10\n"); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
