package types

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantData string
		wantMsg  string
		failed   bool
		wantErr  bool
	}{
		{name: "envelope", body: `{"success":true,"data":{"id":1}}`, wantData: `{"id":1}`},
		{name: "failure", body: `{"success":false,"message":"duplicate code"}`, wantMsg: "duplicate code", failed: true},
		{name: "bare object", body: `{"id":1,"name":"x"}`, wantData: `{"id":1,"name":"x"}`},
		{name: "bare array", body: ` [1,2] `, wantData: `[1,2]`},
		{name: "empty", body: "", wantData: ""},
		{name: "not json", body: "<html>", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if string(env.Data) != tt.wantData {
				t.Errorf("data = %s, want %s", env.Data, tt.wantData)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
			if env.Failed() != tt.failed {
				t.Errorf("Failed() = %v", env.Failed())
			}
		})
	}
}

func TestHasData(t *testing.T) {
	env := &Envelope{Data: json.RawMessage("null")}
	if env.HasData() {
		t.Error("null data reported as present")
	}
	env.Data = json.RawMessage(`[]`)
	if !env.HasData() {
		t.Error("empty array reported as absent")
	}
}

func TestPageBodyItems(t *testing.T) {
	var p PageBody
	if err := json.Unmarshal([]byte(`{"content":[1],"totalElements":1}`), &p); err != nil {
		t.Fatal(err)
	}
	if got := string(p.Items(false)); got != "[1]" {
		t.Errorf("Items(false) = %s", got)
	}
	if !p.HasPaging() {
		t.Error("HasPaging() = false")
	}

	var q PageBody
	if err := json.Unmarshal([]byte(`{"data":[2],"content":null}`), &q); err != nil {
		t.Fatal(err)
	}
	if got := string(q.Items(true)); got != "[2]" {
		t.Errorf("Items(true) = %s", got)
	}
	if q.HasPaging() {
		t.Error("HasPaging() = true without paging fields")
	}
}
