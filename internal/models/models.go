// Package models defines the records exchanged with the operations API.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID identifies a record. The API uses numeric ids for most tables and
// string ids for a few; both are carried in string form.
type ID string

// String returns the id as a path segment.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IDs converts raw strings to ids.
func IDs(raw ...string) []ID {
	ids := make([]ID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, ID(r))
	}
	return ids
}

// Audit holds the bookkeeping columns present on every table.
type Audit struct {
	CreatedAt string `json:"createdAt,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// Department is an organizational unit owning systems and contacts.
type Department struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	DeptCode    string `json:"deptCode"`
	Description string `json:"description,omitempty"`
	ParentID    *ID    `json:"parentId,omitempty"`
	IsActive    bool   `json:"isActive"`
	Audit
}

// System is a monitored telecom system.
type System struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	IPAddress    string `json:"ipAddress,omitempty"`
	CatalogID    *ID    `json:"catalogId,omitempty"`
	DepartmentID *ID    `json:"departmentId,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	Audit
}

// Contact is a person reachable for on-call duty.
type Contact struct {
	ID           ID     `json:"id"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Position     string `json:"position,omitempty"`
	DepartmentID *ID    `json:"departmentId,omitempty"`
	IsActive     bool   `json:"isActive"`
	Audit
}

// Group is a named set of contacts notified together.
type Group struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	ContactIDs  []ID   `json:"contactIds,omitempty"`
	IsActive    bool   `json:"isActive"`
	Audit
}

// AlertRule maps a system condition to a severity and notification channels.
// Channels (SMS, CALL, ECHAT) are stored and displayed only.
type AlertRule struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	SystemID     *ID      `json:"systemId,omitempty"`
	SeverityCode string   `json:"severityCode"`
	Condition    string   `json:"condition,omitempty"`
	Channels     []string `json:"channels,omitempty"`
	GroupID      *ID      `json:"groupId,omitempty"`
	IsActive     bool     `json:"isActive"`
	Audit
}

// Role is a named permission set for dashboard users.
type Role struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Audit
}

// SystemCatalog is a category of monitored systems.
type SystemCatalog struct {
	ID          ID     `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Audit
}

// SysSeverity is a named alert priority level (DOWN, CRITICAL, MAJOR, MINOR, CLEAR).
type SysSeverity struct {
	ID          ID     `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Audit
}

// OperationType classifies operator actions recorded in the logs.
type OperationType struct {
	ID          ID     `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Audit
}

// ErrorDictionary documents a known error code and its remedy.
type ErrorDictionary struct {
	ID        ID     `json:"id"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	Solution  string `json:"solution,omitempty"`
	SystemID  *ID    `json:"systemId,omitempty"`
	Audit
}

// LogEntry is a read-only audit log line.
type LogEntry struct {
	ID        ID     `json:"id"`
	Action    string `json:"action"`
	Resource  string `json:"resource,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Actor     string `json:"actor,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Schedule is an on-call shift assignment.
type Schedule struct {
	ID        ID     `json:"id"`
	ContactID *ID    `json:"contactId,omitempty"`
	GroupID   *ID    `json:"groupId,omitempty"`
	ShiftDate string `json:"shiftDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Note      string `json:"note,omitempty"`
	Audit
}

// Alert statuses.
const (
	AlertOpen         = "OPEN"
	AlertAcknowledged = "ACKNOWLEDGED"
	AlertResolved     = "RESOLVED"
)

// Alert is a raised alarm awaiting acknowledgment.
type Alert struct {
	ID           ID     `json:"id"`
	SystemID     *ID    `json:"systemId,omitempty"`
	SystemName   string `json:"systemName,omitempty"`
	SeverityCode string `json:"severityCode"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	OccurredAt   string `json:"occurredAt,omitempty"`
	AckBy        string `json:"ackBy,omitempty"`
	AckAt        string `json:"ackAt,omitempty"`
	AckNote      string `json:"ackNote,omitempty"`
}

// Download kinds.
const (
	DownloadExport   = "export"
	DownloadTemplate = "template"
)

// Download is a locally recorded export or template file.
type Download struct {
	ID        int64
	Resource  string
	Kind      string
	Filename  string
	Size      int64
	CreatedAt int64
}

// User is the signed-in dashboard account.
type User struct {
	ID       ID       `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"fullName,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}
