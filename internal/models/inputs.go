package models

// Request payloads. Required fields are plain values; optional fields are
// pointers so that "omitted" (nil) and "cleared" (pointer to the zero value)
// reach the server as different JSON.

// DepartmentInput is the create/edit form of a department.
type DepartmentInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	DeptCode    string  `json:"deptCode" validate:"required,code"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ParentID    *ID     `json:"parentId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// SystemInput is the create/edit form of a system.
type SystemInput struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Code         string  `json:"code" validate:"required,code"`
	IPAddress    *string `json:"ipAddress,omitempty" validate:"omitempty,ip"`
	CatalogID    *ID     `json:"catalogId,omitempty"`
	DepartmentID *ID     `json:"departmentId,omitempty"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE"`
}

// ContactInput is the create/edit form of a contact.
type ContactInput struct {
	FullName     string  `json:"fullName" validate:"required,max=255"`
	Phone        string  `json:"phone" validate:"required,phone"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Position     *string `json:"position,omitempty" validate:"omitempty,max=255"`
	DepartmentID *ID     `json:"departmentId,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// GroupInput is the create/edit form of a contact group.
type GroupInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Code        string  `json:"code" validate:"required,code"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ContactIDs  []ID    `json:"contactIds,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// AlertRuleInput is the create/edit form of an alert rule.
type AlertRuleInput struct {
	Name         string   `json:"name" validate:"required,max=255"`
	SystemID     *ID      `json:"systemId,omitempty"`
	SeverityCode string   `json:"severityCode" validate:"required,code"`
	Condition    *string  `json:"condition,omitempty" validate:"omitempty,max=2000"`
	Channels     []string `json:"channels,omitempty" validate:"omitempty,dive,oneof=SMS CALL ECHAT"`
	GroupID      *ID      `json:"groupId,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

// RoleInput is the create/edit form of a role.
type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Code        string   `json:"code" validate:"required,code"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Permissions []string `json:"permissions,omitempty" validate:"omitempty,dive,required,max=100"`
}

// SystemCatalogInput is the create/edit form of a system catalog entry.
type SystemCatalogInput struct {
	Code        string  `json:"code" validate:"required,code"`
	Name        string  `json:"name" validate:"required,max=255"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// SysSeverityInput is the create/edit form of a severity level.
type SysSeverityInput struct {
	Code        string  `json:"code" validate:"required,code"`
	Name        string  `json:"name" validate:"required,max=100"`
	Level       int     `json:"level" validate:"gte=0,lte=100"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// OperationTypeInput is the create/edit form of an operation type.
type OperationTypeInput struct {
	Code        string  `json:"code" validate:"required,code"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// ErrorDictionaryInput is the create/edit form of an error dictionary entry.
type ErrorDictionaryInput struct {
	ErrorCode string  `json:"errorCode" validate:"required,code"`
	Message   string  `json:"message" validate:"required,max=2000"`
	Solution  *string `json:"solution,omitempty" validate:"omitempty,max=4000"`
	SystemID  *ID     `json:"systemId,omitempty"`
}

// ScheduleInput is the create/edit form of an on-call shift.
type ScheduleInput struct {
	ContactID *ID     `json:"contactId,omitempty"`
	GroupID   *ID     `json:"groupId,omitempty"`
	ShiftDate string  `json:"shiftDate" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string  `json:"endTime" validate:"required,datetime=15:04"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// AckInput acknowledges one or more alerts.
type AckInput struct {
	IDs  []ID   `json:"ids" validate:"required,min=1"`
	Note string `json:"note,omitempty" validate:"max=1000"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyName(name string) string { return name + " (Copy)" }

// Duplicate pre-fills a create form from an existing department.
func (d Department) Duplicate() any {
	active := d.IsActive
	return DepartmentInput{
		Name:        copyName(d.Name),
		DeptCode:    d.DeptCode,
		Description: optional(d.Description),
		ParentID:    d.ParentID,
		IsActive:    &active,
	}
}

// Duplicate pre-fills a create form from an existing contact.
func (c Contact) Duplicate() any {
	active := c.IsActive
	return ContactInput{
		FullName:     copyName(c.FullName),
		Phone:        c.Phone,
		Email:        optional(c.Email),
		Position:     optional(c.Position),
		DepartmentID: c.DepartmentID,
		IsActive:     &active,
	}
}

// Duplicate pre-fills a create form from an existing group.
func (g Group) Duplicate() any {
	active := g.IsActive
	return GroupInput{
		Name:        copyName(g.Name),
		Code:        g.Code,
		Description: optional(g.Description),
		ContactIDs:  append([]ID(nil), g.ContactIDs...),
		IsActive:    &active,
	}
}

// Duplicate pre-fills a create form from an existing role.
func (r Role) Duplicate() any {
	return RoleInput{
		Name:        copyName(r.Name),
		Code:        r.Code,
		Description: optional(r.Description),
		Permissions: append([]string(nil), r.Permissions...),
	}
}
