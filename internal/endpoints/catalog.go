package endpoints

import (
	"net/http"
	"strings"
)

// Shape names the paginated body layout a resource's list endpoint returns.
type Shape int

const (
	// ShapeData is {data: [...], total, page, size}.
	ShapeData Shape = iota
	// ShapeContent is {content: [...], totalElements, totalPages, currentPage, pageSize}.
	ShapeContent
)

// DeleteMode names how a resource's delete endpoint takes ids.
type DeleteMode int

const (
	// DeleteQuery sends one request with ids comma-joined in the "ids" parameter.
	DeleteQuery DeleteMode = iota
	// DeletePath sends one request per id with the id as a path segment.
	DeletePath
)

// CopyMode names how a record is duplicated.
type CopyMode int

const (
	// CopyNone means the resource cannot be copied.
	CopyNone CopyMode = iota
	// CopyServer calls the resource's copy endpoint.
	CopyServer
	// CopyClient pre-fills a create form from the record and submits it.
	CopyClient
)

// Resource describes one REST resource and the quirks of its endpoints.
type Resource struct {
	Name         string
	Base         string
	Shape        Shape
	PageBase     int
	DeleteMode   DeleteMode
	UpdateMethod string
	CopyMode     CopyMode
	ReadOnly     bool
}

// List is the paginated collection endpoint.
func (r Resource) List(p ListParams) string {
	return r.Base + "/list" + BuildQueryString(ListQuery(p, r.PageBase))
}

// Detail is the single-record endpoint.
func (r Resource) Detail(id string) string { return WithID(r.Base, id) }

// ByCode is the lookup-by-code endpoint.
func (r Resource) ByCode(code string) string { return WithID(r.Base+"/code", code) }

// Create is the create endpoint.
func (r Resource) Create() string { return r.Base + "/create" }

// Edit is the update endpoint for id.
func (r Resource) Edit(id string) string { return WithID(r.Base+"/edit", id) }

// Delete is the delete endpoint for a batch of ids (DeleteQuery).
func (r Resource) Delete(ids []string) string {
	return r.Base + "/delete" + BuildQueryString(Query{}.Add("ids", strings.Join(ids, ",")))
}

// DeleteOne is the delete endpoint for a single id (DeletePath).
func (r Resource) DeleteOne(id string) string { return WithID(r.Base+"/delete", id) }

// Copy is the server-side duplication endpoint.
func (r Resource) Copy(id string) string { return WithID(r.Base+"/copy", id) }

// Export is the Excel export endpoint with optional filters.
func (r Resource) Export(filters Query) string {
	return r.Base + "/export" + BuildQueryString(filters)
}

// Import is the Excel upload endpoint.
func (r Resource) Import() string { return r.Base + "/import" }

// Template is the import template download endpoint.
func (r Resource) Template() string { return r.Base + "/template" }

// Auth endpoints.
const (
	AuthLogin   = "/api/auth/login"
	AuthLogout  = "/api/auth/logout"
	AuthRefresh = "/api/auth/refresh"
	AuthProfile = "/api/auth/me"
)

// AlertAck acknowledges alerts.
const AlertAck = "/api/alert/ack"

// The resource catalog. Envelope shape, page numbering and delete style are
// those each endpoint actually exposes.
var (
	Systems = Resource{
		Name: "system", Base: "/api/system",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPost, CopyMode: CopyServer,
	}
	Contacts = Resource{
		Name: "contact", Base: "/api/contact",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPost, CopyMode: CopyClient,
	}
	Groups = Resource{
		Name: "group", Base: "/api/group",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPost, CopyMode: CopyClient,
	}
	AlertRules = Resource{
		Name: "alert-rule", Base: "/api/alert-rule",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeletePath,
		UpdateMethod: http.MethodPut, CopyMode: CopyServer,
	}
	Departments = Resource{
		Name: "department", Base: "/api/department",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPost, CopyMode: CopyClient,
	}
	Roles = Resource{
		Name: "role", Base: "/api/role",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeletePath,
		UpdateMethod: http.MethodPut, CopyMode: CopyClient,
	}
	SystemCatalog = Resource{
		Name: "system-catalog", Base: "/api/system-catalog",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPut, CopyMode: CopyServer,
	}
	SysSeverities = Resource{
		Name: "sys-severity", Base: "/api/sys-severity",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPut, CopyMode: CopyServer,
	}
	OperationTypes = Resource{
		Name: "operation-type", Base: "/api/operation-type",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPut, CopyMode: CopyServer,
	}
	ErrorDictionary = Resource{
		Name: "error-dictionary", Base: "/api/error-dictionary",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPut, CopyMode: CopyServer,
	}
	Logs = Resource{
		Name: "log", Base: "/api/log",
		Shape: ShapeContent, PageBase: 0, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPut, CopyMode: CopyNone, ReadOnly: true,
	}
	Schedules = Resource{
		Name: "schedule", Base: "/api/schedule",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeletePath,
		UpdateMethod: http.MethodPost, CopyMode: CopyServer,
	}
	Alerts = Resource{
		Name: "alert", Base: "/api/alert",
		Shape: ShapeData, PageBase: 1, DeleteMode: DeleteQuery,
		UpdateMethod: http.MethodPost, CopyMode: CopyNone,
	}
)

// All lists every resource in the catalog.
func All() []Resource {
	return []Resource{
		Systems, Contacts, Groups, AlertRules, Departments, Roles, SystemCatalog,
		SysSeverities, OperationTypes, ErrorDictionary, Logs, Schedules, Alerts,
	}
}

// Lookup finds a catalog resource by name.
func Lookup(name string) (Resource, bool) {
	for _, r := range All() {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}
