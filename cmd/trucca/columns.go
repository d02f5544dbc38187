package main

import (
	"strconv"
	"strings"

	"github.com/truccaai/trucca/internal/models"
)

var (
	systemColumns = []string{"ID", "CODE", "NAME", "IP", "STATUS", "DEPARTMENT"}
	systemRow     = func(s models.System) []string {
		return []string{s.ID.String(), s.Code, s.Name, dash(s.IPAddress), dash(s.Status), optID(s.DepartmentID)}
	}

	contactColumns = []string{"ID", "NAME", "PHONE", "EMAIL", "POSITION", "ACTIVE"}
	contactRow     = func(c models.Contact) []string {
		return []string{c.ID.String(), c.FullName, c.Phone, dash(c.Email), dash(c.Position), yesNo(c.IsActive)}
	}

	groupColumns = []string{"ID", "CODE", "NAME", "MEMBERS", "ACTIVE"}
	groupRow     = func(g models.Group) []string {
		return []string{g.ID.String(), g.Code, g.Name, strconv.Itoa(len(g.ContactIDs)), yesNo(g.IsActive)}
	}

	alertRuleColumns = []string{"ID", "NAME", "SEVERITY", "SYSTEM", "CHANNELS", "ACTIVE"}
	alertRuleRow     = func(r models.AlertRule) []string {
		return []string{r.ID.String(), r.Name, r.SeverityCode, optID(r.SystemID), dash(strings.Join(r.Channels, ",")), yesNo(r.IsActive)}
	}

	departmentColumns = []string{"ID", "CODE", "NAME", "PARENT", "ACTIVE"}
	departmentRow     = func(d models.Department) []string {
		return []string{d.ID.String(), d.DeptCode, d.Name, optID(d.ParentID), yesNo(d.IsActive)}
	}

	roleColumns = []string{"ID", "CODE", "NAME", "PERMISSIONS"}
	roleRow     = func(r models.Role) []string {
		return []string{r.ID.String(), r.Code, r.Name, strconv.Itoa(len(r.Permissions))}
	}

	systemCatalogColumns = []string{"ID", "CODE", "NAME", "CATEGORY"}
	systemCatalogRow     = func(c models.SystemCatalog) []string {
		return []string{c.ID.String(), c.Code, c.Name, dash(c.Category)}
	}

	severityColumns = []string{"ID", "CODE", "NAME", "LEVEL", "COLOR"}
	severityRow     = func(s models.SysSeverity) []string {
		return []string{s.ID.String(), s.Code, s.Name, strconv.Itoa(s.Level), dash(s.Color)}
	}

	operationTypeColumns = []string{"ID", "CODE", "NAME"}
	operationTypeRow     = func(o models.OperationType) []string {
		return []string{o.ID.String(), o.Code, o.Name}
	}

	errorDictionaryColumns = []string{"ID", "CODE", "MESSAGE", "SYSTEM"}
	errorDictionaryRow     = func(e models.ErrorDictionary) []string {
		return []string{e.ID.String(), e.ErrorCode, truncate(e.Message, 60), optID(e.SystemID)}
	}

	logColumns = []string{"ID", "TIME", "ACTOR", "ACTION", "RESOURCE"}
	logRow     = func(l models.LogEntry) []string {
		return []string{l.ID.String(), dash(l.CreatedAt), dash(l.Actor), l.Action, dash(l.Resource)}
	}

	scheduleColumns = []string{"ID", "DATE", "START", "END", "CONTACT", "GROUP"}
	scheduleRow     = func(s models.Schedule) []string {
		return []string{s.ID.String(), s.ShiftDate, s.StartTime, s.EndTime, optID(s.ContactID), optID(s.GroupID)}
	}

	alertColumns = []string{"ID", "SEVERITY", "STATUS", "SYSTEM", "MESSAGE", "ACK BY"}
	alertRow     = func(a models.Alert) []string {
		return []string{a.ID.String(), a.SeverityCode, a.Status, dash(a.SystemName), truncate(a.Message, 60), dash(a.AckBy)}
	}
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
