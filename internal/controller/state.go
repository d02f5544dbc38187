package controller

import (
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/models"
)

// Dialog is the modal currently open on a page.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogCreate
	DialogEdit
	DialogCopy
	DialogDelete
	DialogBulkDelete
)

func (d Dialog) String() string {
	switch d {
	case DialogCreate:
		return "create"
	case DialogEdit:
		return "edit"
	case DialogCopy:
		return "copy"
	case DialogDelete:
		return "deleteConfirm"
	case DialogBulkDelete:
		return "bulkDeleteConfirm"
	default:
		return "none"
	}
}

// State is a snapshot of a page's view state.
type State struct {
	Page     int
	Limit    int
	Keyword  string
	SortKey  string
	SortDir  string
	Selected []models.ID
	Dialog   Dialog
	Target   models.ID // record of the edit, copy or delete dialog
}

// Params converts the state to list filters.
func (s State) Params() endpoints.ListParams {
	return endpoints.ListParams{
		Page:    s.Page,
		Limit:   s.Limit,
		Keyword: s.Keyword,
		SortKey: s.SortKey,
		SortDir: s.SortDir,
	}
}
