package resource

import (
	"encoding/json"
	"fmt"

	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/types"
)

// Page is one page of a collection, always numbered from 1.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
}

// TotalPages returns the page count implied by Total and Size.
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		if p.Total > 0 {
			return 1
		}
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// decodePage normalizes either paginated shape into a Page. body is the full
// response; env is its parsed envelope. req supplies defaults for fields the
// server left out.
func decodePage[T any](r endpoints.Resource, body []byte, env *types.Envelope, req endpoints.ListParams) (*Page[T], error) {
	var pb types.PageBody
	raw := env.Data
	trimmed := firstByte(raw)

	switch {
	case trimmed == '[':
		// data is the list itself; paging may sit beside it at the top level.
		if err := json.Unmarshal(body, &pb); err != nil || !pb.HasPaging() {
			pb = types.PageBody{}
		}
		pb.Data, pb.Content = raw, nil
	case trimmed == '{':
		if err := json.Unmarshal(raw, &pb); err != nil {
			return nil, fmt.Errorf("decode %s page: %w", r.Name, err)
		}
	case len(raw) == 0 || string(raw) == "null":
		// no payload: empty page
	default:
		return nil, fmt.Errorf("decode %s page: unexpected payload", r.Name)
	}

	page := &Page[T]{Items: []T{}}
	if items := pb.Items(r.Shape == endpoints.ShapeContent); len(items) > 0 && string(items) != "null" {
		if err := json.Unmarshal(items, &page.Items); err != nil {
			return nil, fmt.Errorf("decode %s items: %w", r.Name, err)
		}
	}

	page.Total = firstOf(len(page.Items), pb.Total, pb.TotalElements)
	page.Size = firstOf(req.Limit, pb.Size, pb.PageSize)
	if page.Size == 0 {
		page.Size = len(page.Items)
	}

	requested := req.Page
	if requested < 1 {
		requested = 1
	}
	if raw := pick(pb.Page, pb.CurrentPage); raw != nil {
		page.Page = *raw - r.PageBase + 1
	} else {
		page.Page = requested
	}
	if page.Page < 1 {
		page.Page = 1
	}
	return page, nil
}

func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

func pick(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstOf(fallback int, vals ...*int) int {
	if v := pick(vals...); v != nil {
		return *v
	}
	return fallback
}
