// Package endpoints maps resources and operations to API URLs.
//
// Everything here is pure: no network access and no state.
package endpoints

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Param is one query string pair.
type Param struct {
	Key   string
	Value any
}

// Query is an ordered list of query string pairs.
type Query []Param

// Add appends a pair and returns the extended query.
func (q Query) Add(key string, value any) Query {
	return append(q, Param{Key: key, Value: value})
}

// BuildQueryString serializes q in order, dropping nil values, and returns
// "" when nothing is left or "?k=v&..." otherwise.
func BuildQueryString(q Query) string {
	parts := make([]string, 0, len(q))
	for _, p := range q {
		v, ok := stringify(p.Value)
		if !ok {
			continue
		}
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(v))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func stringify(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return fmt.Sprint(rv.Interface()), true
}

// WithID appends path-escaped segments to base.
func WithID(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListParams are the collection filters every list endpoint accepts.
type ListParams struct {
	Page    int // 1-based
	Limit   int
	Keyword string
	SortKey string
	SortDir string
}

// ListQuery builds the list query. pageBase converts the 1-based Page to the
// resource's own numbering. Empty optional filters are omitted.
func ListQuery(p ListParams, pageBase int) Query {
	page := p.Page
	if page < 1 {
		page = 1
	}
	q := Query{}.Add("page", page-1+pageBase)
	if p.Limit > 0 {
		q = q.Add("limit", p.Limit)
	}
	if p.SortKey != "" {
		q = q.Add("sort_key", p.SortKey)
		dir := strings.ToLower(p.SortDir)
		if dir != SortAsc && dir != SortDesc {
			dir = SortAsc
		}
		q = q.Add("sort_dir", dir)
	}
	if kw := strings.TrimSpace(p.Keyword); kw != "" {
		q = q.Add("keyword", kw)
	}
	return q
}
