// Package types defines the wire shapes shared by every API response.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Envelope is the outer wrapper of every API response.
type Envelope struct {
	Success    *bool           `json:"success,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Failed reports whether the server explicitly flagged the call as unsuccessful.
func (e *Envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Parse decodes a response body. Bodies carrying none of the envelope fields
// (a bare record, a bare array) are returned as the Data of an empty envelope.
// An empty body yields an empty envelope.
func Parse(body []byte) (*Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Envelope{}, nil
	}
	if body[0] != '{' {
		if !json.Valid(body) {
			return nil, errors.New("response is not JSON")
		}
		return &Envelope{Data: body}, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	if !isEnvelope(probe) {
		return &Envelope{Data: body}, nil
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func isEnvelope(probe map[string]json.RawMessage) bool {
	for _, k := range []string{"success", "statusCode", "message", "data"} {
		if _, ok := probe[k]; ok {
			return true
		}
	}
	return false
}

// PageBody covers both paginated shapes the API returns:
// {data, total, page, size} and {content, totalElements, totalPages, currentPage, pageSize}.
type PageBody struct {
	Data          json.RawMessage `json:"data,omitempty"`
	Total         *int            `json:"total,omitempty"`
	Page          *int            `json:"page,omitempty"`
	Size          *int            `json:"size,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
	TotalElements *int            `json:"totalElements,omitempty"`
	TotalPages    *int            `json:"totalPages,omitempty"`
	CurrentPage   *int            `json:"currentPage,omitempty"`
	PageSize      *int            `json:"pageSize,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the data payload of a successful login or refresh.
type LoginResponse struct {
	Token            string `json:"token"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ImportResponse is the data payload returned by an import endpoint.
type ImportResponse struct {
	Imported int             `json:"imported,omitempty"`
	Failed   int             `json:"failed,omitempty"`
	Records  json.RawMessage `json:"records,omitempty"`
}

// Items returns whichever list field is present, preferring content when asked.
func (p *PageBody) Items(preferContent bool) json.RawMessage {
	first, second := p.Data, p.Content
	if preferContent {
		first, second = p.Content, p.Data
	}
	if len(first) > 0 && string(first) != "null" {
		return first
	}
	return second
}

// HasPaging reports whether any paging field is set.
func (p *PageBody) HasPaging() bool {
	return p.Total != nil || p.Page != nil || p.Size != nil ||
		p.TotalElements != nil || p.TotalPages != nil || p.CurrentPage != nil || p.PageSize != nil
}
