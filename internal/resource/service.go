// Package resource exposes typed CRUD, import and export operations for each
// REST resource of the operations API.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/fetch"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/types"
)

// Duplicator is implemented by records that can pre-fill a create form with
// a copy of themselves.
type Duplicator interface {
	Duplicate() any
}

// Service performs the operations of one resource and decodes its records as T.
type Service[T any] struct {
	res     endpoints.Resource
	fetcher *fetch.Fetcher
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a service for r.
func New[T any](r endpoints.Resource, f *fetch.Fetcher, logger *zap.Logger) *Service[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service[T]{
		res:     r,
		fetcher: f,
		logger:  logger.With(logging.Component("resource"), logging.Resource(r.Name)),
		now:     time.Now,
	}
}

// Resource returns the endpoint descriptor the service calls.
func (s *Service[T]) Resource() endpoints.Resource { return s.res }

// Name returns the resource name.
func (s *Service[T]) Name() string { return s.res.Name }

// GetAll fetches one page. Any failure other than an expired session or a
// transport error unwraps to ErrFetchFailed.
func (s *Service[T]) GetAll(ctx context.Context, p endpoints.ListParams) (*Page[T], error) {
	body, env, err := s.call(ctx, http.MethodGet, s.res.List(p), nil, "", ErrFetchFailed)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[T](s.res, body, env, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	s.logger.Debug("page fetched", logging.Count(len(page.Items)), zap.Int("total", page.Total), zap.Int("page", page.Page))
	return page, nil
}

// GetByID fetches one record. Failures unwrap to ErrNotFound.
func (s *Service[T]) GetByID(ctx context.Context, id models.ID) (*T, error) {
	return s.getOne(ctx, s.res.Detail(id.String()))
}

// GetByCode fetches one record by its business code. Failures unwrap to ErrNotFound.
func (s *Service[T]) GetByCode(ctx context.Context, code string) (*T, error) {
	return s.getOne(ctx, s.res.ByCode(code))
}

func (s *Service[T]) getOne(ctx context.Context, path string) (*T, error) {
	_, env, err := s.call(ctx, http.MethodGet, path, nil, "", ErrNotFound)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord[T](env)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &APIError{Status: http.StatusOK, Message: "empty response", kind: ErrNotFound}
	}
	return rec, nil
}

// Create submits payload and returns the created record, or nil when the
// server acknowledged without echoing it.
func (s *Service[T]) Create(ctx context.Context, payload any) (*T, error) {
	if s.res.ReadOnly {
		return nil, ErrReadOnly
	}
	rec, err := s.sendJSON(ctx, http.MethodPost, s.res.Create(), payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("record created")
	return rec, nil
}

// Update submits payload for id using the resource's update method.
func (s *Service[T]) Update(ctx context.Context, id models.ID, payload any) (*T, error) {
	if s.res.ReadOnly {
		return nil, ErrReadOnly
	}
	rec, err := s.sendJSON(ctx, s.res.UpdateMethod, s.res.Edit(id.String()), payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("record updated", zap.String("id", id.String()))
	return rec, nil
}

// Delete removes the given records. An empty list is refused without a
// request. Path-style resources get one request per id and stop at the first
// failure.
func (s *Service[T]) Delete(ctx context.Context, ids []models.ID) error {
	if s.res.ReadOnly {
		return ErrReadOnly
	}
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	switch s.res.DeleteMode {
	case endpoints.DeletePath:
		for _, id := range ids {
			if _, _, err := s.call(ctx, http.MethodDelete, s.res.DeleteOne(id.String()), nil, "", nil); err != nil {
				return err
			}
		}
	default:
		raw := make([]string, len(ids))
		for i, id := range ids {
			raw[i] = id.String()
		}
		if _, _, err := s.call(ctx, http.MethodDelete, s.res.Delete(raw), nil, "", nil); err != nil {
			return err
		}
	}
	s.logger.Info("records deleted", logging.Count(len(ids)))
	return nil
}

// Copy duplicates the record id, either through the server's copy endpoint
// or by creating "<name> (Copy)" from the fetched record.
func (s *Service[T]) Copy(ctx context.Context, id models.ID) (*T, error) {
	switch s.res.CopyMode {
	case endpoints.CopyServer:
		rec, err := s.sendJSON(ctx, http.MethodPost, s.res.Copy(id.String()), nil)
		if err != nil {
			return nil, err
		}
		s.logger.Info("record copied", zap.String("id", id.String()))
		return rec, nil
	case endpoints.CopyClient:
		form, err := s.CopyForm(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.Create(ctx, form)
	default:
		return nil, ErrCopyUnsupported
	}
}

// CopyForm fetches id and returns the pre-filled create form for its copy.
func (s *Service[T]) CopyForm(ctx context.Context, id models.ID) (any, error) {
	if s.res.CopyMode != endpoints.CopyClient {
		return nil, ErrCopyUnsupported
	}
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, ok := any(*rec).(Duplicator)
	if !ok {
		return nil, ErrCopyUnsupported
	}
	return d.Duplicate(), nil
}

func (s *Service[T]) sendJSON(ctx context.Context, method, path string, payload any) (*T, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", s.res.Name, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	_, env, err := s.call(ctx, method, path, body, contentType, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](env)
}

// call sends one request and reads the body. Non-2xx responses and envelopes
// flagged success=false become *APIError wrapping kind.
func (s *Service[T]) call(ctx context.Context, method, path string, body io.Reader, contentType string, kind error) ([]byte, *types.Envelope, error) {
	resp, err := s.do(ctx, method, path, body, contentType, "")
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readError(resp, kind)
		s.logger.Debug("request rejected", logging.Method(method), logging.Path(path), logging.Status(resp.StatusCode), zap.String("message", apiErr.Message))
		return nil, nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", s.res.Name, err)
	}
	env, err := types.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s response: %w", s.res.Name, err)
	}
	if env.Failed() {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		status := env.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}
		return nil, nil, &APIError{Status: status, Message: msg, kind: kind}
	}
	return raw, env, nil
}

func (s *Service[T]) do(ctx context.Context, method, path string, body io.Reader, contentType, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.fetcher.URL(path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return s.fetcher.Do(req)
}

func decodeRecord[T any](env *types.Envelope) (*T, error) {
	if !env.HasData() || firstByte(env.Data) != '{' {
		return nil, nil
	}
	var rec T
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
