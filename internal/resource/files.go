package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/types"
)

// Content types used for spreadsheet exchange.
const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timestampLayout = "20060102_150405"
)

// ImportExtensions are the file types the import endpoints accept.
var ImportExtensions = []string{".xlsx", ".xls", ".csv", ".txt"}

// Blob is a downloaded file.
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportResult is the server's verdict on an uploaded file. Message is shown
// to the user as is; row-level outcomes are not interpreted.
type ImportResult struct {
	Message  string
	Imported int
	Failed   int
}

// ExportToExcel downloads the resource as a workbook. The file is always
// named "<resource>_<YYYYMMDD_HHMMSS><ext>", where ext comes from the
// server's filename and defaults to .xlsx.
func (s *Service[T]) ExportToExcel(ctx context.Context, filters endpoints.Query) (*Blob, error) {
	blob, err := s.download(ctx, s.res.Export(filters))
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(blob.Filename))
	if ext == "" {
		ext = ".xlsx"
	}
	blob.Filename = fmt.Sprintf("%s_%s%s", s.res.Name, s.now().Format(timestampLayout), ext)
	s.logger.Info("export downloaded", logging.Filename(blob.Filename), zap.Int("bytes", len(blob.Data)))
	return blob, nil
}

// DownloadTemplate fetches the import template, keeping the server's
// filename when it sends one.
func (s *Service[T]) DownloadTemplate(ctx context.Context) (*Blob, error) {
	blob, err := s.download(ctx, s.res.Template())
	if err != nil {
		return nil, err
	}
	if blob.Filename == "" {
		blob.Filename = s.res.Name + "_template.xlsx"
	}
	s.logger.Info("template downloaded", logging.Filename(blob.Filename))
	return blob, nil
}

func (s *Service[T]) download(ctx context.Context, path string) (*Blob, error) {
	resp, err := s.do(ctx, http.MethodGet, path, nil, "", XLSXContentType+", application/octet-stream, */*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readError(resp, nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s download: %w", s.res.Name, err)
	}

	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		// A JSON body on a download endpoint is an envelope reporting failure.
		if env, err := types.Parse(data); err == nil && (env.Failed() || env.Message != "") {
			return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
		}
	}
	if ct == "" {
		ct = XLSXContentType
	}
	return &Blob{
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		ContentType: ct,
		Data:        data,
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return filepath.Base(params["filename"])
}

// SupportedImport reports whether filename has an accepted extension.
func SupportedImport(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range ImportExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ImportFromExcel uploads r as the multipart field "file".
func (s *Service[T]) ImportFromExcel(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	if s.res.ReadOnly {
		return nil, ErrReadOnly
	}
	if !SupportedImport(filename) {
		return nil, fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedFile, filepath.Base(filename), strings.Join(ImportExtensions, ", "))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	_, env, err := s.call(ctx, http.MethodPost, s.res.Import(), &buf, mw.FormDataContentType(), nil)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Message: env.Message}
	var counts types.ImportResponse
	if firstByte(env.Data) == '{' {
		if err := json.Unmarshal(env.Data, &counts); err == nil {
			res.Imported, res.Failed = counts.Imported, counts.Failed
		}
	}
	if res.Message == "" {
		res.Message = "import completed"
	}
	s.logger.Info("import uploaded", logging.Filename(filepath.Base(filename)), zap.String("message", res.Message))
	return res, nil
}
