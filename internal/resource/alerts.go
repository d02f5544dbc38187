package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/fetch"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/models"
)

// AlertService adds the acknowledgment workflow to the alert resource.
type AlertService struct {
	*Service[models.Alert]
}

// NewAlerts creates the alert service.
func NewAlerts(f *fetch.Fetcher, logger *zap.Logger) *AlertService {
	return &AlertService{Service: New[models.Alert](endpoints.Alerts, f, logger)}
}

// Acknowledge marks the given alerts as acknowledged with an optional note.
// It only flips status on the server; nothing is dispatched.
func (s *AlertService) Acknowledge(ctx context.Context, ids []models.ID, note string) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	b, err := json.Marshal(models.AckInput{IDs: ids, Note: note})
	if err != nil {
		return err
	}
	if _, _, err := s.call(ctx, http.MethodPost, endpoints.AlertAck, bytes.NewReader(b), "application/json", nil); err != nil {
		return err
	}
	s.logger.Info("alerts acknowledged", logging.Count(len(ids)))
	return nil
}
