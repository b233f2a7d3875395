// Package audit delivers audit-log events and side-effect telemetry on a
// fire-and-forget basis. Nothing in here ever returns an error to the
// caller; a primary operation must not fail because its audit trail did.
package audit

import (
	"github.com/haree-hq/haree/config"
)

type Service struct {
	Influx *config.InfluxClient
}

func NewService(influx *config.InfluxClient) *Service {
	return &Service{Influx: influx}
}

// Log records a business action against an entity.
func (s *Service) Log(tenantID, action, entityID string, metadata map[string]interface{}, severity string) {
	config.Logger.WithField("tenant_id", tenantID).
		WithField("action", action).
		WithField("entity_id", entityID).
		WithField("severity", severity).
		WithField("metadata", metadata).
		Info("audit")

	if s.Influx == nil {
		return
	}

	fields := map[string]interface{}{"entity_id": entityID}
	for k, v := range metadata {
		fields[k] = v
	}

	s.Influx.NewPoint("audit_events", map[string]string{
		"tenant_id": tenantID,
		"action":    action,
		"severity":  severity,
	}, fields)
}

// SideEffectFailure counts a failed best-effort integration (for example a
// ledger posting triggered from an invoice flow) so operators can detect
// drift between primary records and their ledger side effects.
func (s *Service) SideEffectFailure(tenantID, operation string, err error) {
	config.Logger.WithField("tenant_id", tenantID).
		WithField("operation", operation).
		Errorf("best-effort side effect failed: %v", err)

	if s.Influx == nil {
		return
	}

	s.Influx.NewPoint("side_effect_failures", map[string]string{
		"tenant_id": tenantID,
		"operation": operation,
	}, map[string]interface{}{
		"error": err.Error(),
	})
}
