package service

import (
	"encoding/json"
	"strings"

	"opolo-api/gateway"
	"opolo-api/models"
)

// resourceIDPrefix is prepended by the gateway to payment ids when it
// reports them as metadata.resourceId.
const resourceIDPrefix = "DPL-"

// PaymentEvent is the part of a gateway webhook the relay understands.
type PaymentEvent struct {
	Event string           `json:"event"`
	Data  PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	ID       gateway.PaymentID `json:"id"`
	Status   string            `json:"status"`
	Metadata struct {
		ResourceID string `json:"resourceId"`
	} `json:"metadata"`
}

// ParsePaymentEvent decodes a raw webhook body.
func ParsePaymentEvent(raw []byte) (*PaymentEvent, error) {
	var ev PaymentEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// PaymentID resolves the payment id: data.id first, then
// data.metadata.resourceId without its "DPL-" prefix.
func (e *PaymentEvent) PaymentID() string {
	if id := strings.TrimSpace(string(e.Data.ID)); id != "" {
		return id
	}
	return strings.TrimSpace(strings.TrimPrefix(e.Data.Metadata.ResourceID, resourceIDPrefix))
}

// StatusText is the gateway's textual status, taken from the event name and
// falling back to data.status.
func (e *PaymentEvent) StatusText() string {
	if e.Event != "" {
		return e.Event
	}
	return e.Data.Status
}

// NormalizeStatus maps gateway vocabulary onto registration statuses with a
// case-insensitive substring match: anything containing "success" is a
// success, anything containing "fail" is a failure, everything else is still
// pending. The match is loose on purpose because the gateway's event names
// are not documented; swap this for an exact mapping once they are.
func NormalizeStatus(s string) models.RegistrationStatus {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "success"):
		return models.StatusSuccess
	case strings.Contains(s, "fail"):
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}
