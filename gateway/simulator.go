package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Govind-619/JewelSphere/models"
)

const (
	SimulatorName = "simulator"
	// SimulatorSignatureHeader carries the HMAC of a simulator callback body.
	SimulatorSignatureHeader = "X-Callback-Signature"
)

// Simulator stands in for a real processor in development and tests. Its
// links point back at this service's simulate endpoint.
type Simulator struct {
	BaseURL string
	Secret  string
	// RejectReason, when set, makes every Initiate refuse with that reason.
	RejectReason string
}

// SimulatorCallback is the JSON body accepted by the simulator callback.
type SimulatorCallback struct {
	TxRef         string `json:"tx_ref"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func NewSimulator(baseURL, secret string) *Simulator {
	return &Simulator{BaseURL: strings.TrimRight(baseURL, "/"), Secret: secret}
}

func (s *Simulator) Name() string { return SimulatorName }

func (s *Simulator) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return InitiateResult{}, err
	}
	if s.RejectReason != "" {
		return Rejected(s.RejectReason), nil
	}
	return InitiateResult{Accepted: true, Link: s.LinkFor(req.TxRef)}, nil
}

// LinkFor returns the simulated checkout URL of an attempt.
func (s *Simulator) LinkFor(txRef string) string {
	return fmt.Sprintf("%s/payments/simulate/%s", s.BaseURL, txRef)
}

func (s *Simulator) ParseNotification(header http.Header, body []byte) (Notification, error) {
	if err := verifySignature(body, s.Secret, header.Get(SimulatorSignatureHeader)); err != nil {
		return Notification{}, err
	}

	var cb SimulatorCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	if cb.TxRef == "" {
		return Notification{}, fmt.Errorf("%w: missing tx_ref", ErrMalformedNotification)
	}

	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(cb.Status)))
	if !status.Terminal() {
		return Notification{}, fmt.Errorf("%w: status %q", ErrUnsupportedEvent, cb.Status)
	}

	n := Notification{TxRef: cb.TxRef, Status: status}
	if cb.TransactionID != "" {
		id := cb.TransactionID
		n.TransactionID = &id
	}
	return n, nil
}
