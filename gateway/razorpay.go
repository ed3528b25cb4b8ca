package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/utils"
	razorpay "github.com/razorpay/razorpay-go"
)

const (
	RazorpayName = "razorpay"
	// RazorpaySignatureHeader carries the webhook HMAC computed with the webhook secret.
	RazorpaySignatureHeader = "X-Razorpay-Signature"
)

// RazorpayConfig holds the credentials for the Razorpay adapter.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	CallbackURL   string
}

// paymentLinkAPI is the subset of the Razorpay client used here.
type paymentLinkAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay opens attempts as Razorpay payment links. The link's reference_id
// is the attempt's txRef, which the webhook echoes back.
type Razorpay struct {
	cfg   RazorpayConfig
	links paymentLinkAPI
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Razorpay{cfg: cfg, links: client.PaymentLink}
}

func (r *Razorpay) Name() string { return RazorpayName }

func (r *Razorpay) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	if r.cfg.KeyID == "" || r.cfg.KeySecret == "" {
		return Rejected("razorpay credentials are not configured"), nil
	}
	if err := ctx.Err(); err != nil {
		return InitiateResult{}, err
	}

	data := map[string]interface{}{
		"amount":         MinorUnits(req.Amount),
		"currency":       req.Currency,
		"accept_partial": false,
		"reference_id":   req.TxRef,
		"description":    req.Description,
		"customer": map[string]interface{}{
			"name":    req.Customer.Name,
			"email":   req.Customer.Email,
			"contact": req.Customer.Phone,
		},
		// the link is handed back to the caller; a link created after the
		// call timed out belongs to a FAILED attempt and must not reach the customer
		"notify": map[string]interface{}{
			"email": false,
			"sms":   false,
		},
		"notes": map[string]interface{}{
			"tx_ref": req.TxRef,
		},
	}
	if r.cfg.CallbackURL != "" {
		data["callback_url"] = r.cfg.CallbackURL
		data["callback_method"] = "get"
	}
	utils.LogDebug("Creating Razorpay payment link for tx_ref %s, amount %d %s", req.TxRef, data["amount"], req.Currency)

	link, err := r.links.Create(data, nil)
	if err != nil {
		utils.LogError("Razorpay refused payment link for tx_ref %s: %v", req.TxRef, err)
		return Rejected(err.Error()), nil
	}
	shortURL, _ := link["short_url"].(string)
	if shortURL == "" {
		return Rejected("razorpay returned no payment link"), nil
	}
	utils.LogInfo("Created Razorpay payment link %v for tx_ref %s", link["id"], req.TxRef)
	return InitiateResult{Accepted: true, Link: shortURL}, nil
}

type razorpayEntity struct {
	ID          string          `json:"id"`
	ReferenceID string          `json:"reference_id"`
	Status      string          `json:"status"`
	Notes       json.RawMessage `json:"notes"`
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink *struct {
			Entity razorpayEntity `json:"entity"`
		} `json:"payment_link"`
		Payment *struct {
			Entity razorpayEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseNotification maps payment link webhooks to attempt outcomes:
// payment_link.paid resolves SUCCESSFUL; payment_link.expired and
// payment_link.cancelled resolve FAILED. A failed payment on a still-open
// link is not final (the customer can try again on the same link) and is
// reported as ErrUnsupportedEvent.
func (r *Razorpay) ParseNotification(header http.Header, body []byte) (Notification, error) {
	if err := verifySignature(body, r.cfg.WebhookSecret, header.Get(RazorpaySignatureHeader)); err != nil {
		return Notification{}, err
	}

	var hook razorpayWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}

	var status models.PaymentStatus
	switch hook.Event {
	case "payment_link.paid":
		status = models.PaymentStatusSuccessful
	case "payment_link.expired", "payment_link.cancelled":
		status = models.PaymentStatusFailed
	default:
		return Notification{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, hook.Event)
	}

	if hook.Payload.PaymentLink == nil {
		return Notification{}, fmt.Errorf("%w: missing payment_link entity", ErrMalformedNotification)
	}
	txRef := hook.Payload.PaymentLink.Entity.ReferenceID
	if txRef == "" {
		txRef = noteTxRef(hook.Payload.PaymentLink.Entity.Notes)
	}
	if txRef == "" {
		return Notification{}, fmt.Errorf("%w: missing reference_id", ErrMalformedNotification)
	}

	n := Notification{TxRef: txRef, Status: status}
	if hook.Payload.Payment != nil && hook.Payload.Payment.Entity.ID != "" {
		id := hook.Payload.Payment.Entity.ID
		n.TransactionID = &id
	}
	return n, nil
}

// noteTxRef reads tx_ref from a notes field, which Razorpay sends as an
// empty array when no notes are set.
func noteTxRef(raw json.RawMessage) string {
	var notes map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &notes) != nil {
		return ""
	}
	ref, _ := notes["tx_ref"].(string)
	return ref
}
