package payment

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"strconv"

	"formhive-be/internal/apperr"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

const ProviderMidtrans = "midtrans"

// midtransNotification is the subset of the notification body needed
// for signature verification and event normalization.
type midtransNotification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	Currency          string `json:"currency"`
	FraudStatus       string `json:"fraud_status"`
	StatusMessage     string `json:"status_message"`
	SignatureKey      string `json:"signature_key"`
}

type MidtransProvider struct {
	serverKey  string
	snapClient snap.Client
	finishURL  string
}

func NewMidtransProvider(serverKey string, production bool, finishURL string) *MidtransProvider {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var sClient snap.Client
	sClient.New(serverKey, env)
	return &MidtransProvider{
		serverKey:  serverKey,
		snapClient: sClient,
		finishURL:  finishURL,
	}
}

func (p *MidtransProvider) Name() string {
	return ProviderMidtrans
}

// VerifySignature checks the midtrans notification signature:
// SHA512(order_id + status_code + gross_amount + server_key).
// Midtrans carries the signature in the body rather than a header, so
// only the fields the digest needs are decoded here; business parsing
// happens in ParseEvent after the check passes.
func (p *MidtransProvider) VerifySignature(headers map[string]string, rawBody []byte) error {
	if p.serverKey == "" {
		return fmt.Errorf("%w: midtrans server key not configured", apperr.ErrTransientProvider)
	}

	var n midtransNotification
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return fmt.Errorf("%w: malformed notification body", apperr.ErrInvalidSignature)
	}

	input := n.OrderID + n.StatusCode + n.GrossAmount + p.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	if n.SignatureKey != expected {
		return fmt.Errorf("%w: midtrans signature mismatch for order %s", apperr.ErrInvalidSignature, n.OrderID)
	}
	return nil
}

func (p *MidtransProvider) ParseEvent(rawBody []byte) (*Event, error) {
	var n midtransNotification
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return nil, fmt.Errorf("failed to parse midtrans notification: %w", err)
	}

	gross, _ := strconv.ParseFloat(n.GrossAmount, 64)

	evt := &Event{
		// Midtrans has no dedicated event id; the transaction id plus
		// status is stable across re-deliveries of the same fact.
		ID:                    fmt.Sprintf("%s:%s:%s", ProviderMidtrans, n.TransactionID, n.TransactionStatus),
		OrderID:               n.OrderID,
		ProviderTransactionID: n.TransactionID,
		GrossAmount:           gross,
		Currency:              n.Currency,
		RawStatus:             n.TransactionStatus,
	}

	switch n.TransactionStatus {
	case "capture", "settlement":
		evt.Category = EventPaymentSucceeded
	case "deny", "expire", "failure":
		evt.Category = EventPaymentFailed
		evt.FailureCode = n.StatusCode
		evt.FailureMessage = n.StatusMessage
	case "cancel", "refund", "partial_refund":
		evt.Category = EventCancelled
	case "pending":
		evt.Category = EventPaymentPending
	default:
		evt.Category = EventUnknown
	}

	return evt, nil
}

func (p *MidtransProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTransientProvider, err)
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  params.OrderID.String(),
			GrossAmt: int64(params.Amount),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: p.finishURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: params.CustomerName,
			Email: params.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    params.ItemID.String(),
				Price: int64(params.Amount),
				Qty:   1,
				Name:  params.ItemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := p.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		// The gateway call is network-bound; callers retry later.
		return nil, fmt.Errorf("%w: midtrans: %v", apperr.ErrTransientProvider, midErr.GetMessage())
	}

	return &CheckoutSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
