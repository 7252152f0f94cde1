package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hostbr/deploybot/internal/domain"
)

const defaultBaseURL = "https://api.mercadopago.com/v1"

const (
	createTimeout = 15 * time.Second
	queryTimeout  = 10 * time.Second
)

// MercadoPago is the real PIX payment provider client.
type MercadoPago struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewMercadoPago returns a provider client using the given access token.
func NewMercadoPago(token string, logger *slog.Logger) *MercadoPago {
	return &MercadoPago{
		baseURL: defaultBaseURL,
		token:   token,
		client:  &http.Client{Timeout: createTimeout},
		logger:  logger,
	}
}

// apiError carries the provider HTTP status so callers can distinguish
// auth/validation failures from transient ones.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("payment provider error (status %d): %s", e.Status, e.Message)
}

// isAuthOrValidation reports whether the error should downgrade the flow
// to simulated mode instead of failing the user.
func isAuthOrValidation(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusUnauthorized || ae.Status == http.StatusBadRequest || ae.Status == http.StatusForbidden
	}
	return false
}

type mpPayer struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Identification struct {
		Type   string `json:"type"`
		Number string `json:"number"`
	} `json:"identification"`
}

type mpCreateRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             mpPayer `json:"payer"`
	ExternalReference string  `json:"external_reference"`
}

type mpPayment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	TransactionAmount  float64     `json:"transaction_amount"`
	DateCreated        time.Time   `json:"date_created"`
	DateApproved       *time.Time  `json:"date_approved"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (p mpPayment) toIntent() domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:           p.ID.String(),
		Status:       domain.PaymentStatus(p.Status),
		StatusDetail: p.StatusDetail,
		Amount:       p.TransactionAmount,
		QRCode:       p.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: p.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:    p.PointOfInteraction.TransactionData.TicketURL,
		CreatedAt:    p.DateCreated,
		ApprovedAt:   p.DateApproved,
	}
}

// CreatePixPayment creates a PIX payment intent for the payer.
func (m *MercadoPago) CreatePixPayment(ctx context.Context, amount float64, description string, payer domain.PayerIdentity) (domain.PaymentIntent, error) {
	first, last := payer.FirstLastName()
	reqBody := mpCreateRequest{
		TransactionAmount: amount,
		Description:       description,
		PaymentMethodID:   "pix",
		ExternalReference: fmt.Sprintf("discord_%d", time.Now().UnixMilli()),
	}
	reqBody.Payer.Email = payer.Email
	reqBody.Payer.FirstName = first
	reqBody.Payer.LastName = last
	reqBody.Payer.Identification.Type = "CPF"
	reqBody.Payer.Identification.Number = payer.TaxID

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	var out mpPayment
	headers := map[string]string{"X-Idempotency-Key": uuid.NewString()}
	if err := m.do(ctx, http.MethodPost, "/payments", reqBody, headers, &out); err != nil {
		return domain.PaymentIntent{}, err
	}
	m.logger.Info("pix payment created", "payment_id", out.ID.String(), "amount", amount)
	return out.toIntent(), nil
}

// PaymentStatus fetches the current state of a payment.
func (m *MercadoPago) PaymentStatus(ctx context.Context, paymentID string) (domain.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out mpPayment
	if err := m.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, nil, &out); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return domain.PaymentIntent{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
		}
		return domain.PaymentIntent{}, err
	}
	return out.toIntent(), nil
}

// CancelPayment asks the provider to cancel a pending payment.
func (m *MercadoPago) CancelPayment(ctx context.Context, paymentID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	body := map[string]string{"status": "cancelled"}
	if err := m.do(ctx, http.MethodPut, "/payments/"+paymentID, body, nil, nil); err != nil {
		return err
	}
	m.logger.Info("payment cancelled", "payment_id", paymentID)
	return nil
}

func (m *MercadoPago) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := decodeErrorMessage(resp.Body)
		return &apiError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || payload.Message == "" {
		return "request failed"
	}
	return payload.Message
}
