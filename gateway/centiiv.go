package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CurrencyNGN = "NGN"

	paymentsPath = "/api/v1/payments"
	maxBodyBytes = 1 << 20
)

// ErrUnsuccessful is returned when the gateway answers 2xx but does not
// report success or omits the payment id or link.
var ErrUnsuccessful = errors.New("gateway did not report a successful payment")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}

type PaymentMetadata struct {
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	ProgramType string `json:"programType"`
}

type PaymentRequest struct {
	Amount      float64         `json:"amount"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Currency    string          `json:"currency"`
	Note        string          `json:"note"`
	CallbackURL string          `json:"callback_url"`
	WebhookURL  string          `json:"webhook_url"`
	Metadata    PaymentMetadata `json:"metadata"`
}

// Payment is the gateway-side payment intent: its id and the URL the payer
// is redirected to.
type Payment struct {
	ID   string
	Link string
}

type createPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID   PaymentID `json:"id"`
		Link string    `json:"link"`
	} `json:"data"`
}

// Client talks to the Centiiv payments API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreatePayment creates a payment intent. The request is bound to ctx so a
// cancelled inbound request cancels the outbound call too.
func (c *Client) CreatePayment(ctx context.Context, in PaymentRequest) (*Payment, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+paymentsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var out createPaymentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if !out.Success {
		if out.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, out.Message)
		}
		return nil, ErrUnsuccessful
	}
	if out.Data.ID == "" || out.Data.Link == "" {
		return nil, fmt.Errorf("%w: missing payment id or link", ErrUnsuccessful)
	}
	return &Payment{ID: string(out.Data.ID), Link: out.Data.Link}, nil
}

type requestIDKey struct{}

// WithRequestID stores id in ctx so outbound calls carry the same
// X-Request-ID as the inbound request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestID(ctx context.Context) string {
	if id := RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
