package paypal

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

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"novelhub-backend/internal/config"
)

var (
	ErrOrderNotApproved = errors.New("paypal order not approved by payer")
	ErrAlreadyCaptured  = errors.New("paypal order already captured")
)

// APIError là lỗi trả về từ PayPal REST API
type APIError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	Details    []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal %d %s: %s", e.StatusCode, e.Name, e.Message)
}

func (e *APIError) hasIssue(issue string) bool {
	for _, d := range e.Details {
		if d.Issue == issue {
			return true
		}
	}
	return false
}

// Client gọi PayPal Orders v2; access token lấy bằng OAuth2 client-credentials
type Client struct {
	baseURL    string
	returnURL  string
	cancelURL  string
	httpClient *http.Client
}

func NewClient(ctx context.Context, cfg config.PayPalConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.Secret,
		TokenURL:     base + "/v1/oauth2/token",
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = 20 * time.Second

	return &Client{
		baseURL:    base,
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
		httpClient: httpClient,
	}
}

// CreateOrderInput mô tả một đơn mua gói coin
type CreateOrderInput struct {
	ReferenceID string // id của payment order nội bộ
	Description string
	Amount      decimal.Decimal
	Currency    string
}

type Order struct {
	ID         string
	Status     string
	ApproveURL string
}

type Capture struct {
	OrderID     string
	CaptureID   string
	Status      string
	Amount      decimal.Decimal
	Currency    string
	ReferenceID string
	PayerEmail  string
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": in.ReferenceID,
			"description":  in.Description,
			"amount":       amount{CurrencyCode: in.Currency, Value: in.Amount.StringFixed(2)},
		}},
		"application_context": map[string]string{
			"return_url":          c.returnURL,
			"cancel_url":          c.cancelURL,
			"user_action":         "PAY_NOW",
			"shipping_preference": "NO_SHIPPING",
		},
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []link `json:"links"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return nil, err
	}

	order := &Order{ID: out.ID, Status: out.Status}
	for _, l := range out.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			order.ApproveURL = l.Href
		}
	}
	return order, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	var out struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			Payments    struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
					Amount amount `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
		Payer struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
	}

	err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.hasIssue("ORDER_ALREADY_CAPTURED"):
				return nil, ErrAlreadyCaptured
			case apiErr.hasIssue("ORDER_NOT_APPROVED"):
				return nil, ErrOrderNotApproved
			}
		}
		return nil, err
	}

	capture := &Capture{OrderID: out.ID, Status: out.Status, PayerEmail: out.Payer.EmailAddress}
	if len(out.PurchaseUnits) > 0 {
		pu := out.PurchaseUnits[0]
		capture.ReferenceID = pu.ReferenceID
		if len(pu.Payments.Captures) > 0 {
			cap0 := pu.Payments.Captures[0]
			capture.CaptureID = cap0.ID
			capture.Currency = cap0.Amount.CurrencyCode
			if v, err := decimal.NewFromString(cap0.Amount.Value); err == nil {
				capture.Amount = v
			}
		}
	}
	return capture, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal paypal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return nil
}
