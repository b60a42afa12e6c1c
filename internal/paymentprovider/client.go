// Package paymentprovider реализует клиент платёжного провайдера:
// создание клиентов, оформление hosted checkout сессий подписки
// и проверку подписи webhook-уведомлений.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного API.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithURL создаёт клиент с нестандартным адресом API, используется в тестах.
func NewClientWithURL(secretKey, apiURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		httpClient: httpClient,
	}
}

// API провайдера принимает form-encoded параметры.
func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values) (*http.Request, error) {
	reqURL := c.apiURL + path
	var body io.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("provider returned %s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("provider returned unexpected status: %s", resp.Status)
	}

	return json.Unmarshal(body, out)
}

// CreateCustomer создаёт клиента у провайдера для указанного email.
// UID пользователя кладётся в метаданные для обратной связи через webhook.
func (c *Client) CreateCustomer(ctx context.Context, email, userUID string) (*Customer, error) {
	const op = "paymentprovider.CreateCustomer"

	params := url.Values{}
	params.Set("email", email)
	params.Set("metadata[user_uid]", userUID)

	req, err := c.newRequest(ctx, http.MethodPost, "/customers", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var customer Customer
	if err := c.do(req, &customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// CreateCheckoutSession создаёт hosted checkout сессию подписки
// и возвращает её вместе с redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	params := url.Values{}
	params.Set("mode", "subscription")
	params.Set("customer", reqParams.CustomerID)
	params.Set("line_items[0][price]", reqParams.PriceID)
	params.Set("line_items[0][quantity]", "1")
	params.Set("success_url", reqParams.SuccessURL)
	params.Set("cancel_url", reqParams.CancelURL)
	params.Set("metadata[user_uid]", reqParams.UserUID)

	req, err := c.newRequest(ctx, http.MethodPost, "/checkout/sessions", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}
