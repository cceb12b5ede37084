package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CourierBot/model"

	"github.com/rs/zerolog/log"
)

const providerService = "provider"

// ProviderClient calls the delivery provider's REST API. Every response is
// wrapped in an {isSuccess, data, message, errors} envelope.
type ProviderClient struct {
	baseURL string
	client  *http.Client
}

func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	IsSuccess  bool            `json:"isSuccess"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	MessageAlt string          `json:"Message"`
	Errors     json.RawMessage `json:"errors"`
}

// reason returns the most specific failure text the provider gave.
func (e *envelope) reason() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.MessageAlt != "":
		return e.MessageAlt
	case len(e.Errors) > 0 && string(e.Errors) != "null":
		var list []string
		if err := json.Unmarshal(e.Errors, &list); err == nil {
			return strings.Join(list, ", ")
		}
		return string(e.Errors)
	}
	return ""
}

func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (c *ProviderClient) do(ctx context.Context, op, method, path, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error building %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("service", providerService).Str("op", op).Msg("request failed")
		return nil, model.NewExternalServiceError(providerService, op, "A critical error occurred.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s: %w", op, model.ErrAuthExpired)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Error().Err(err).Str("service", providerService).Str("op", op).Int("status", resp.StatusCode).Msg("undecodable response")
		return nil, model.NewExternalServiceError(providerService, op, fmt.Sprintf("Unexpected response (HTTP %d).", resp.StatusCode), err)
	}
	if resp.StatusCode >= 300 || !env.IsSuccess {
		msg := env.reason()
		if msg == "" {
			msg = "An unknown error occurred."
		}
		log.Error().Str("service", providerService).Str("op", op).Int("status", resp.StatusCode).Str("reason", msg).Msg("request rejected")
		return nil, model.NewExternalServiceError(providerService, op, msg, nil)
	}
	return env.Data, nil
}

func decode[T any](op string, raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, model.NewExternalServiceError(providerService, op, "Unexpected response from the delivery service.", err)
	}
	return out, nil
}

// SendLoginCode asks the provider to send an OTP to phone and returns the code
// the provider echoes back.
func (c *ProviderClient) SendLoginCode(ctx context.Context, phone string) (string, error) {
	data, err := c.do(ctx, "login-send-code", http.MethodPost, "/auth/login-send-code", "", map[string]string{"username": phone})
	if err != nil {
		return "", err
	}
	return rawText(data), nil
}

// CheckLoginCode exchanges the OTP for a bearer token.
func (c *ProviderClient) CheckLoginCode(ctx context.Context, phone, code string) (string, error) {
	const op = "login-check-code"
	data, err := c.do(ctx, op, http.MethodPost, "/auth/login-check-code", "", map[string]string{"username": phone, "code": code})
	if err != nil {
		return "", err
	}
	out, err := decode[struct {
		Token string `json:"token"`
	}](op, data)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", model.NewExternalServiceError(providerService, op, "Login failed. Please try again.", nil)
	}
	return out.Token, nil
}

func (c *ProviderClient) AddFunds(ctx context.Context, token string, amount int) error {
	q := url.Values{"amount": {strconv.Itoa(amount)}}
	_, err := c.do(ctx, "payment-add", http.MethodGet, "/payment/add?"+q.Encode(), token, nil)
	return err
}

// Balance returns the balance as the provider formats it.
func (c *ProviderClient) Balance(ctx context.Context, token string) (string, error) {
	data, err := c.do(ctx, "payment-balance", http.MethodGet, "/payment/balance", token, nil)
	if err != nil {
		return "", err
	}
	return rawText(data), nil
}

func (c *ProviderClient) QuoteSingle(ctx context.Context, token string, req model.SingleQuoteRequest) (model.Quote, error) {
	const op = "single-calc-cost"
	data, err := c.do(ctx, op, http.MethodPost, "/pricing/single-calc-cost", token, req)
	if err != nil {
		return model.Quote{}, err
	}
	return decode[model.Quote](op, data)
}

func (c *ProviderClient) QuoteGroup(ctx context.Context, token string, req model.GroupQuoteRequest) (model.Quote, error) {
	const op = "group-calc-cost"
	data, err := c.do(ctx, op, http.MethodPost, "/pricing/group-calc-cost", token, req)
	if err != nil {
		return model.Quote{}, err
	}
	return decode[model.Quote](op, data)
}

func (c *ProviderClient) SubmitSingle(ctx context.Context, token string, p model.SinglePayload) error {
	_, err := c.do(ctx, "order-single", http.MethodPost, "/order/single", token, p)
	return err
}

func (c *ProviderClient) SubmitGroup(ctx context.Context, token string, p model.GroupPayload) error {
	_, err := c.do(ctx, "order-group", http.MethodPost, "/order/group", token, p)
	return err
}

type pickupWindow struct {
	StartDateTime string `json:"startDateTime"`
	Deliveries    []struct {
		StartDateTime string `json:"startDateTime"`
	} `json:"deliveries"`
}

// TimeSlots lists today's pickup windows that have a drop-off window.
func (c *ProviderClient) TimeSlots(ctx context.Context, token string) ([]model.TimeSlot, error) {
	const op = "sameDay-activeTimes"
	data, err := c.do(ctx, op, http.MethodGet, "/order/sameDay-activeTimes", token, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	windows, err := decode[[]pickupWindow](op, data)
	if err != nil {
		return nil, err
	}
	var slots []model.TimeSlot
	for _, w := range windows {
		if len(w.Deliveries) == 0 || w.Deliveries[0].StartDateTime == "" {
			continue
		}
		slots = append(slots, model.TimeSlot{
			PickupStartTime:  w.StartDateTime,
			DropOffStartTime: w.Deliveries[0].StartDateTime,
		})
	}
	return slots, nil
}

// IsFundsError reports whether a provider failure is about the account balance.
func IsFundsError(err error) bool {
	var ext *model.ExternalServiceError
	if !errors.As(err, &ext) {
		return false
	}
	msg := strings.ToLower(ext.Message)
	return strings.Contains(msg, "balance") || strings.Contains(msg, "insufficient") || strings.Contains(msg, "funds")
}
