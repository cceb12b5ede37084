package repo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CourierBot/model"
	"CourierBot/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, h http.HandlerFunc) *repo.ProviderClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return repo.NewProviderClient(srv.URL, 5*time.Second)
}

func TestProviderClient(t *testing.T) {
	ctx := context.Background()

	t.Run("login exchanges the code for a token", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			switch r.URL.Path {
			case "/auth/login-send-code":
				assert.Equal(t, "5321234567", body["username"])
				w.Write([]byte(`{"isSuccess":true,"data":123456}`))
			case "/auth/login-check-code":
				assert.Equal(t, "123456", body["code"])
				w.Write([]byte(`{"isSuccess":true,"data":{"token":"tok"}}`))
			}
		})

		code, err := p.SendLoginCode(ctx, "5321234567")
		require.NoError(t, err)
		assert.Equal(t, "123456", code)

		token, err := p.CheckLoginCode(ctx, "5321234567", code)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("sends the bearer token", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "/payment/balance", r.URL.Path)
			w.Write([]byte(`{"isSuccess":true,"data":"250.00"}`))
		})
		bal, err := p.Balance(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "250.00", bal)
	})

	t.Run("add funds passes the amount", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1000", r.URL.Query().Get("amount"))
			w.Write([]byte(`{"isSuccess":true}`))
		})
		assert.NoError(t, p.AddFunds(ctx, "tok", 1000))
	})

	t.Run("unauthorized maps to auth expired", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := p.Balance(ctx, "stale")
		assert.ErrorIs(t, err, model.ErrAuthExpired)
	})

	t.Run("rejection carries the provider message", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"isSuccess":false,"errors":["Insufficient balance","try later"]}`))
		})
		err := p.SubmitSingle(ctx, "tok", model.SinglePayload{})

		var ext *model.ExternalServiceError
		require.True(t, errors.As(err, &ext))
		assert.Equal(t, "Insufficient balance, try later", ext.Message)
		assert.True(t, repo.IsFundsError(err))
	})

	t.Run("capitalised message field is read", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"isSuccess":false,"Message":"Address out of range"}`))
		})
		_, err := p.QuoteSingle(ctx, "tok", model.SingleQuoteRequest{})
		var ext *model.ExternalServiceError
		require.True(t, errors.As(err, &ext))
		assert.Equal(t, "Address out of range", ext.Message)
		assert.False(t, repo.IsFundsError(err))
	})

	t.Run("quote decodes prices", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			var req model.GroupQuoteRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Len(t, req.Parcels, 2)
			w.Write([]byte(`{"isSuccess":true,"data":{"pickupPrice":10,"deliveryPrice":40.5,"total":50.5}}`))
		})
		q, err := p.QuoteGroup(ctx, "tok", model.GroupQuoteRequest{Parcels: make([]model.GroupQuoteParcel, 2)})
		require.NoError(t, err)
		require.NotNil(t, q.Total)
		assert.Equal(t, 50.5, *q.Total)
		assert.Equal(t, 10.0, *q.PickupPrice)
	})

	t.Run("time slots without a delivery window are dropped", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"isSuccess":true,"data":[
				{"startDateTime":"2026-01-03T09:00:00Z","deliveries":[{"startDateTime":"2026-01-03T11:00:00Z"}]},
				{"startDateTime":"2026-01-03T10:00:00Z","deliveries":[]},
				{"startDateTime":"2026-01-03T12:00:00Z","deliveries":[{"startDateTime":""}]}
			]}`))
		})
		slots, err := p.TimeSlots(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, []model.TimeSlot{{PickupStartTime: "2026-01-03T09:00:00Z", DropOffStartTime: "2026-01-03T11:00:00Z"}}, slots)
	})

	t.Run("unreachable service is an external error", func(t *testing.T) {
		p := repo.NewProviderClient("http://127.0.0.1:1", time.Second)
		err := p.AddFunds(ctx, "tok", 1)
		var ext *model.ExternalServiceError
		assert.True(t, errors.As(err, &ext))
	})
}
