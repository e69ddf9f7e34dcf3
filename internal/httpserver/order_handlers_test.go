package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/payment"
)

func TestPlaceOrderEndToEnd(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "buyer@example.com")
	p := s.seedProduct(t, 20, map[string]uint{"M": 10})
	cookies := s.userCookies(t, user)

	rec := s.request(t, http.MethodPost, "/api/cart/add", map[string]any{
		"product_id": p.ID, "size": "M", "quantity": 3,
	}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(t, http.MethodPost, "/api/order/place-order", map[string]any{
		"user_id": user.ID,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Order struct {
			ID     uint    `json:"id"`
			Total  float64 `json:"total"`
			Status string  `json:"status"`
		} `json:"order"`
		ClientSecret string `json:"client_secret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.InDelta(t, 60.0, res.Order.Total, 0.001)
	require.Equal(t, "PENDING", res.Order.Status)
	require.NotEmpty(t, res.ClientSecret)
	require.Equal(t, 1, s.gateway.calls)
}

func TestPlaceOrderMismatchedUserIs403(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "buyer@example.com")
	p := s.seedProduct(t, 20, map[string]uint{"M": 10})
	cookies := s.userCookies(t, user)

	rec := s.request(t, http.MethodPost, "/api/cart/add", map[string]any{
		"product_id": p.ID, "size": "M", "quantity": 1,
	}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(t, http.MethodPost, "/api/order/place-order", map[string]any{
		"user_id": user.ID + 1,
	}, cookies...)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookConfirmsPayment(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "buyer@example.com")
	p := s.seedProduct(t, 20, map[string]uint{"M": 10})
	cookies := s.userCookies(t, user)

	rec := s.request(t, http.MethodPost, "/api/cart/add", map[string]any{
		"product_id": p.ID, "size": "M", "quantity": 1,
	}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(t, http.MethodPost, "/api/order/place-order", map[string]any{
		"user_id": user.ID,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	s.gateway.event = payment.Event{Type: payment.EventPaymentSucceeded, IntentID: "pi_test_1"}
	rec = s.request(t, http.MethodPost, "/api/order/webhook", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	var pay models.Payment
	require.NoError(t, s.repo.DB.First(&pay).Error)
	require.Equal(t, models.PaymentStatusPaid, pay.Status)
}

func TestWebhookBadSignatureIs400(t *testing.T) {
	s := newTestServer(t)
	s.gateway.sigErr = fmt.Errorf("bad signature")

	rec := s.request(t, http.MethodPost, "/api/order/webhook", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountOrderHistory(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "buyer@example.com")
	p := s.seedProduct(t, 20, map[string]uint{"M": 10})
	cookies := s.userCookies(t, user)

	rec := s.request(t, http.MethodGet, "/api/account/orders", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = s.request(t, http.MethodPost, "/api/cart/add", map[string]any{
		"product_id": p.ID, "size": "M", "quantity": 1,
	}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(t, http.MethodPost, "/api/order/place-order", map[string]any{
		"user_id": user.ID,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.request(t, http.MethodGet, "/api/account/orders", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	rec = s.request(t, http.MethodGet, fmt.Sprintf("/api/account/orders/%d", orders[0].ID), nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	// Another user cannot read it.
	other := s.seedUser(t, "other@example.com")
	rec = s.request(t, http.MethodGet, fmt.Sprintf("/api/account/orders/%d", orders[0].ID), nil, s.userCookies(t, other)...)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
