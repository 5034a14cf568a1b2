package propose_price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
)

type stubGate struct {
	result *models.ProposeResult
	err    error
	got    *models.ProposePriceRequest
}

func (s *stubGate) ProposePrice(_ context.Context, req *models.ProposePriceRequest) (*models.ProposeResult, error) {
	s.got = req
	return s.result, s.err
}

func serve(gate PriceGate, target, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/vendors/{vendorId}/services/{serviceId}/prices", NewHandler(gate, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "3")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_PendingApproval(t *testing.T) {
	gate := &stubGate{result: &models.ProposeResult{
		Price:    &models.PriceResponse{ID: 9, VendorID: 1, ServiceID: 7, Price: 130000, Status: "pending_approval"},
		Decision: models.DecisionPendingApproval,
	}}

	rec := serve(gate, "/vendors/1/services/7/prices", `{"price":130000,"effectiveDate":"2026-04-01"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body models.ProposeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.DecisionPendingApproval, body.Decision)

	require.NotNil(t, gate.got)
	assert.Equal(t, int64(1), gate.got.VendorID)
	assert.Equal(t, int64(7), gate.got.ServiceID)
	assert.Equal(t, "2026-04-01", gate.got.EffectiveDate.Format("2006-01-02"))
	assert.Equal(t, int64(3), gate.got.ProposedBy)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid input", err: fmt.Errorf("%w: x", pricegate.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "below minimum", err: pricegate.ErrPriceBelowMinimum, wantStatus: http.StatusUnprocessableEntity},
		{name: "not future", err: pricegate.ErrEffectiveDateNotFuture, wantStatus: http.StatusUnprocessableEntity},
		{name: "too far", err: pricegate.ErrEffectiveDateTooFar, wantStatus: http.StatusUnprocessableEntity},
		{name: "too large", err: fmt.Errorf("%w: 60%%", pricegate.ErrIncreaseTooLarge), wantStatus: http.StatusUnprocessableEntity},
		{name: "concurrent", err: pricegate.ErrConcurrentChange, wantStatus: http.StatusConflict},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubGate{err: tt.err}, "/vendors/1/services/7/prices", `{"price":100,"effectiveDate":"2026-04-01"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{name: "bad vendor", target: "/vendors/x/services/7/prices", body: `{"price":1,"effectiveDate":"2026-04-01"}`},
		{name: "bad service", target: "/vendors/1/services/x/prices", body: `{"price":1,"effectiveDate":"2026-04-01"}`},
		{name: "bad body", target: "/vendors/1/services/7/prices", body: `not json`},
		{name: "bad date", target: "/vendors/1/services/7/prices", body: `{"price":1,"effectiveDate":"April 1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &stubGate{}
			rec := serve(gate, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, gate.got)
		})
	}
}
