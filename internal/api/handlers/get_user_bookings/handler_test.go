package get_user_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/bookings/models"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
)

type stubService struct {
	err    error
	called bool
}

func (s *stubService) GetUserBookings(context.Context, *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}}}, nil
}

func serve(svc BookingService, target, caller string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/users/{userId}/bookings", NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(middleware.UserIDHeader, caller)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		caller     string
		err        error
		wantStatus int
		wantCalled bool
	}{
		{name: "own bookings", target: "/users/42/bookings", caller: "42", wantStatus: http.StatusOK, wantCalled: true},
		{name: "someone else", target: "/users/43/bookings", caller: "42", wantStatus: http.StatusForbidden},
		{name: "bad user id", target: "/users/me/bookings", caller: "42", wantStatus: http.StatusBadRequest},
		{name: "bad status", target: "/users/42/bookings?status=done", caller: "42", err: bookings.ErrInvalidInput,
			wantStatus: http.StatusBadRequest, wantCalled: true},
		{name: "internal", target: "/users/42/bookings", caller: "42", err: bookings.ErrInternal,
			wantStatus: http.StatusInternalServerError, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			rec := serve(svc, tt.target, tt.caller)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, svc.called)
		})
	}
}
