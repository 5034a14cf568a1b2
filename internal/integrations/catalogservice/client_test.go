package catalogservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
)

func TestGetVendorService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/vendors/1/services/7":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":7,"vendor_id":1,"name":"Mehndi decor","max_guests":300,"is_active":true}`))
		case "/internal/vendors/1/services/8":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	ctx := context.Background()

	service, err := client.GetVendorService(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "Mehndi decor", service.Name)
	require.NotNil(t, service.MaxGuests)
	assert.Equal(t, 300, *service.MaxGuests)
	assert.True(t, service.IsActive)

	_, err = client.GetVendorService(ctx, 1, 8)
	require.ErrorIs(t, err, ErrServiceNotFound)

	_, err = client.GetVendorService(ctx, 1, 9)
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetVendorServiceWithGracefulDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/internal/vendors/1/services/8" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	ctx := context.Background()

	_, err := client.GetVendorServiceWithGracefulDegradation(ctx, 1, 8)
	require.ErrorIs(t, err, ErrServiceNotFound)

	_, err = client.GetVendorServiceWithGracefulDegradation(ctx, 1, 7)
	require.ErrorIs(t, err, ErrServiceDegraded)
}
