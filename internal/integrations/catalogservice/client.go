package catalogservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с каталогом услуг вендоров
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetVendorService получает услугу вендора
func (c *Client) GetVendorService(ctx context.Context, vendorID, serviceID int64) (*VendorService, error) {
	url := fmt.Sprintf("%s/internal/vendors/%d/services/%d", c.baseURL, vendorID, serviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid vendor or service ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrServiceNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var service VendorService
	if err := json.NewDecoder(resp.Body).Decode(&service); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &service, nil
}

// GetVendorServiceWithGracefulDegradation получает услугу вендора с graceful degradation.
// При недоступности каталога возвращает ErrServiceDegraded, и вызывающий код
// продолжает работу без проверки услуги.
func (c *Client) GetVendorServiceWithGracefulDegradation(ctx context.Context, vendorID, serviceID int64) (*VendorService, error) {
	c.log.Info("Fetching service id=%d of vendor id=%d", serviceID, vendorID)

	service, err := c.GetVendorService(ctx, vendorID, serviceID)
	if err != nil {
		// Бизнес-ошибку (услуга не найдена) пробрасываем дальше
		if errors.Is(err, ErrServiceNotFound) {
			c.log.Info("Service id=%d of vendor id=%d not found", serviceID, vendorID)
			return nil, err
		}

		// Недоступность каталога, timeout, ошибки парсинга
		c.log.Error("Catalog unavailable, applying graceful degradation for vendor id=%d service id=%d: %v",
			vendorID, serviceID, err)
		return nil, fmt.Errorf("%w: vendor_id=%d, service_id=%d, error=%v", ErrServiceDegraded, vendorID, serviceID, err)
	}

	c.log.Info("Successfully fetched service id=%d of vendor id=%d, active=%t", serviceID, vendorID, service.IsActive)
	return service, nil
}
