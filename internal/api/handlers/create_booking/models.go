package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	createBooking "github.com/m04kA/SMC-MarketplaceCore/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	VendorID      int64   `json:"vendorId"`
	ServiceID     *int64  `json:"serviceId,omitempty"` // без serviceId бронируется весь день вендора
	EventDate     string  `json:"eventDate"`           // "2026-03-15"
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	GuestCount    int     `json:"guestCount"`
	Notes         *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	VendorID      int64   `json:"vendorId"`
	ServiceID     *int64  `json:"serviceId,omitempty"`
	EventDate     string  `json:"eventDate"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	GuestCount    int     `json:"guestCount"`
	Notes         *string `json:"notes,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	eventDate, err := time.Parse(domain.DateFormat, r.EventDate)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:        userID,
		VendorID:      r.VendorID,
		ServiceID:     r.ServiceID,
		EventDate:     eventDate,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		GuestCount:    r.GuestCount,
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:            resp.ID,
		UserID:        resp.UserID,
		VendorID:      resp.VendorID,
		ServiceID:     resp.ServiceID,
		EventDate:     resp.EventDate.Format(domain.DateFormat),
		CustomerName:  resp.CustomerName,
		CustomerEmail: resp.CustomerEmail,
		GuestCount:    resp.GuestCount,
		Notes:         resp.Notes,
		Status:        resp.Status,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     resp.UpdatedAt.Format(time.RFC3339),
	}
}
