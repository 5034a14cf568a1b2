package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	VendorID      int64   `json:"vendorId"`
	ServiceID     *int64  `json:"serviceId,omitempty"`
	EventDate     string  `json:"eventDate"` // "2026-03-15"
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	GuestCount    int     `json:"guestCount"`
	Notes         *string `json:"notes,omitempty"`
	Status        string  `json:"status"`

	NeedsReconciliation bool `json:"needsReconciliation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		VendorID:            b.VendorID,
		ServiceID:           b.ServiceID,
		EventDate:           b.EventDate.Format(domain.DateFormat),
		CustomerName:        b.CustomerName,
		CustomerEmail:       b.CustomerEmail,
		GuestCount:          b.GuestCount,
		Notes:               b.Notes,
		Status:              string(b.Status),
		NeedsReconciliation: b.NeedsReconciliation,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	switch s {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
