package get_booking

import (
	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/bookings/models"
)

// Состояния бронирования для клиента
const (
	StateConfirmed   = "confirmed"
	StateProcessing  = "processing"
	StateUnderReview = "under_review"
	StateCancelled   = "cancelled"
)

// SlotView слот вендора, который занимает бронирование
type SlotView struct {
	VendorID  int64  `json:"vendorId"`
	ServiceID *int64 `json:"serviceId,omitempty"` // nil = весь вендор
	Date      string `json:"date"`
}

// Response ответ GET /bookings/{bookingId}
type Response struct {
	*models.BookingResponse
	Slot  SlotView `json:"slot"`
	State string   `json:"state"`
}

func toResponse(b *models.BookingResponse) *Response {
	return &Response{
		BookingResponse: b,
		Slot: SlotView{
			VendorID:  b.VendorID,
			ServiceID: b.ServiceID,
			Date:      b.EventDate,
		},
		State: stateOf(b),
	}
}

// stateOf сводит статус и флаг сверки в одно состояние.
// Помеченная для сверки бронь показывается как under_review в любом статусе.
func stateOf(b *models.BookingResponse) string {
	if b.NeedsReconciliation {
		return StateUnderReview
	}

	switch domain.BookingStatus(b.Status) {
	case domain.StatusConfirmed:
		return StateConfirmed
	case domain.StatusCancelled:
		return StateCancelled
	default:
		return StateProcessing
	}
}
