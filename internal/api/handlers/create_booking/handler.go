package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-MarketplaceCore/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты мероприятия, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные бронирования"
	msgDateInPast         = "дата мероприятия уже прошла"
	msgServiceNotFound    = "услуга не найдена"
	msgGuestLimit         = "количество гостей превышает вместимость услуги"
	msgSlotNotAvailable   = "выбранная дата недоступна"
	msgLockLost           = "время на оформление истекло, попробуйте еще раз"
)

// slotDeniedResponse ответ при отказе в слоте: причина видна клиенту
type slotDeniedResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse event date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var denied *createBooking.DeniedError

		switch {
		case errors.As(err, &denied):
			h.logger.Info("POST /bookings - Slot denied: user_id=%d, vendor_id=%d, date=%s, reason=%s",
				userID, req.VendorID, req.EventDate, denied.Reason)
			handlers.RespondJSON(w, http.StatusConflict, slotDeniedResponse{Error: msgSlotNotAvailable, Reason: denied.Reason})

		case errors.Is(err, createBooking.ErrLockLost):
			h.logger.Warn("POST /bookings - Lock lost: user_id=%d, vendor_id=%d", userID, req.VendorID)
			handlers.RespondConflict(w, msgLockLost)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d: %v", userID, err)
			handlers.RespondValidationError(w, msgInvalidInput, err)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Date in past: user_id=%d, date=%s", userID, req.EventDate)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: vendor_id=%d", req.VendorID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrGuestLimitExceeded):
			h.logger.Warn("POST /bookings - Guest limit exceeded: vendor_id=%d, guests=%d", req.VendorID, req.GuestCount)
			handlers.RespondUnprocessable(w, msgGuestLimit)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, vendor_id=%d, error=%v",
				userID, req.VendorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, vendor_id=%d",
		result.ID, userID, req.VendorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
