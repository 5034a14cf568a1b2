package propose_price

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidVendorID    = "некорректный ID вендора"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты вступления в силу, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные цены"
	msgBelowMinimum       = "цена ниже минимально допустимой"
	msgDateNotFuture      = "дата вступления в силу должна быть в будущем"
	msgDateTooFar         = "дата вступления в силу слишком далеко в будущем"
	msgIncreaseTooLarge   = "повышение цены превышает допустимое за одно изменение"
	msgConcurrentChange   = "цена этой услуги сейчас изменяется другим запросом"
)

type Handler struct {
	priceGate PriceGate
	logger    Logger
}

func NewHandler(priceGate PriceGate, logger Logger) *Handler {
	return &Handler{
		priceGate: priceGate,
		logger:    logger,
	}
}

// Handle POST /api/v1/vendors/{vendorId}/services/{serviceId}/prices
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	vendorID, err := strconv.ParseInt(vars["vendorId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /vendors/{id}/services/{id}/prices - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /vendors/{id}/services/{id}/prices - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /vendors/{id}/services/{id}/prices - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ProposePriceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /vendors/{id}/services/{id}/prices - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(vendorID, serviceID, userID)
	if err != nil {
		h.logger.Warn("POST /vendors/{id}/services/{id}/prices - Invalid effective date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.priceGate.ProposePrice(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, pricegate.ErrInvalidInput):
			handlers.RespondValidationError(w, msgInvalidInput, err)
		case errors.Is(err, pricegate.ErrPriceBelowMinimum):
			handlers.RespondUnprocessable(w, msgBelowMinimum)
		case errors.Is(err, pricegate.ErrEffectiveDateNotFuture):
			handlers.RespondUnprocessable(w, msgDateNotFuture)
		case errors.Is(err, pricegate.ErrEffectiveDateTooFar):
			handlers.RespondUnprocessable(w, msgDateTooFar)
		case errors.Is(err, pricegate.ErrIncreaseTooLarge):
			handlers.RespondUnprocessable(w, msgIncreaseTooLarge)
		case errors.Is(err, pricegate.ErrConcurrentChange):
			handlers.RespondConflict(w, msgConcurrentChange)
		default:
			h.logger.Error("POST /vendors/{id}/services/{id}/prices - Failed to propose price: vendor_id=%d, service_id=%d, error=%v",
				vendorID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /vendors/{id}/services/{id}/prices - Price saved: price_id=%d, decision=%s",
		result.Price.ID, result.Decision)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
