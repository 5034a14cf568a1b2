package check_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/lockmanager"
)

const (
	msgInvalidVendorID  = "некорректный ID вендора"
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidSlot      = "некорректные параметры слота"
)

type Handler struct {
	lockManager LockManager
	logger      Logger
}

func NewHandler(lockManager LockManager, logger Logger) *Handler {
	return &Handler{
		lockManager: lockManager,
		logger:      logger,
	}
}

// Handle GET /api/v1/vendors/{vendorId}/slots/availability
// Query params: date (required, YYYY-MM-DD), serviceId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	vendorID, err := strconv.ParseInt(vars["vendorId"], 10, 64)
	if err != nil || vendorID <= 0 {
		h.logger.Warn("GET /vendors/{id}/slots/availability - Invalid vendor ID: %s", vars["vendorId"])
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	query := r.URL.Query()

	var serviceID *int64
	if raw := query.Get("serviceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.logger.Warn("GET /vendors/{id}/slots/availability - Invalid service ID: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		serviceID = &id
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/slots/availability - Invalid date: %s", dateStr)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	key := domain.NewSlotKey(vendorID, serviceID, date)

	result, err := h.lockManager.CheckAvailability(r.Context(), key)
	if err != nil {
		if errors.Is(err, lockmanager.ErrInvalidInput) {
			h.logger.Warn("GET /vendors/{id}/slots/availability - Invalid slot %s: %v", key, err)
			handlers.RespondBadRequest(w, msgInvalidSlot)
			return
		}
		h.logger.Error("GET /vendors/{id}/slots/availability - Failed to check slot %s: %v", key, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, &AvailabilityResponse{
		VendorID:  vendorID,
		ServiceID: serviceID,
		Date:      key.Date.Format(domain.DateFormat),
		Available: result.Available,
		Reason:    result.Reason,
	})
}
