package price_decision

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/priceapproval"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
)

const (
	msgInvalidPriceID   = "некорректный ID цены"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "цена не найдена"
	msgNotPending       = "цена не ожидает одобрения"
	msgSelfApproval     = "автор предложения не может одобрить собственную цену"
	msgIncreaseTooLarge = "повышение относительно действующей цены превышает допустимое"
	msgConcurrentChange = "цена этой услуги сейчас изменяется другим запросом"
)

type decideFunc func(ctx context.Context, priceID, approverID int64) (*models.PriceResponse, error)

type Handler struct {
	service PriceApprovalService
	logger  Logger
}

func NewHandler(service PriceApprovalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Approve POST /api/v1/prices/{priceId}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /prices/{id}/approve", h.service.Approve)
}

// Reject POST /api/v1/prices/{priceId}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /prices/{id}/reject", h.service.Reject)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, decide decideFunc) {
	priceID, err := strconv.ParseInt(mux.Vars(r)["priceId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid price ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPriceID)
		return
	}

	approverID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	price, err := decide(r.Context(), priceID, approverID)
	if err != nil {
		switch {
		case errors.Is(err, priceapproval.ErrPriceNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, priceapproval.ErrNotPending):
			handlers.RespondConflict(w, msgNotPending)
		case errors.Is(err, priceapproval.ErrSelfApproval):
			h.logger.Warn("%s - Self approval refused: price_id=%d, user_id=%d", route, priceID, approverID)
			handlers.RespondForbidden(w, msgSelfApproval)
		case errors.Is(err, priceapproval.ErrIncreaseTooLarge):
			handlers.RespondUnprocessable(w, msgIncreaseTooLarge)
		case errors.Is(err, priceapproval.ErrConcurrentChange):
			handlers.RespondConflict(w, msgConcurrentChange)
		default:
			h.logger.Error("%s - Failed: price_id=%d, error=%v", route, priceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Done: price_id=%d, status=%s, user_id=%d", route, priceID, price.Status, approverID)
	handlers.RespondJSON(w, http.StatusOK, price)
}
