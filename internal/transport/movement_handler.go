package transport

import (
	"errors"
	"net/http"

	"stockroom/internal/domain"
	"stockroom/internal/middleware"
	"stockroom/internal/repository"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateMovementRequest represents the payload for recording a movement.
// The acting user is taken from the access token, not the body.
type CreateMovementRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Type      string  `json:"type" validate:"required,oneof=entrada saida"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Note      *string `json:"note,omitempty"`
}

// UpdateMovementRequest corrects an existing ledger entry; absent fields are
// left untouched.
type UpdateMovementRequest struct {
	ProductID *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	UserID    *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Type      *string `json:"type,omitempty" validate:"omitempty,oneof=entrada saida"`
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Note      *string `json:"note,omitempty"`
}

// MovementHandler handles HTTP requests for the stock movement ledger.
type MovementHandler struct {
	movementService service.MovementService
	logger          *zap.Logger
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementService service.MovementService, logger *zap.Logger) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
		logger:          logger,
	}
}

// RegisterRoutes registers all movement routes; every route requires auth.
func (h *MovementHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/movements", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles POST /movements.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token subject")
		return
	}

	var req CreateMovementRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Movement creation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	movement, err := h.movementService.Create(r.Context(), service.CreateMovementInput{
		ProductID: productID,
		UserID:    userID,
		Type:      domain.MovementType(req.Type),
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, domain.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusBadRequest, domain.ErrInsufficientStock.Error())
		case domain.IsValidationError(err):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to create movement", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create movement")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, movement)
}

// List handles GET /movements, newest first.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	movements, err := h.movementService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list movements", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list movements")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, movements)
}

// GetByID handles GET /movements/{id}.
func (h *MovementHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	movement, err := h.movementService.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovementNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "movement not found")
			return
		}
		h.logger.Error("Failed to get movement", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get movement")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, movement)
}

// Update handles PUT /movements/{id}.
func (h *MovementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req UpdateMovementRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Movement update validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := repository.UpdateMovementParams{
		Quantity: req.Quantity,
		Note:     req.Note,
	}
	if req.ProductID != nil {
		productID, err := uuid.Parse(*req.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		params.ProductID = &productID
	}
	if req.UserID != nil {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		params.UserID = &userID
	}
	if req.Type != nil {
		movementType := domain.MovementType(*req.Type)
		params.Type = &movementType
	}

	matched, err := h.movementService.UpdateFields(r.Context(), id, params)
	if err != nil {
		if domain.IsValidationError(err) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update movement", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update movement")
		return
	}
	if !matched {
		middleware.RespondWithError(w, http.StatusNotFound, "movement not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "movement updated"})
}

// Delete handles DELETE /movements/{id}.
func (h *MovementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	deleted, err := h.movementService.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete movement", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete movement")
		return
	}
	if !deleted {
		middleware.RespondWithError(w, http.StatusNotFound, "movement not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "movement deleted"})
}
