package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kube-rca/reactions/internal/model"
	"github.com/kube-rca/reactions/internal/service"
)

// reactionService - business rules behind the reaction endpoints
type reactionService interface {
	Summary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error)
	RatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error)
	Mine(ctx context.Context, user *model.AuthUser, targetType string, targetIDs []string) ([]model.ReactionRecord, error)
	Toggle(ctx context.Context, user *model.AuthUser, req model.ToggleRequest) (bool, error)
	Rate(ctx context.Context, user *model.AuthUser, req model.RateRequest) error
}

type ReactionHandler struct {
	svc reactionService
}

func NewReactionHandler(svc reactionService) *ReactionHandler {
	return &ReactionHandler{svc: svc}
}

// GetSummary godoc
// @Summary Reaction counts for a target
// @Description Counts by kind and by emoji across all actors.
// @Tags reactions
// @Produce json
// @Param target_type query string true "Target type"
// @Param target_id query string true "Target ID"
// @Param breakdown query string false "kind+emoji"
// @Success 200 {object} model.SummaryNode
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reactions/summary [get]
func (h *ReactionHandler) GetSummary(c *gin.Context) {
	var req model.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	node, err := h.svc.Summary(c.Request.Context(), req.TargetType, req.TargetID)
	if err != nil {
		writeReactionError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// GetRating godoc
// @Summary Rating summary for a target
// @Description average is null when count is 0.
// @Tags reactions
// @Produce json
// @Param target_type query string true "Target type"
// @Param target_id query string true "Target ID"
// @Success 200 {object} model.RatingSummaryNode
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reactions/rating [get]
func (h *ReactionHandler) GetRating(c *gin.Context) {
	var req model.RatingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	node, err := h.svc.RatingSummary(c.Request.Context(), req.TargetType, req.TargetID)
	if err != nil {
		writeReactionError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// GetMine godoc
// @Summary Current actor's reactions
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param target_type query string true "Target type"
// @Param target_ids query string true "Comma separated target IDs"
// @Success 200 {array} model.ReactionRecord
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reactions/mine [get]
func (h *ReactionHandler) GetMine(c *gin.Context) {
	var ids []string
	for _, raw := range c.QueryArray("target_ids") {
		ids = append(ids, strings.Split(raw, ",")...)
	}

	records, err := h.svc.Mine(c.Request.Context(), GetAuthUser(c), c.Query("target_type"), ids)
	if err != nil {
		writeReactionError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Toggle godoc
// @Summary Toggle a reaction
// @Description Flips LIKE, FAVORITE, BOOKMARK or an EMOJI for the current actor. The server decides on/off.
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ToggleRequest true "Target and kind"
// @Success 200 {object} model.MutationResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reactions/toggle [post]
func (h *ReactionHandler) Toggle(c *gin.Context) {
	var req model.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	active, err := h.svc.Toggle(c.Request.Context(), GetAuthUser(c), req)
	if err != nil {
		writeReactionError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MutationResponse{Status: "ok", Active: &active})
}

// Rate godoc
// @Summary Set a rating
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RateRequest true "Target and value (1..5)"
// @Success 200 {object} model.MutationResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reactions/rate [post]
func (h *ReactionHandler) Rate(c *gin.Context) {
	var req model.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.svc.Rate(c.Request.Context(), GetAuthUser(c), req); err != nil {
		writeReactionError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MutationResponse{Status: "ok"})
}

func writeReactionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
	default:
		log.Printf("[ReactionHandler] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
	}
}
