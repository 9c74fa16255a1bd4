package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kube-rca/reactions/internal/model"
	"github.com/kube-rca/reactions/internal/reaction"
)

// WidgetHandler serves the public aggregate view of a target for anonymous
// page renders. Concurrent renders of the same target share one load through
// the reaction store; mutations invalidate it via Invalidate.
type WidgetHandler struct {
	store *reaction.Store
}

func NewWidgetHandler(store *reaction.Store) *WidgetHandler {
	return &WidgetHandler{store: store}
}

// Invalidate matches service.MutationListener.
func (h *WidgetHandler) Invalidate(targetType, targetID string) {
	h.store.Invalidate(reaction.NewTargetKey(targetType, targetID))
}

// GetWidget godoc
// @Summary Public reaction widget data
// @Description Aggregate counts and rating for one target. Partial data is returned with X-Reaction-Partial when a backing query fails.
// @Tags widgets
// @Produce json
// @Param type path string true "Target type"
// @Param id path string true "Target ID"
// @Success 200 {object} model.WidgetResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/widgets/{type}/{id} [get]
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	key := reaction.NewTargetKey(c.Param("type"), c.Param("id"))
	if err := h.store.Load(c.Request.Context(), key); err != nil {
		if errors.Is(err, reaction.ErrInvalidTarget) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid target"})
			return
		}
		log.Printf("[WidgetHandler] partial load for %s: %v", key, err)
		c.Header("X-Reaction-Partial", "true")
	}

	view := h.store.Summary(key)
	c.JSON(http.StatusOK, model.WidgetResponse{
		TargetType:  key.Type,
		TargetID:    key.ID,
		Likes:       view.Likes,
		Favorites:   view.Favorites,
		Bookmarks:   view.Bookmarks,
		Emojis:      view.Emojis,
		RatingAvg:   view.RatingAvg,
		RatingCount: view.RatingCount,
	})
}
