package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/logic"
)

type ActivityHandler struct {
	activityLogic *logic.ActivityLogic
}

func NewActivityHandler(activity *logic.ActivityLogic) *ActivityHandler {
	return &ActivityHandler{activityLogic: activity}
}

// GetReviewQueue 获取待人工审核的动态
func (h *ActivityHandler) GetReviewQueue(c *gin.Context) {
	activities, err := h.activityLogic.NeedsReview()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", activities)
}

// MarkReviewed 标记动态已审核
func (h *ActivityHandler) MarkReviewed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid activity id")
		return
	}
	if err := h.activityLogic.MarkReviewed(id); err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "activity reviewed", nil)
}

// GetBountyActivities 获取悬赏的动态时间线
func (h *ActivityHandler) GetBountyActivities(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}
	activities, err := h.activityLogic.ForBounty(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", activities)
}
