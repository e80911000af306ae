package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/logic"
)

type InterestHandler struct {
	interestLogic *logic.InterestLogic
}

func NewInterestHandler(interest *logic.InterestLogic) *InterestHandler {
	return &InterestHandler{interestLogic: interest}
}

// GetInterest 获取意向详情
func (h *InterestHandler) GetInterest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid interest id")
		return
	}
	interest, err := h.interestLogic.GetInterest(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", interest)
}

// ApproveInterest 审批通过待审意向
func (h *InterestHandler) ApproveInterest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid interest id")
		return
	}
	interest, err := h.interestLogic.GetInterest(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	if err := h.interestLogic.Approve(interest); err != nil {
		if errors.Is(err, logic.ErrInvalidTransition) {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "interest approved", interest)
}

// ChangeInterestStatus 意向状态流转
func (h *InterestHandler) ChangeInterestStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid interest id")
		return
	}
	var req ChangeInterestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	interest, err := h.interestLogic.GetInterest(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	if err := h.interestLogic.ChangeStatus(interest, req.Status, req.ProfileID); err != nil {
		if errors.Is(err, logic.ErrInvalidTransition) {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "interest status changed", interest)
}
