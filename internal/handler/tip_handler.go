package handler

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/payout"
)

type TipHandler struct {
	tipLogic *logic.TipLogic
}

func NewTipHandler(tip *logic.TipLogic) *TipHandler {
	return &TipHandler{tipLogic: tip}
}

// CreateTip 创建打赏
func (h *TipHandler) CreateTip(c *gin.Context) {
	var req CreateTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tip := &model.Tip{
		Amount:               req.Amount,
		TokenName:            req.TokenName,
		TokenAddress:         req.TokenAddress,
		GithubURL:            req.GithubURL,
		Network:              req.Network,
		Username:             req.Username,
		FromUsername:         req.FromUsername,
		FromAddress:          req.FromAddress,
		Txid:                 req.Txid,
		ExpiresDate:          req.ExpiresDate,
		IsForBountyFulfiller: req.IsForBountyFulfiller,
	}
	if err := h.tipLogic.CreateTip(tip); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "tip created", NewTipResponse(tip))
}

// GetTip 获取打赏详情
func (h *TipHandler) GetTip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid tip id")
		return
	}
	tip, err := h.tipLogic.GetTip(id)
	if err != nil {
		if errors.Is(err, logic.ErrTipNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", NewTipResponse(tip))
}

// PayoutTip 托管付款：构建、签名并广播收款交易
func (h *TipHandler) PayoutTip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid tip id")
		return
	}
	var req PayoutTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var amountOverride *big.Int
	if req.AmountOverride != "" {
		v, ok := new(big.Int).SetString(req.AmountOverride, 10)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "invalid amount_override")
			return
		}
		amountOverride = v
	}

	txid, err := h.tipLogic.Payout(c.Request.Context(), id, req.Address, amountOverride)
	if err != nil {
		var payoutErr *payout.Error
		if errors.As(err, &payoutErr) {
			ErrorResponse(c, http.StatusBadRequest, payoutErr.Error())
			return
		}
		if errors.Is(err, logic.ErrTipNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "tip payout sent", gin.H{"txid": txid})
}
