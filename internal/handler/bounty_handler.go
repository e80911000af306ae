package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/model"
)

type BountyHandler struct {
	bountyLogic   *logic.BountyLogic
	interestLogic *logic.InterestLogic
	tipLogic      *logic.TipLogic
}

func NewBountyHandler(bounty *logic.BountyLogic, interest *logic.InterestLogic, tip *logic.TipLogic) *BountyHandler {
	return &BountyHandler{
		bountyLogic:   bounty,
		interestLogic: interest,
		tipLogic:      tip,
	}
}

// CreateBounty 创建悬赏（新版本）
func (h *BountyHandler) CreateBounty(c *gin.Context) {
	var req CreateBountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = model.ProjectTypeTraditional
	}
	permissionType := req.PermissionType
	if permissionType == "" {
		permissionType = "permissionless"
	}

	bounty := &model.Bounty{
		Title:               req.Title,
		GithubURL:           req.GithubURL,
		ValueInToken:        req.ValueInToken,
		TokenName:           req.TokenName,
		TokenAddress:        req.TokenAddress,
		Network:             req.Network,
		StandardBountiesID:  req.StandardBountiesID,
		ExpiresDate:         req.ExpiresDate,
		ProjectType:         projectType,
		PermissionType:      permissionType,
		BountyType:          req.BountyType,
		ProjectLength:       req.ProjectLength,
		ExperienceLevel:     req.ExperienceLevel,
		OwnerAddress:        req.OwnerAddress,
		OwnerGithubUsername: strings.TrimPrefix(req.OwnerGithubUsername, "@"),
		Web3Created:         time.Now(),
		IsOpen:              true,
	}

	if err := h.bountyLogic.CreateRevision(bounty); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "bounty created", NewBountyResponse(bounty))
}

// GetBounties 获取悬赏列表
func (h *BountyHandler) GetBounties(c *gin.Context) {
	filter := logic.BountyFilter{
		CurrentOnly: c.DefaultQuery("current", "true") == "true",
		Network:     c.Query("network"),
		ProjectType: c.Query("project_type"),
		Keyword:     c.Query("keyword"),
	}
	if status := c.Query("status"); status != "" {
		filter.Status = strings.Split(status, ",")
	}

	bounties, err := h.bountyLogic.GetBounties(filter)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]BountyResponse, 0, len(bounties))
	for i := range bounties {
		out = append(out, NewBountyResponse(&bounties[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// GetBounty 获取悬赏详情
func (h *BountyHandler) GetBounty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}

	bounty, err := h.bountyLogic.GetBounty(id)
	if err != nil {
		if errors.Is(err, logic.ErrBountyNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", NewBountyResponse(bounty))
}

// StartWork 认领悬赏
func (h *BountyHandler) StartWork(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}
	var req StartWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	bounty, err := h.bountyLogic.GetBounty(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	interest, err := h.interestLogic.StartWork(bounty, req.ProfileID, req.Message)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "work started", interest)
}

// GetInterests 悬赏的全部认领意向
func (h *BountyHandler) GetInterests(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}
	interests, err := h.interestLogic.InterestsForBounty(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", interests)
}

// GetTips 悬赏关联的打赏
func (h *BountyHandler) GetTips(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}
	bounty, err := h.bountyLogic.GetBounty(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	tips, err := h.tipLogic.TipsForBounty(bounty)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]TipResponse, 0, len(tips))
	for i := range tips {
		out = append(out, NewTipResponse(&tips[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// AcceptFulfillment 验收提交
func (h *BountyHandler) AcceptFulfillment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid bounty id")
		return
	}
	fulfillmentID, err := strconv.ParseInt(c.Param("fid"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid fulfillment id")
		return
	}

	bounty, err := h.bountyLogic.GetBounty(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	if err := h.bountyLogic.AcceptFulfillment(bounty, fulfillmentID); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "fulfillment accepted", NewBountyResponse(bounty))
}

// GetStats 悬赏统计
func (h *BountyHandler) GetStats(c *gin.Context) {
	stats, err := h.bountyLogic.GetStats(c.Query("network"))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}
