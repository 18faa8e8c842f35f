package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/internal/api/middleware"
	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/pkg/response"
)

// RegisterCall 上报一次通话
// @Summary 通话计数
// @Tags 活动
// @Success 200 {object} response.Response
// @Router /api/v1/activity/calls [post]
func (h *Handler) RegisterCall(c *gin.Context) {
	if err := h.activity.IncrCall(c.Request.Context(), middleware.UserID(c), time.Now()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// RegisterText 上报一次短信
// @Summary 短信计数
// @Tags 活动
// @Success 200 {object} response.Response
// @Router /api/v1/activity/texts [post]
func (h *Handler) RegisterText(c *gin.Context) {
	if err := h.activity.IncrText(c.Request.Context(), middleware.UserID(c), time.Now()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

type campaignRequest struct {
	Subject     string             `json:"subject" binding:"required"`
	Body        string             `json:"body"`
	TemplateKey string             `json:"template_key" binding:"required"`
	Recipients  []mailer.Recipient `json:"recipients" binding:"required,min=1"`
}

// SendCampaign 批量邮件群发（限速）
// @Summary 群发邮件
// @Tags 活动
// @Accept json
// @Produce json
// @Param request body campaignRequest true "群发信息"
// @Success 200 {object} response.Response
// @Router /api/v1/campaigns/send [post]
func (h *Handler) SendCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	base := mailer.Payload{Subject: req.Subject, Body: req.Body}
	sent, err := h.campaign.SendBulk(c.Request.Context(), base, req.TemplateKey, req.Recipients)
	if err != nil {
		response.WithCode(c, 207, err.Error(), gin.H{"sent": sent, "total": len(req.Recipients)})
		return
	}
	response.Success(c, gin.H{"sent": sent, "total": len(req.Recipients)})
}
