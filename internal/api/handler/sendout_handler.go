package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/internal/api/middleware"
	"github.com/d60-Lab/staffing-ats/internal/service"
	"github.com/d60-Lab/staffing-ats/pkg/response"
)

// timezoneHeader 请求方时区；缺省按 UTC 处理
func timezoneOf(c *gin.Context) string {
	return c.GetHeader("X-Timezone")
}

// CreateSendout 创建 sendout/sendover
// @Summary 创建 sendout
// @Tags sendout
// @Accept json
// @Produce json
// @Param request body service.CreateSendoutRequest true "创建信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/sendouts [post]
func (h *Handler) CreateSendout(c *gin.Context) {
	var req service.CreateSendoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res := h.sendoutSvc.Create(c.Request.Context(), &req, middleware.UserID(c), timezoneOf(c))
	writeResult(c, res)
}

// UpdateSendout 更新 sendout
// @Summary 更新 sendout
// @Tags sendout
// @Accept json
// @Produce json
// @Param id path string true "sendout ID"
// @Param request body service.UpdateSendoutRequest true "更新信息"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/sendouts/{id} [put]
func (h *Handler) UpdateSendout(c *gin.Context) {
	var req service.UpdateSendoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res := h.sendoutSvc.Update(c.Request.Context(), c.Param("id"), &req, middleware.UserID(c), timezoneOf(c))
	writeResult(c, res)
}

// ConvertSendover sendover 转正为 sendout
// @Summary sendover 转正
// @Tags sendout
// @Accept json
// @Produce json
// @Param id path string true "sendout ID"
// @Param request body service.ConvertSendoverRequest true "转正信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/sendouts/{id}/convert [post]
func (h *Handler) ConvertSendover(c *gin.Context) {
	var req service.ConvertSendoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res := h.sendoutSvc.ConvertSendoverToSendout(c.Request.Context(), c.Param("id"), &req, middleware.UserID(c), timezoneOf(c))
	writeResult(c, res)
}

// DeleteSendout 软删除（仅 Operations）
// @Summary 删除 sendout
// @Tags sendout
// @Param id path string true "sendout ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/sendouts/{id} [delete]
func (h *Handler) DeleteSendout(c *gin.Context) {
	res := h.sendoutSvc.Remove(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	writeResult(c, res)
}

// SendoutDetails 详情
// @Summary sendout 详情
// @Tags sendout
// @Param id path string true "sendout ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/sendouts/{id} [get]
func (h *Handler) SendoutDetails(c *gin.Context) {
	res := h.sendoutSvc.Details(c.Request.Context(), c.Param("id"))
	writeResult(c, res)
}

// SendoutTimeline 审计流水
// @Summary sendout 审计流水
// @Tags sendout
// @Param id path string true "sendout ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/sendouts/{id}/timeline [get]
func (h *Handler) SendoutTimeline(c *gin.Context) {
	res := h.sendoutSvc.Timeline(c.Request.Context(), c.Param("id"))
	writeResult(c, res)
}

func writeResult(c *gin.Context, res *service.Result) {
	if !res.Success {
		response.WithCode(c, res.Code, res.Message, nil)
		return
	}
	switch {
	case res.Details != nil:
		response.Success(c, res.Details)
	case res.Logs != nil:
		response.Success(c, res.Logs)
	case res.Sendout != nil:
		response.Success(c, res.Sendout)
	default:
		response.Success(c, nil)
	}
}
