package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/pkg/response"
)

// SendCoachDigest 组装并投递某 coach 的团队摘要邮件；缺省统计最近 7 天
// @Summary coach 团队摘要
// @Tags 看板
// @Param coach_id path string true "coach ID"
// @Param from query string false "开始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /api/v1/digests/coach/{coach_id} [post]
func (h *Handler) SendCoachDigest(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		from = t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		to = t
	}
	if err := h.digest.Send(c.Request.Context(), c.Param("coach_id"), from, to); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
