package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/pkg/response"
)

func parseFilter(c *gin.Context) repository.SendoutFilter {
	f := repository.SendoutFilter{
		RegionalIDs:  splitParam(c.Query("regional_ids")),
		CoachIDs:     splitParam(c.Query("coach_ids")),
		RecruiterIDs: splitParam(c.Query("recruiter_ids")),
		SpecialtyIDs: splitParam(c.Query("specialty_ids")),
		Keyword:      c.Query("keyword"),
	}
	for _, s := range splitParam(c.Query("status_ids")) {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.StatusIDs = append(f.StatusIDs, v)
		}
	}
	if v, err := strconv.ParseInt(c.Query("type_id"), 10, 64); err == nil {
		f.TypeID = &v
	}
	if t, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		f.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		f.EndDate = &t
	}
	return f
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListSendouts 分页列表
// @Summary sendout 列表
// @Tags 看板
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param keyword query string false "公司/候选人/recruiter 关键词"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/sendouts [get]
func (h *Handler) ListSendouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, total, err := h.summary.List(c.Request.Context(), parseFilter(c), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "total": total, "list": list})
}

// SendoutSummary 看板汇总
// @Summary sendout 汇总
// @Tags 看板
// @Success 200 {object} response.Response{data=service.SendoutSummary}
// @Router /api/v1/sendouts/summary [get]
func (h *Handler) SendoutSummary(c *gin.Context) {
	sum, err := h.summary.Summarize(c.Request.Context(), parseFilter(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, sum)
}
