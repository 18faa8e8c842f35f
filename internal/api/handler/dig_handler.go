package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/pkg/response"
)

type assignDigRequest struct {
	RecruiterID string `json:"recruiter_id" binding:"required"`
	IndustryID  string `json:"industry_id" binding:"required"`
	SpecialtyID string `json:"specialty_id" binding:"required"`
	State       string `json:"state" binding:"required,statecode"`
}

// AssignDig 分配领地
// @Summary 分配 DIG
// @Tags dig
// @Accept json
// @Produce json
// @Param request body assignDigRequest true "分配信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/digs [post]
func (h *Handler) AssignDig(c *gin.Context) {
	var req assignDigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.digs.Assign(c.Request.Context(), req.RecruiterID, req.IndustryID, req.SpecialtyID, req.State)
	if err != nil {
		if errors.Is(err, repository.ErrDigDuplicate) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, d)
}

// UnassignDig 取消领地分配
// @Summary 取消 DIG
// @Tags dig
// @Param id path string true "dig ID"
// @Success 200 {object} response.Response
// @Router /api/v1/digs/{id} [delete]
func (h *Handler) UnassignDig(c *gin.Context) {
	if err := h.digs.Unassign(c.Request.Context(), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListDigsByRecruiter 某 recruiter 的领地
// @Summary recruiter 领地列表
// @Tags dig
// @Param recruiter_id path string true "recruiter ID"
// @Success 200 {object} response.Response
// @Router /api/v1/digs/recruiter/{recruiter_id} [get]
func (h *Handler) ListDigsByRecruiter(c *gin.Context) {
	list, err := h.digs.ListByRecruiter(c.Request.Context(), c.Param("recruiter_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

// ListDigsByState 某州的领地分配（地图视图）
// @Summary 州领地列表
// @Tags dig
// @Param state path string true "州代码"
// @Success 200 {object} response.Response
// @Router /api/v1/digs/state/{state} [get]
func (h *Handler) ListDigsByState(c *gin.Context) {
	list, err := h.digs.ListByState(c.Request.Context(), c.Param("state"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}
