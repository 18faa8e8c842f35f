package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/staffing-ats/internal/api/middleware"
	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/internal/service"
)

// Handler HTTP 处理器集合
type Handler struct {
	sendoutSvc *service.SendoutService
	summary    *service.SummaryAggregator
	digest     *service.CoachDigestService
	activity   *service.ActivityTracker
	digs       repository.DigRepository
	users      repository.UserRepository
	campaign   *mailer.Campaign
	jwtSecret  string
	jwtTTL     time.Duration
}

func New(
	sendoutSvc *service.SendoutService,
	summary *service.SummaryAggregator,
	digest *service.CoachDigestService,
	activity *service.ActivityTracker,
	digs repository.DigRepository,
	users repository.UserRepository,
	campaign *mailer.Campaign,
	jwtSecret string,
	jwtTTL time.Duration,
) *Handler {
	return &Handler{
		sendoutSvc: sendoutSvc,
		summary:    summary,
		digest:     digest,
		activity:   activity,
		digs:       digs,
		users:      users,
		campaign:   campaign,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
	}
}

// RegisterRoutes 注册 /api/v1 路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("", middleware.Auth(h.jwtSecret))
	{
		authed.POST("/sendouts", h.CreateSendout)
		authed.PUT("/sendouts/:id", h.UpdateSendout)
		authed.POST("/sendouts/:id/convert", h.ConvertSendover)
		authed.DELETE("/sendouts/:id", h.DeleteSendout)
		authed.GET("/sendouts/:id", h.SendoutDetails)
		authed.GET("/sendouts/:id/timeline", h.SendoutTimeline)
		authed.GET("/sendouts", h.ListSendouts)
		authed.GET("/sendouts/summary", h.SendoutSummary)

		authed.POST("/digests/coach/:coach_id", h.SendCoachDigest)

		authed.POST("/digs", h.AssignDig)
		authed.DELETE("/digs/:id", h.UnassignDig)
		authed.GET("/digs/recruiter/:recruiter_id", h.ListDigsByRecruiter)
		authed.GET("/digs/state/:state", h.ListDigsByState)

		authed.POST("/activity/calls", h.RegisterCall)
		authed.POST("/activity/texts", h.RegisterText)

		authed.POST("/campaigns/send", h.SendCampaign)
	}
}
