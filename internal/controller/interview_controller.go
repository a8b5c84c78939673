package controller

import (
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
}

func NewInterviewController(interviewService *service.InterviewService) *InterviewController {
	return &InterviewController{InterviewService: interviewService}
}

// Schedule godoc
// @Summary 安排面试
// @Description 创建面试并按 24h/1h/15min 生成提醒
// @Tags 面试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ScheduleInterviewRequest true "面试信息"
// @Success 201 {object} util.Response{data=model.Interview} "创建成功"
// @Failure 400 {object} util.Response "时间必须在未来"
// @Router /api/employer/interviews [post]
func (c *InterviewController) Schedule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.ScheduleInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	interview, err := c.InterviewService.Schedule(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, interview)
}

// ListMine godoc
// @Summary 我的面试
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Interview} "成功"
// @Router /api/interviews [get]
func (c *InterviewController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	interviews, err := c.InterviewService.ListMine(claims.UserID, claims.Role)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, interviews)
}

// Get godoc
// @Summary 面试详情
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "面试ID"
// @Success 200 {object} util.Response{data=model.Interview} "成功"
// @Router /api/interviews/{id} [get]
func (c *InterviewController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	interview, err := c.InterviewService.Get(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, interview)
}

// UpdateStatus godoc
// @Summary 更新面试状态
// @Description 候选人只能确认或取消
// @Tags 面试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "面试ID"
// @Param   body body UpdateStatusRequest true "新状态"
// @Success 200 {object} util.Response "成功"
// @Router /api/interviews/{id}/status [put]
func (c *InterviewController) UpdateStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.InterviewService.UpdateStatus(claims.UserID, claims.Role, ctx.Param("id"), model.InterviewStatus(req.Status))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RescheduleRequest 改期
type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// Reschedule godoc
// @Summary 面试改期
// @Tags 面试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "面试ID"
// @Param   body body RescheduleRequest true "新时间"
// @Success 201 {object} util.Response{data=model.Interview} "新面试"
// @Router /api/employer/interviews/{id}/reschedule [post]
func (c *InterviewController) Reschedule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req RescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	interview, err := c.InterviewService.Reschedule(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.ScheduledAt)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, interview)
}
