package controller

import (
	"talent_match_backend/internal/model"
	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ApplicationController struct {
	AppService *service.ApplicationService
}

func NewApplicationController(appService *service.ApplicationService) *ApplicationController {
	return &ApplicationController{AppService: appService}
}

// ApplyRequest 投递申请
type ApplyRequest struct {
	CoverLetter string `json:"coverLetter"`
}

// Apply godoc
// @Summary 申请职位
// @Tags 申请
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "职位ID"
// @Param   body body ApplyRequest false "求职信"
// @Success 201 {object} util.Response{data=model.Application} "创建成功"
// @Failure 409 {object} util.Response "已申请"
// @Router /api/jobs/{id}/apply [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req ApplyRequest
	_ = ctx.ShouldBindJSON(&req)

	app, err := c.AppService.Apply(claims.UserID, util.MustParseUint(ctx.Param("id")), req.CoverLetter)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, app)
}

// ListMine godoc
// @Summary 我的申请
// @Tags 申请
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Application} "成功"
// @Router /api/candidate/applications [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	apps, err := c.AppService.ListMine(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, apps)
}

// ListForJob godoc
// @Summary 职位收到的申请
// @Tags 申请
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "职位ID"
// @Success 200 {object} util.Response{data=[]model.Application} "成功"
// @Router /api/employer/jobs/{id}/applications [get]
func (c *ApplicationController) ListForJob(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	apps, err := c.AppService.ListForJob(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, apps)
}

// UpdateStatusRequest 状态变更
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary 更新申请状态
// @Description 雇主可设置任意状态，候选人只能撤回
// @Tags 申请
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "申请ID"
// @Param   body body UpdateStatusRequest true "新状态"
// @Success 200 {object} util.Response{data=model.Application} "成功"
// @Router /api/applications/{id}/status [put]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	app, err := c.AppService.UpdateStatus(ctx.Request.Context(), claims.UserID, claims.Role,
		util.MustParseUint(ctx.Param("id")), model.ApplicationStatus(req.Status))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, app)
}
