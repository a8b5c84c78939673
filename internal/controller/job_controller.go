package controller

import (
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type JobController struct {
	JobService *service.JobService
}

func NewJobController(jobService *service.JobService) *JobController {
	return &JobController{JobService: jobService}
}

// ListJobs godoc
// @Summary 职位列表
// @Tags 职位
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Param   expertiseTag query string false "专业标签"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/jobs [get]
func (c *JobController) ListJobs(ctx *gin.Context) {
	page, limit := util.PageParams(ctx.Query("page"), ctx.Query("limit"))
	filter := repository.JobFilter{
		ExpertiseTag: ctx.Query("expertiseTag"),
		OpenOnly:     true,
	}

	jobs, total, err := c.JobService.List(filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: jobs, Total: total, Page: page, Limit: limit})
}

// ListMyJobs godoc
// @Summary 雇主自己的职位
// @Tags 职位
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/employer/jobs [get]
func (c *JobController) ListMyJobs(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := util.PageParams(ctx.Query("page"), ctx.Query("limit"))

	jobs, total, err := c.JobService.List(repository.JobFilter{EmployerID: claims.UserID}, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: jobs, Total: total, Page: page, Limit: limit})
}

// GetJob godoc
// @Summary 职位详情
// @Tags 职位
// @Produce  json
// @Param   id path int true "职位ID"
// @Success 200 {object} util.Response{data=model.Job} "成功"
// @Failure 404 {object} util.Response "职位不存在"
// @Router /api/jobs/{id} [get]
func (c *JobController) GetJob(ctx *gin.Context) {
	job, err := c.JobService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, job)
}

// CreateJob godoc
// @Summary 发布职位
// @Tags 职位
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.JobRequest true "职位信息"
// @Success 201 {object} util.Response{data=model.Job} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/employer/jobs [post]
func (c *JobController) CreateJob(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.JobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	job, err := c.JobService.Create(claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, job)
}

// UpdateJob godoc
// @Summary 修改职位
// @Tags 职位
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "职位ID"
// @Param   body body service.JobRequest true "职位信息"
// @Success 200 {object} util.Response{data=model.Job} "成功"
// @Router /api/employer/jobs/{id} [put]
func (c *JobController) UpdateJob(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.JobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	job, err := c.JobService.Update(claims.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, job)
}

// CloseJob godoc
// @Summary 关闭职位
// @Tags 职位
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "职位ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/employer/jobs/{id}/close [post]
func (c *JobController) CloseJob(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.JobService.Close(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
