package controller

import (
	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// CreateTemplate godoc
// @Summary 创建测试模板
// @Tags 能力测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateTestTemplateRequest true "模板"
// @Success 201 {object} util.Response{data=model.TestDefinition} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/employer/tests [post]
func (c *TestController) CreateTemplate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreateTestTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.CreateTemplate(claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// ListTemplates godoc
// @Summary 我的测试模板
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TestDefinition} "成功"
// @Router /api/employer/tests [get]
func (c *TestController) ListTemplates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	tests, err := c.TestService.ListTemplates(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// GetEmployerTest godoc
// @Summary 查看测试（含答案）
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测试ID"
// @Success 200 {object} util.Response{data=model.TestDefinition} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/employer/tests/{id} [get]
func (c *TestController) GetEmployerTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	test, err := c.TestService.GetTestForEmployer(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// DeactivateTest godoc
// @Summary 删除或停用测试
// @Description 已有作答结果的测试只会被停用
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测试ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/employer/tests/{id} [delete]
func (c *TestController) DeactivateTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	deleted, err := c.TestService.DeactivateTest(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": deleted, "deactivated": !deleted})
}

// AssignTestRequest 分配测试
// swagger:model AssignTestRequest
type AssignTestRequest struct {
	CandidateID uint `json:"candidateId" binding:"required"`
}

// AssignTest godoc
// @Summary 分配测试给候选人
// @Description 深拷贝模板生成候选人专属测试，并通知候选人
// @Tags 能力测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模板ID"
// @Param   body body AssignTestRequest true "候选人"
// @Success 201 {object} util.Response{data=object} "分配成功"
// @Failure 404 {object} util.Response "模板不存在"
// @Router /api/employer/tests/{id}/assign [post]
func (c *TestController) AssignTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req AssignTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	testID, err := c.TestService.AssignTest(ctx.Request.Context(), claims.UserID, req.CandidateID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"testId": testID})
}

// ListEmployerResults godoc
// @Summary 候选人作答结果
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TestResult} "成功"
// @Router /api/employer/test-results [get]
func (c *TestController) ListEmployerResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	results, err := c.TestService.ListResultsForEmployer(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// ListEligible godoc
// @Summary 可参加的测试
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CandidateTestView} "成功"
// @Router /api/candidate/tests [get]
func (c *TestController) ListEligible(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	tests, err := c.TestService.ListEligible(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// GetCandidateTest godoc
// @Summary 查看测试题目
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测试ID"
// @Success 200 {object} util.Response{data=service.CandidateTestView} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/candidate/tests/{id} [get]
func (c *TestController) GetCandidateTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.TestService.GetTestForCandidate(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitTestRequest 题目ID -> 答案
// swagger:model SubmitTestRequest
type SubmitTestRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

// SubmitTest godoc
// @Summary 提交测试
// @Description 评分并保存结果，同一测试只能提交一次
// @Tags 能力测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测试ID"
// @Param   body body SubmitTestRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitTestResponse} "评分结果"
// @Failure 400 {object} util.Response "no answers provided"
// @Failure 404 {object} util.Response "测试不存在"
// @Failure 409 {object} util.Response "test already completed"
// @Router /api/candidate/tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.TestService.SubmitTest(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetMyResults godoc
// @Summary 我的测试结果
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TestResult} "成功"
// @Router /api/candidate/test-results [get]
func (c *TestController) GetMyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	results, err := c.TestService.GetMyResults(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// GetResult godoc
// @Summary 结果详情
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "结果ID"
// @Success 200 {object} util.Response{data=model.TestResult} "成功"
// @Router /api/test-results/{id} [get]
func (c *TestController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	result, err := c.TestService.GetResult(claims.UserID, claims.Role, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
