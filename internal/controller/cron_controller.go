package controller

import (
	"context"
	"time"

	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// ReminderSweeper 由 service.ReminderService 实现
type ReminderSweeper interface {
	RunReminderSweep(ctx context.Context, token string, now time.Time) (*service.SweepSummary, error)
}

type CronController struct {
	Sweeper ReminderSweeper
}

func NewCronController(sweeper ReminderSweeper) *CronController {
	return &CronController{Sweeper: sweeper}
}

// InterviewReminders godoc
// @Summary 面试提醒扫描
// @Description 由外部定时任务调用，投递所有到期未发送的面试提醒
// @Tags 定时任务
// @Produce  json
// @Param   X-Cron-Secret header string false "共享密钥"
// @Success 200 {object} util.Response{data=service.SweepSummary} "扫描结果"
// @Failure 401 {object} util.Response "密钥错误"
// @Router /api/cron/interview-reminders [post]
func (c *CronController) InterviewReminders(ctx *gin.Context) {
	summary, err := c.Sweeper.RunReminderSweep(ctx.Request.Context(), security.RequestSecret(ctx), time.Now().UTC())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
