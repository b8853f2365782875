package http

import (
	"errors"
	"io"

	jwtMiddleware "FPKProgress/internal/middleware/jwt"
	"FPKProgress/internal/modules/goal/application/dto/request"
	"FPKProgress/internal/modules/goal/application/service"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/back"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GoalHandler struct {
	goalSvc  service.GoalService
	coachSvc service.CoachService
}

func NewGoalHandler(goalSvc service.GoalService, coachSvc service.CoachService) *GoalHandler {
	return &GoalHandler{goalSvc: goalSvc, coachSvc: coachSvc}
}

// bind 解析请求体并取出调用方；失败时已写回响应
func bind(c *gin.Context, req any, optionalBody bool, op string) (actor.Actor, bool) {
	if err := c.ShouldBindJSON(req); err != nil && !(optionalBody && errors.Is(err, io.EOF)) {
		zlog.Warn(op+" bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return actor.Actor{}, false
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return actor.Actor{}, false
	}
	return a, true
}

func (h *GoalHandler) Create(c *gin.Context) {
	var req request.CreateGoalRequest
	a, ok := bind(c, &req, false, "goal create")
	if !ok {
		return
	}
	data, err := h.goalSvc.CreateGoal(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) List(c *gin.Context) {
	var req request.ListGoalsRequest
	a, ok := bind(c, &req, true, "goal list")
	if !ok {
		return
	}
	data, err := h.goalSvc.ListGoals(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) Get(c *gin.Context) {
	var req request.GetGoalRequest
	a, ok := bind(c, &req, false, "goal get")
	if !ok {
		return
	}
	data, err := h.goalSvc.GetGoal(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) Update(c *gin.Context) {
	var req request.UpdateGoalRequest
	a, ok := bind(c, &req, false, "goal update")
	if !ok {
		return
	}
	data, err := h.goalSvc.UpdateGoal(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) Complete(c *gin.Context) {
	var req request.CompleteGoalRequest
	a, ok := bind(c, &req, false, "goal complete")
	if !ok {
		return
	}
	data, err := h.goalSvc.CompleteGoal(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) Recompute(c *gin.Context) {
	var req request.RecomputeRequest
	a, ok := bind(c, &req, true, "goal recompute")
	if !ok {
		return
	}
	data, err := h.goalSvc.Recompute(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *GoalHandler) Coach(c *gin.Context) {
	var req request.CoachRequest
	a, ok := bind(c, &req, true, "goal coach")
	if !ok {
		return
	}
	data, err := h.coachSvc.Coach(c.Request.Context(), a, req)
	back.Result(c, data, err)
}
