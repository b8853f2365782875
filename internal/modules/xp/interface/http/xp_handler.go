package http

import (
	"errors"
	"io"

	jwtMiddleware "FPKProgress/internal/middleware/jwt"
	"FPKProgress/internal/modules/xp/application/dto/request"
	"FPKProgress/internal/modules/xp/application/service"
	"FPKProgress/pkg/back"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type XPHandler struct {
	svc service.XPService
}

func NewXPHandler(svc service.XPService) *XPHandler {
	return &XPHandler{svc: svc}
}

// bindOptional 这些接口的请求体都可以省略
func bindOptional(c *gin.Context, req any, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		zlog.Warn(op+" bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return false
	}
	return true
}

func (h *XPHandler) Stats(c *gin.Context) {
	var req request.StatsRequest
	if !bindOptional(c, &req, "xp stats") {
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.Stats(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *XPHandler) Leaderboard(c *gin.Context) {
	var req request.LeaderboardRequest
	if !bindOptional(c, &req, "xp leaderboard") {
		return
	}
	data, err := h.svc.Leaderboard(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *XPHandler) Backfill(c *gin.Context) {
	var req request.BackfillRequest
	if !bindOptional(c, &req, "xp backfill") {
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.Backfill(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *XPHandler) BackfillAll(c *gin.Context) {
	var req request.BackfillAllRequest
	if !bindOptional(c, &req, "xp backfill all") {
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.BackfillAll(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *XPHandler) Rollback(c *gin.Context) {
	var req request.RollbackRequest
	if !bindOptional(c, &req, "xp rollback") {
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.Rollback(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *XPHandler) Report(c *gin.Context) {
	var req request.ReportRequest
	if !bindOptional(c, &req, "xp report") {
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.Report(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *XPHandler) BackfillJob(c *gin.Context) {
	var req request.JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("xp backfill job bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.JobStatus(c.Request.Context(), a, req)
	back.Result(c, data, err)
}
