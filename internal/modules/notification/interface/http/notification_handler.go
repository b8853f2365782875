package http

import (
	"errors"
	"io"

	jwtMiddleware "FPKProgress/internal/middleware/jwt"
	"FPKProgress/internal/modules/notification/application/dto/request"
	"FPKProgress/internal/modules/notification/application/service"
	"FPKProgress/pkg/back"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var req request.ListNotificationRequest
	// 请求体可以为空
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		zlog.Warn("notification list bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.List(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.UnreadCount(c.Request.Context(), a)
	back.Result(c, data, err)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("notification mark read bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	err := h.svc.MarkRead(c.Request.Context(), a, req)
	back.Result(c, nil, err)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.MarkAllRead(c.Request.Context(), a)
	back.Result(c, data, err)
}
