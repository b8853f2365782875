package http

import (
	jwtMiddleware "FPKProgress/internal/middleware/jwt"
	"FPKProgress/internal/modules/activity/application/dto/request"
	"FPKProgress/internal/modules/activity/application/service"
	"FPKProgress/pkg/back"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	svc service.ActivityService
}

func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) LogStudySession(c *gin.Context) {
	var req request.StudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("study session bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.LogStudySession(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *ActivityHandler) LogReadingSession(c *gin.Context) {
	var req request.ReadingSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("reading session bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.LogReadingSession(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *ActivityHandler) CreateFlashcard(c *gin.Context) {
	var req request.FlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("flashcard bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.CreateFlashcard(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *ActivityHandler) CreateNote(c *gin.Context) {
	var req request.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("note bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.CreateNote(c.Request.Context(), a, req)
	back.Result(c, data, err)
}

func (h *ActivityHandler) RegisterFileUpload(c *gin.Context) {
	var req request.FileUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("file upload bind failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	a, ok := jwtMiddleware.ActorFrom(c)
	if !ok {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthorized.Message)
		return
	}
	data, err := h.svc.RegisterFileUpload(c.Request.Context(), a, req)
	back.Result(c, data, err)
}
