package websocket

import (
	"net/http"
	"strings"

	"FPKProgress/pkg/util/myjwt"
	"FPKProgress/pkg/ws"
	"FPKProgress/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PushWsHandler 通知推送通道，只下行
type PushWsHandler struct {
	hub *ws.Hub
}

func NewPushWsHandler(hub *ws.Hub) *PushWsHandler {
	return &PushWsHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect 浏览器原生 WebSocket 无法带 Authorization 头，令牌放在 query 里自行校验
func (h *PushWsHandler) Connect(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims, err := myjwt.ParseToken(token)
	if err != nil || claims == nil || claims.Uuid == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error("ws upgrade failed", zap.String("user_id", claims.Uuid), zap.Error(err))
		return
	}

	client := ws.NewClient(claims.Uuid, conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	go client.WritePump()
	client.ReadPump()
}
