package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/realtime"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// DashboardSocketController streams feed events to dashboard viewers. Viewers
// only listen: they join and leave rooms, everything else is pushed.
type DashboardSocketController struct {
	router *realtime.Router
	logger *slog.Logger
}

func NewDashboardSocketController(router *realtime.Router, logger *slog.Logger) *DashboardSocketController {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardSocketController{router: router, logger: logger}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access is gated by the bearer token, not by origin.
		return true
	},
}

// peerID accepts both 42 and "42".
type peerID int64

func (p *peerID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*p = peerID(n)
	return nil
}

type inboundFrame struct {
	Type       string `json:"type"`
	SenderID   peerID `json:"sender_id"`
	ReceiverID peerID `json:"receiver_id"`
	RoomKey    string `json:"room_key,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type    string `json:"type"`
	RoomKey string `json:"room_key,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades to websocket and processes join/leave frames until the viewer disconnects.
func (ctl *DashboardSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(c.Query("viewer_id"), ws)
		ctl.router.Attach(conn)
		ctl.logger.Debug("dashboard_connected", "session_id", conn.ID, "viewer_id", conn.ViewerID)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(4 << 10)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.logger.Debug("dashboard_read_failed", "session_id", conn.ID, "err", err)
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// roomOf derives the canonical room key from the frame's two participants, or
// validates an explicit room_key.
func roomOf(frame inboundFrame) (string, error) {
	if frame.RoomKey != "" {
		if _, _, err := anon.ParseRoomKey(frame.RoomKey); err != nil {
			return "", err
		}
		return frame.RoomKey, nil
	}
	a, b := int64(frame.SenderID), int64(frame.ReceiverID)
	if a <= 0 || b <= 0 || a == b {
		return "", errors.New("sender_id and receiver_id must be two different user ids")
	}
	return anon.RoomKey(a, b), nil
}

func (ctl *DashboardSocketController) handleJoin(conn *realtime.Connection, frame inboundFrame) {
	room, err := roomOf(frame)
	if err != nil {
		ctl.replyError(conn, "bad_request", err.Error())
		return
	}
	if !ctl.router.Join(room, conn) {
		return
	}
	ctl.reply(conn, ackFrame{Type: "joined", RoomKey: room})
}

func (ctl *DashboardSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	room, err := roomOf(frame)
	if err != nil {
		ctl.replyError(conn, "bad_request", err.Error())
		return
	}
	ctl.router.Leave(room, conn)
	ctl.reply(conn, ackFrame{Type: "left", RoomKey: room})
}

func (ctl *DashboardSocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *DashboardSocketController) replyError(conn *realtime.Connection, code, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message})
}
