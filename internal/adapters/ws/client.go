package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

// Client is one websocket subscriber of a wheel. Its subscription
// bookkeeping after done belongs to the hub's Run goroutine.
type Client struct {
	hub     *Hub
	wheelID string
	conn    *websocket.Conn
	send    chan ServerMessage
	done    chan struct{}

	primed   bool
	revision uint64
	pending  []ports.Event
}

func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "wheel_id", c.wheelID, "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	ctx := context.Background()

	var (
		res app.Result
		err error
	)
	switch msg.Type {
	case MsgTypeSpin:
		res, err = c.hub.cmds.Spin(ctx, c.wheelID)
	case MsgTypeSpinAgain:
		res, err = c.hub.cmds.SpinAgain(ctx, c.wheelID)
	case MsgTypeDismiss:
		res, err = c.hub.cmds.Dismiss(ctx, c.wheelID)
	case MsgTypeResize:
		var d resizeData
		if jerr := json.Unmarshal(msg.Data, &d); jerr != nil {
			err = fmt.Errorf("bad resize payload: %w", jerr)
			break
		}
		res, err = c.hub.cmds.Resize(ctx, c.wheelID, d.Width)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		c.trySend(ServerMessage{Type: MsgTypeError, Data: err.Error()})
		return
	}
	c.trySend(ServerMessage{Type: MsgTypeAck, Data: Ack{
		Command:  msg.Type,
		Accepted: res.Accepted,
		Phase:    string(res.State.Phase),
	}})
}
