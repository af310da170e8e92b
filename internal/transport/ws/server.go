package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"growarena.gg/internal/game/engine"
	"growarena.gg/internal/protocol"
)

// Server speaks the dispatcher protocol over one or more websocket
// connections. Each connection is a full-duplex peer: REQUESTs come in and
// get their RESULT back on the same connection; NOTIFYs fan out to every
// connected dispatcher.
type Server struct {
	engine *engine.Engine
	log    *log.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*client]struct{}
}

type client struct {
	out chan []byte
}

func NewServer(e *engine.Engine, logger *log.Logger) *Server {
	return &Server{
		engine: e,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		conns: map[*client]struct{}{},
	}
}

// Notify implements the scheduler's push sink. Slow dispatchers drop
// messages rather than stall settlement.
func (s *Server) Notify(groupID, userID, message string) {
	b, err := json.Marshal(protocol.NotifyMsg{
		Type:            protocol.TypeNotify,
		ProtocolVersion: protocol.Version,
		GroupID:         groupID,
		UserID:          userID,
		Message:         message,
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	for c := range s.conns {
		select {
		case c.out <- b:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := s.handshake(conn)
		if c == nil {
			return
		}
		defer s.detach(c)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-c.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeRequest {
				continue
			}
			var req protocol.RequestMsg
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			if req.ProtocolVersion != protocol.Version {
				s.send(c, s.engine.Handle(protocol.RequestMsg{Seq: req.Seq}))
				continue
			}
			s.send(c, s.engine.Handle(req))
		}
	}
}

func (s *Server) send(c *client, res protocol.ResultMsg) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default:
		if s.log != nil {
			s.log.Printf("ws: dropping result seq=%d, client backed up", res.Seq)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *client {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}

	welcome, err := json.Marshal(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ServerName:      "growarena",
	})
	if err != nil {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		return nil
	}

	c := &client{out: make(chan []byte, 256)}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	return c
}

func (s *Server) detach(c *client) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
