package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		observerID, admin, out := s.handshake(conn)
		if observerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine: STATE frames and command results share one channel,
		// so ordering toward the client is preserved.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
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

		// Reader loop: only admin observers may submit commands; everything
		// else on the wire is ignored.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCommand {
				continue
			}
			var cmd protocol.CommandMsg
			if err := json.Unmarshal(msg, &cmd); err != nil || cmd.ProtocolVersion != protocol.Version {
				s.enqueue(out, protocol.CommandResultMsg{
					Type:            protocol.TypeCommandResult,
					ProtocolVersion: protocol.Version,
					Ref:             cmd.ID,
					OK:              false,
					Code:            protocol.ErrProtoBadRequest,
					Message:         "malformed command",
				})
				continue
			}
			if !admin {
				s.enqueue(out, protocol.CommandResultMsg{
					Type:            protocol.TypeCommandResult,
					ProtocolVersion: protocol.Version,
					Ref:             cmd.ID,
					OK:              false,
					Code:            protocol.ErrBadRequest,
					Message:         "admin observer required",
				})
				continue
			}
			respCh := make(chan protocol.CommandResultMsg, 1)
			s.world.Inbox() <- world.CommandEnvelope{
				ObserverID: observerID,
				Cmd:        cmd,
				Resp:       respCh,
			}
			go func() {
				select {
				case res := <-respCh:
					s.enqueue(out, res)
				case <-ctx.Done():
				}
			}()
		}

		select {
		case s.world.ObserverLeave() <- observerID:
		default:
			// World loop is stopping; nothing else to do.
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (observerID string, admin bool, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false, nil
	}
	if hello.ObserverName == "" {
		hello.ObserverName = "observer"
	}

	out = make(chan []byte, 64)
	respCh := make(chan world.ObserverJoinResponse, 1)
	select {
	case s.world.ObserverJoin() <- world.ObserverJoinRequest{
		Name:  hello.ObserverName,
		Admin: hello.Admin,
		Out:   out,
		Resp:  respCh,
	}:
	default:
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
		return "", false, nil
	}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", false, nil
	}
	return resp.ObserverID, hello.Admin, out
}

func (s *Server) enqueue(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
		// Slow consumer; it will catch up from the next STATE frame.
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
