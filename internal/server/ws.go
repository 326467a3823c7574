package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/rooms"
	"aimtrainer/internal/scenario"
	"aimtrainer/internal/wshub"

	"github.com/coder/websocket"
)

const clientSendBuffer = 64

var errNotHost = errors.New("only the host can drive the game")

// handleWS streams a room over a WebSocket. The host sends input frames and
// every connected client receives the resulting state.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		http.Error(w, "Room not found", http.StatusBadRequest)
		return
	}
	idCookie, err := r.Cookie("player_id")
	if err != nil {
		http.Error(w, "Not Registered", http.StatusBadRequest)
		return
	}
	player := room.Game.Players.Get(idCookie.Value)
	if player == nil {
		http.Error(w, "Not Registered", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	client := &wshub.Client{
		PlayerID: player.ID,
		Name:     player.Name,
		Color:    player.Color,
		Conn:     conn,
		Send:     make(chan []byte, clientSendBuffer),
	}
	room.Hub.Register(client)
	defer room.Hub.Unregister(player.ID)
	go client.WritePump(ctx)

	snap := room.Game.Snapshot()
	room.Hub.SendTo(player.ID, wshub.ServerMessage{Type: "welcome", PlayerID: player.ID, Name: player.Name, Color: player.Color, State: &snap})
	log.Printf("[WS] %s connected to room %s\n", player.Name, room.Code)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				log.Printf("[WS] Read error: %v\n", err)
			}
			return
		}
		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			room.Hub.SendTo(player.ID, wshub.ServerMessage{Type: "error", Error: "invalid message"})
			continue
		}
		if err := s.handleClientMessage(ctx, room, player.ID, msg); err != nil {
			room.Hub.SendTo(player.ID, wshub.ServerMessage{Type: "error", Error: err.Error()})
		}
	}
}

// handleClientMessage applies one client message to the room.
func (s *Server) handleClientMessage(ctx context.Context, room *rooms.Room, playerID string, msg wshub.ClientMessage) error {
	if playerID != room.HostID {
		return errNotHost
	}
	room.Touch(time.Now())
	g := room.Game

	switch msg.Type {
	case "frame":
		start := time.Now()
		res := g.Step(msg.Frame())
		s.Metrics.Frame(time.Since(start))
		s.afterStep(ctx, room, res)
	case "start":
		tr, ok := g.Start()
		if !ok {
			return errors.New("a run is already in progress")
		}
		s.afterStep(ctx, room, gamedata.FrameResult{Transitions: []scenario.Transition{tr}})
	case "curve":
		if msg.Curve == nil {
			return errors.New("missing curve")
		}
		g.SetCurve(*msg.Curve)
		s.broadcastState(room)
	case "profile":
		if !g.UseProfile(msg.Profile) {
			return errors.New("unknown profile " + msg.Profile)
		}
		s.broadcastState(room)
	case "reset":
		s.resetRoom(room)
		s.broadcastState(room)
	default:
		return errors.New("unknown message type " + msg.Type)
	}
	return nil
}

func (s *Server) afterStep(ctx context.Context, room *rooms.Room, res gamedata.FrameResult) {
	snap := room.Game.Snapshot()
	s.observe(ctx, room, res, snap)
	for _, tr := range res.Transitions {
		phase := gamedata.PhaseEvent(tr)
		room.Hub.Broadcast(wshub.ServerMessage{Type: "phase", Phase: &phase})
	}
	if len(res.Transitions) > 0 {
		// per-scenario stats may have been reset
		snap = room.Game.Snapshot()
	}
	room.Hub.Broadcast(wshub.ServerMessage{Type: "state", State: &snap})
}

func (s *Server) broadcastState(room *rooms.Room) {
	snap := room.Game.Snapshot()
	room.Hub.Broadcast(wshub.ServerMessage{Type: "state", State: &snap})
}
