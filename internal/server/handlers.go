package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"aimtrainer/internal/analytics"
	"aimtrainer/internal/db"
	"aimtrainer/internal/metrics"
	"aimtrainer/internal/rooms"

	"github.com/google/uuid"
)

type Server struct {
	Rooms      *rooms.Store
	Store      SessionStore       // nil if no database configured
	Analytics  *analytics.Queries // nil if no database configured
	ShotBuffer chan db.ShotEvent  // nil if no database configured
	Metrics    *metrics.Recorder

	runs trackers
}

type roomResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Host     bool   `json:"host"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

// getRoom resolves the current room from the room_code cookie, falling back
// to a ?code= query parameter.
func (s *Server) getRoom(r *http.Request) *rooms.Room {
	code := r.URL.Query().Get("code")
	if cookie, err := r.Cookie("room_code"); err == nil {
		code = cookie.Value
	}
	if code == "" {
		return nil
	}
	return s.Rooms.Find(code)
}

func playerName(r *http.Request, fallback string) string {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return fallback
	}
	return name
}

// playerIdentity reuses a player_id cookie the database already knows so
// lifetime stats follow the player across rooms. Anyone else gets a new id.
func (s *Server) playerIdentity(r *http.Request, fallback string) (id, name string) {
	name = playerName(r, "")
	if cookie, err := r.Cookie("player_id"); err == nil && s.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
		defer cancel()
		if rec, err := s.Store.GetPlayer(ctx, cookie.Value); err == nil {
			if name == "" {
				name = rec.Name
			}
			return rec.ID, name
		}
	}
	if name == "" {
		name = fallback
	}
	return uuid.New().String(), name
}

func (s *Server) upsertPlayer(ctx context.Context, id, name, color string) {
	if s.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := s.Store.UpsertPlayer(ctx, id, name, color); err != nil {
		log.Printf("[DB] UpsertPlayer error: %v\n", err)
	}
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:CreateRoom] Request Received")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	hostID, name := s.playerIdentity(r, "Host")
	room, err := s.Rooms.Create(hostID)
	if err != nil {
		log.Println(err)
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	s.Metrics.SetRooms(s.Rooms.Count())

	host := room.Game.Players.Add(hostID, name)
	s.upsertPlayer(r.Context(), host.ID, host.Name, host.Color)

	setCookie(w, "room_code", room.Code)
	setCookie(w, "player_id", hostID)

	log.Printf("[Handle:CreateRoom] Created room %s\n", room.Code)
	writeJSON(w, http.StatusCreated, roomResponse{Code: room.Code, PlayerID: host.ID, Name: host.Name, Color: host.Color, Host: true})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:JoinRoom] Request Received")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	room := s.Rooms.Find(r.FormValue("code"))
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	room.Touch(time.Now())
	code := room.Code

	// A returning spectator keeps their id
	if cookie, err := r.Cookie("player_id"); err == nil && room.Game.Players.ValidateSession(cookie.Value) {
		p := room.Game.Players.Get(cookie.Value)
		setCookie(w, "room_code", code)
		writeJSON(w, http.StatusOK, roomResponse{Code: code, PlayerID: p.ID, Name: p.Name, Color: p.Color, Host: p.Host})
		return
	}

	id, name := s.playerIdentity(r, "Spectator")
	p := room.Game.Players.Add(id, name)
	s.upsertPlayer(r.Context(), p.ID, p.Name, p.Color)
	if err := room.Broadcaster.BroadcastJSON("newPlayer", p); err != nil {
		log.Println(err)
	}

	setCookie(w, "room_code", code)
	setCookie(w, "player_id", id)
	writeJSON(w, http.StatusOK, roomResponse{Code: code, PlayerID: p.ID, Name: p.Name, Color: p.Color, Host: p.Host})
}

func (s *Server) handleRoomWithCode(w http.ResponseWriter, r *http.Request) {
	room := s.Rooms.Find(r.PathValue("code"))
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	room.Touch(time.Now())
	setCookie(w, "room_code", room.Code)
	writeJSON(w, http.StatusOK, room.Game.Snapshot())
}

func (s *Server) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:PlayAgain] Request Received")
	room := s.getRoom(r)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if cookie, err := r.Cookie("player_id"); err != nil || cookie.Value != room.HostID {
		writeError(w, http.StatusForbidden, "only the host can reset the room")
		return
	}

	s.resetRoom(room)
	writeJSON(w, http.StatusOK, room.Game.Snapshot())
}

// handleLeaveRoom removes the caller from their room. A departing host
// closes the room for everyone.
func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:LeaveRoom] Request Received")
	room := s.getRoom(r)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	cookie, err := r.Cookie("player_id")
	if err != nil || !room.Game.Players.Remove(cookie.Value) {
		writeError(w, http.StatusBadRequest, "not in this room")
		return
	}

	if cookie.Value == room.HostID {
		s.runs.drop(room.Code)
		room.Broadcaster.Broadcast("roomClosed", room.Code)
		s.Rooms.Delete(room.Code)
		s.Metrics.SetRooms(s.Rooms.Count())
		log.Printf("[Handle:LeaveRoom] Host closed room %s\n", room.Code)
	} else if err := room.Broadcaster.BroadcastJSON("playerLeft", map[string]string{"id": cookie.Value}); err != nil {
		log.Println(err)
	}

	http.SetCookie(w, &http.Cookie{Name: "room_code", Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// resetRoom abandons any run in progress and sends everyone back to the lobby.
func (s *Server) resetRoom(room *rooms.Room) {
	s.runs.drop(room.Code)
	room.Game.ResetToLobby()
	room.Touch(time.Now())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		http.Error(w, "Room not found", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgChan := room.Broadcaster.Subscribe()
	defer room.Broadcaster.Unsubscribe(msgChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Data, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Store != nil {
		if err := s.Store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	players := 0
	for _, room := range s.Rooms.List() {
		players += room.Game.Players.Count()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rooms": s.Rooms.Count(), "players": players})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.Metrics.SetRooms(s.Rooms.Count())
	s.Metrics.Handler().ServeHTTP(w, r)
}
