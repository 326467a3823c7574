package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"aimtrainer/internal/rooms"
	"aimtrainer/internal/sensitivity"
)

const maxCurveSamples = 2048

type curveResponse struct {
	Curve   sensitivity.CurveParameters `json:"curve"`
	Profile string                      `json:"profile"`
	Points  [][2]float32                `json:"points"`
}

type conversionResponse struct {
	From     sensitivity.Game `json:"from"`
	To       sensitivity.Game `json:"to"`
	Sens     float64          `json:"sens"`
	CmPer360 float64          `json:"cm_per_360"`
}

func (s *Server) roomFromPath(w http.ResponseWriter, r *http.Request) *rooms.Room {
	room := s.Rooms.Find(r.PathValue("code"))
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
	}
	return room
}

// handleCurve samples the room's live curve for plotting.
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromPath(w, r)
	if room == nil {
		return
	}
	n := sensitivity.DefaultTableSize
	if v := r.URL.Query().Get("samples"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxCurveSamples {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("samples must be in 1..%d", maxCurveSamples))
			return
		}
		n = parsed
	}
	curve := room.Game.Curve()
	writeJSON(w, http.StatusOK, curveResponse{
		Curve:   curve,
		Profile: room.Game.ActiveProfile().Name,
		Points:  sensitivity.Points(sensitivity.Table(n, curve)),
	})
}

// handleConvert translates a sensitivity between games and reports the
// resulting cm/360 at the given DPI. The source may be given as an in-game
// sens or as a cm/360 distance.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := sensitivity.Game(strings.ToLower(q.Get("from")))
	to := sensitivity.Game(strings.ToLower(q.Get("to")))
	if !sensitivity.Known(from) || !sensitivity.Known(to) {
		writeError(w, http.StatusBadRequest, "unknown game")
		return
	}
	dpi := 800.0
	if v := q.Get("dpi"); v != "" {
		var err error
		if dpi, err = strconv.ParseFloat(v, 64); err != nil || dpi <= 0 {
			writeError(w, http.StatusBadRequest, "dpi must be a positive number")
			return
		}
	}

	var sens float64
	if v := q.Get("cm"); v != "" {
		cm, err := strconv.ParseFloat(v, 64)
		if err != nil || cm <= 0 {
			writeError(w, http.StatusBadRequest, "cm must be a positive number")
			return
		}
		sens = sensitivity.SensFromCmPer360(from, cm, dpi)
	} else {
		var err error
		if sens, err = strconv.ParseFloat(q.Get("sens"), 64); err != nil || sens <= 0 {
			writeError(w, http.StatusBadRequest, "sens must be a positive number")
			return
		}
	}

	converted := sensitivity.Convert(from, to, sens)
	writeJSON(w, http.StatusOK, conversionResponse{
		From:     from,
		To:       to,
		Sens:     converted,
		CmPer360: sensitivity.CmPer360(to, converted, dpi),
	})
}

func (s *Server) handleExportProfiles(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromPath(w, r)
	if room == nil {
		return
	}
	data, err := room.Game.ExportProfiles()
	if err != nil {
		log.Println(err)
		writeError(w, http.StatusInternalServerError, "failed to export profiles")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, data)
}

// handleSaveProfile stores the live curve as a named profile. With a JSON
// body it imports a profile list instead.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromPath(w, r)
	if room == nil {
		return
	}
	if cookie, err := r.Cookie("player_id"); err != nil || cookie.Value != room.HostID {
		writeError(w, http.StatusForbidden, "only the host can change profiles")
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if err := room.Game.ImportProfiles(string(body)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.broadcastState(room)
		s.handleExportProfiles(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	dpi, err := strconv.ParseFloat(r.FormValue("dpi"), 64)
	if err != nil || dpi <= 0 {
		dpi = room.Game.ActiveProfile().DPI
	}
	game := sensitivity.Game(strings.ToLower(r.FormValue("game")))
	if game != "" && !sensitivity.Known(game) {
		writeError(w, http.StatusBadRequest, "unknown game")
		return
	}
	if !room.Game.SaveProfile(name, dpi, game) {
		writeError(w, http.StatusConflict, "profile name empty or taken")
		return
	}
	log.Printf("[Handle:SaveProfile] Saved profile %q in room %s\n", name, room.Code)
	s.handleExportProfiles(w, r)
}
