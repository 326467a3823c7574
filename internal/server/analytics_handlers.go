package server

import (
	"log"
	"net/http"
	"strconv"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) handleAnalyticsLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics requires a database connection")
		return
	}

	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "score"
	}
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := s.Analytics.GetLeaderboard(r.Context(), category, limit)
	if err != nil {
		log.Printf("[Analytics] leaderboard error: %v\n", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAnalyticsPlayer(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics requires a database connection")
		return
	}

	stats, err := s.Analytics.GetPlayerLifetimeStats(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[Analytics] player stats error: %v\n", err)
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if s.Store != nil {
		if stats.Awarded, err = s.Store.GetPlayerBadges(r.Context(), stats.PlayerID); err != nil {
			log.Printf("[Analytics] player badges error: %v\n", err)
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalyticsSession(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics requires a database connection")
		return
	}

	recap, err := s.Analytics.GetSessionRecap(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[Analytics] session recap error: %v\n", err)
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
