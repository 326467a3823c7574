package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"aimtrainer/internal/db"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/metrics"
	"aimtrainer/internal/rooms"
	"aimtrainer/internal/server/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"
)

func testGameConfig() gamedata.Config {
	cfg := gamedata.DefaultConfig()
	cfg.FreePlay = false
	return cfg
}

func newTestServer(t *testing.T, store SessionStore) (*Server, *httptest.Server) {
	t.Helper()
	srv := &Server{
		Rooms:   rooms.NewStore(testGameConfig()),
		Store:   store,
		Metrics: metrics.New(prometheus.NewRegistry()),
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func cookieValue(t *testing.T, client *http.Client, baseURL, name string) string {
	t.Helper()
	u, _ := url.Parse(baseURL)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decodeRoom(t *testing.T, resp *http.Response) roomResponse {
	t.Helper()
	defer resp.Body.Close()
	var out roomResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

// createRoom creates a room through the API and returns the response.
func createRoom(t *testing.T, client *http.Client, baseURL, name string) roomResponse {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/rooms/create", url.Values{"name": {name}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	return decodeRoom(t, resp)
}

func TestHandleCreateRoom(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	client := newClientWithJar(t)

	got := createRoom(t, client, ts.URL, "Ann")

	if len(got.Code) != 4 {
		t.Errorf("room code length = %d, want 4", len(got.Code))
	}
	if !got.Host || got.Name != "Ann" {
		t.Errorf("response = %+v, want host Ann", got)
	}
	if cookieValue(t, client, ts.URL, "room_code") != got.Code {
		t.Error("room_code cookie not set after create")
	}
	if cookieValue(t, client, ts.URL, "player_id") != got.PlayerID {
		t.Error("player_id cookie not set after create")
	}

	room := srv.Rooms.Get(got.Code)
	if room == nil {
		t.Fatal("room not stored")
	}
	if room.HostID != got.PlayerID {
		t.Errorf("HostID = %q, want %q", room.HostID, got.PlayerID)
	}
}

func TestHandleCreateRoom_UpsertsPlayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().UpsertPlayer(gomock.Any(), gomock.Any(), "Ann", gomock.Any()).Return(nil)

	_, ts := newTestServer(t, store)
	createRoom(t, newClientWithJar(t), ts.URL, "Ann")
}

func TestHandleCreateRoom_MethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/rooms/create")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestHandleJoinRoom_Valid(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	host := createRoom(t, newClientWithJar(t), ts.URL, "Host")

	client := newClientWithJar(t)
	resp, err := client.PostForm(ts.URL+"/rooms/join", url.Values{
		"code": {strings.ToLower(host.Code)},
		"name": {"Bob"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	got := decodeRoom(t, resp)

	if got.Host {
		t.Error("joining player should not be host")
	}
	if got.Code != host.Code {
		t.Errorf("code = %q, want %q", got.Code, host.Code)
	}
	if cookieValue(t, client, ts.URL, "room_code") != host.Code {
		t.Error("room_code cookie not set after join")
	}
	if n := srv.Rooms.Get(host.Code).Game.Players.Count(); n != 2 {
		t.Errorf("players = %d, want 2", n)
	}
}

func TestHandleJoinRoom_Returning(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	host := createRoom(t, newClientWithJar(t), ts.URL, "Host")

	client := newClientWithJar(t)
	join := func() roomResponse {
		resp, err := client.PostForm(ts.URL+"/rooms/join", url.Values{"code": {host.Code}, "name": {"Bob"}})
		if err != nil {
			t.Fatal(err)
		}
		return decodeRoom(t, resp)
	}
	first, second := join(), join()

	if first.PlayerID != second.PlayerID {
		t.Errorf("rejoin got id %q, want %q", second.PlayerID, first.PlayerID)
	}
	if n := srv.Rooms.Get(host.Code).Game.Players.Count(); n != 2 {
		t.Errorf("players = %d, want 2", n)
	}
}

func TestHandleJoinRoom_Invalid(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := newClientWithJar(t).PostForm(ts.URL+"/rooms/join", url.Values{"code": {"ZZZZ"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHandleRoomWithCode(t *testing.T) {
	_, ts := newTestServer(t, nil)
	host := createRoom(t, newClientWithJar(t), ts.URL, "Host")

	resp, err := http.Get(ts.URL + "/room/" + host.Code)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var snap gamedata.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Scene != gamedata.SceneLobby {
		t.Errorf("scene = %q, want %q", snap.Scene, gamedata.SceneLobby)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Host" {
		t.Errorf("players = %+v, want just the host", snap.Players)
	}
}

func TestHandleRoomWithCode_NotFound(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/room/ZZZZ")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHandlePlayAgain(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	hostClient := newClientWithJar(t)
	host := createRoom(t, hostClient, ts.URL, "Host")
	room := srv.Rooms.Get(host.Code)
	room.Game.Start()

	// A spectator cannot reset the room
	spectator := newClientWithJar(t)
	resp, _ := spectator.PostForm(ts.URL+"/rooms/join", url.Values{"code": {host.Code}})
	resp.Body.Close()
	resp, err := spectator.Post(ts.URL+"/room/play-again", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("spectator status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	resp, err = hostClient.Post(ts.URL+"/room/play-again", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("host status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if room.Game.Scene() != gamedata.SceneLobby {
		t.Errorf("scene = %q, want %q", room.Game.Scene(), gamedata.SceneLobby)
	}
}

func TestHandleEvents_StreamsJoins(t *testing.T) {
	_, ts := newTestServer(t, nil)
	hostClient := newClientWithJar(t)
	host := createRoom(t, hostClient, ts.URL, "Host")

	resp, err := hostClient.Get(ts.URL + "/room/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		r, err := newClientWithJar(t).PostForm(ts.URL+"/rooms/join", url.Values{"code": {host.Code}, "name": {"Bob"}})
		if err == nil {
			r.Body.Close()
		}
	}()
	<-joined

	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed before newPlayer event")
			}
			if line == "event: newPlayer" {
				return
			}
		case <-timeout:
			t.Fatal("no newPlayer event received")
		}
	}
}

func TestHandleEvents_NoRoom(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/room/events")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("health = %d %s", resp.StatusCode, body)
	}
}

func TestHandleHealth_DBError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	_, ts := newTestServer(t, store)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if !strings.Contains(string(body), "db_error") {
		t.Errorf("body = %s, want db_error", body)
	}
}

func TestHandleMetrics(t *testing.T) {
	_, ts := newTestServer(t, nil)
	createRoom(t, newClientWithJar(t), ts.URL, "Host")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "aimtrainer_active_rooms 1") {
		t.Errorf("metrics missing active rooms gauge:\n%s", body)
	}
}

func TestAnalytics_RequireDatabase(t *testing.T) {
	_, ts := newTestServer(t, nil)

	for _, path := range []string{"/analytics/leaderboard", "/analytics/player/abc", "/analytics/session/abc"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want %d", path, resp.StatusCode, http.StatusServiceUnavailable)
		}
	}
}

func TestRoomIsolation_TwoRooms(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	room1, _ := srv.Rooms.Create("host-1")
	room2, _ := srv.Rooms.Create("host-2")

	room1.Game.Players.Add("p1", "Alice")
	room2.Game.Players.Add("p2", "Bob")
	room1.Game.Start()

	r1Players := room1.Game.Players.GetList()
	r2Players := room2.Game.Players.GetList()

	if len(r1Players) != 1 || r1Players[0].Name != "Alice" {
		t.Error("room1 should only contain Alice")
	}
	if len(r2Players) != 1 || r2Players[0].Name != "Bob" {
		t.Error("room2 should only contain Bob")
	}
	if room2.Game.Scene() != gamedata.SceneLobby {
		t.Error("starting room1 should not start room2")
	}
}

func TestHandleJoinRoom_KnownPlayerKeepsID(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().UpsertPlayer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().GetPlayer(gomock.Any(), "known-1").Return(&db.PlayerRecord{ID: "known-1", Name: "Ann"}, nil)

	srv, ts := newTestServer(t, store)
	host := createRoom(t, newClientWithJar(t), ts.URL, "Host")

	client := newClientWithJar(t)
	u, _ := url.Parse(ts.URL)
	client.Jar.SetCookies(u, []*http.Cookie{{Name: "player_id", Value: "known-1"}})
	resp, err := client.PostForm(ts.URL+"/rooms/join", url.Values{"code": {host.Code}})
	if err != nil {
		t.Fatal(err)
	}
	got := decodeRoom(t, resp)

	if got.PlayerID != "known-1" || got.Name != "Ann" {
		t.Errorf("joined as %s/%s, want known-1/Ann", got.PlayerID, got.Name)
	}
	if srv.Rooms.Get(host.Code).Game.Players.Get("known-1") == nil {
		t.Error("known player should be added under their stored id")
	}
}

func TestHandleLeaveRoom(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	hostClient := newClientWithJar(t)
	host := createRoom(t, hostClient, ts.URL, "Host")

	spectator := newClientWithJar(t)
	resp, _ := spectator.PostForm(ts.URL+"/rooms/join", url.Values{"code": {host.Code}})
	joined := decodeRoom(t, resp)

	resp, err := spectator.Post(ts.URL+"/room/leave", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("leave status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	room := srv.Rooms.Get(host.Code)
	if room == nil || room.Game.Players.Get(joined.PlayerID) != nil {
		t.Fatal("spectator should be gone and the room kept")
	}

	resp, err = hostClient.Post(ts.URL+"/room/leave", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("host leave status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if srv.Rooms.Get(host.Code) != nil {
		t.Error("room should close when the host leaves")
	}
}
