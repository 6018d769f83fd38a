package journey

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/analysis"
	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
	"github.com/mooncitizen/beatphobia-sub001/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newTestApp(mock pgxmock.PgxPoolIface, hub *stream.Hub) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/journeys"), NewService(mock, hub, nil))
	return app
}

func TestJourneyHandlersSave(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO journeys`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(600), 1000.0, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := newTestApp(mock, nil)

	body, _ := json.Marshal(Journey{
		UserID:      "user-1",
		StartedAt:   time.Now(),
		DurationSec: 600,
		DistanceM:   1000,
	})
	req := httptest.NewRequest(http.MethodPost, "/journeys", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("save journey status: %v", err)
	}
}

func TestJourneyHandlersSaveBadRequest(t *testing.T) {
	app := newTestApp(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/journeys", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}

	req = httptest.NewRequest(http.MethodPost, "/journeys", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for malformed body")
	}
}

func TestJourneyHandlersMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectGetJourney(mock, "journey-1", "", []geo.Coordinate{{Lat: 0, Lng: 0}})

	app := newTestApp(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/journey-1/metrics?unit=imperial", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status: %v", err)
	}

	var m analysis.Metrics
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if m.DistanceLabel == "" || m.PaceLabel == "" {
		t.Fatalf("expected formatted labels, got %+v", m)
	}
}

func TestJourneyHandlersSmoothedPath(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	path := []geo.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0.001},
		{Lat: 0.002, Lng: 0.001},
	}
	expectGetJourney(mock, "journey-1", "", path)

	app := newTestApp(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/journey-1/path/smoothed", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("smoothed path status: %v", err)
	}

	var out struct {
		JourneyID string           `json:"journey_id"`
		Path      []geo.Coordinate `json:"path"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode path: %v", err)
	}
	if len(out.Path) <= len(path) {
		t.Fatalf("expected denser path, got %d points", len(out.Path))
	}
}

func TestJourneyHandlersCompletionsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectGetJourney(mock, "journey-1", "", nil)

	app := newTestApp(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/journey-1/completions", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict for unlinked journey, got %v", resp.StatusCode)
	}
}

func TestJourneyHandlersRollup(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM journeys j`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "duration_seconds", "distance_m", "plan_id", "count"}).
			AddRow("j1", "user-1", now.Add(-time.Hour), now, int64(600), 1000.0, "", 2).
			AddRow("j2", "user-1", now.Add(-30*24*time.Hour), now, int64(300), 500.0, "", 1))

	app := newTestApp(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/rollup?user_id=user-1&window=7d", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("rollup status: %v", err)
	}

	var result analysis.RollupResult
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode rollup: %v", err)
	}
	if result.Count != 1 || result.DistanceM != 1000 || result.CheckpointCount != 2 {
		t.Fatalf("unexpected rollup: %+v", result)
	}
}

func TestJourneyHandlersRollupRequiresUser(t *testing.T) {
	app := newTestApp(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/rollup", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request without user_id")
	}
}

func TestJourneyHandlersLiveBroadcast(t *testing.T) {
	hub := stream.NewHub(nil)
	watcher := hub.Register("journey-1")
	defer hub.Unregister(watcher)

	app := newTestApp(nil, hub)

	body, _ := json.Marshal(LivePoint{Lat: -6.2, Lng: 106.8})
	req := httptest.NewRequest(http.MethodPost, "/journeys/journey-1/live", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("live point status: %v", err)
	}

	select {
	case msg := <-watcher.Send:
		var p LivePoint
		if err := json.Unmarshal(msg, &p); err != nil || p.JourneyID != "journey-1" {
			t.Fatalf("unexpected live payload: %s", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for live broadcast")
	}
}

func TestJourneyHandlersNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, duration_seconds, distance_m`).
		WithArgs("missing").
		WillReturnError(errQuery)

	app := newTestApp(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys/missing", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found")
	}
}
