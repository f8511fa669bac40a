package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/session"
	"github.com/mr1hm/go-org-boundaries/internal/stream"
)

func ptr[T any](v T) *T { return &v }

func testSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Organizations: []models.Organization{
			{ID: 1, Name: "Southeast", Type: models.OrgTypeSector, Active: true},
			{ID: 2, Name: "International", Type: models.OrgTypeSector, Active: true},
			{ID: 10, ParentID: ptr(int64(1)), Name: "Metrolina", Type: models.OrgTypeArea, Active: true},
			{ID: 20, ParentID: ptr(int64(2)), Name: "General International Area", Type: models.OrgTypeArea, Active: true},
			{ID: 30, ParentID: ptr(int64(10)), Name: "Charlotte", Type: models.OrgTypeRegion, Active: true},
			{ID: 31, ParentID: ptr(int64(10)), Name: "Empty", Type: models.OrgTypeRegion, Active: true},
			{ID: 40, ParentID: ptr(int64(20)), Name: "London", Type: models.OrgTypeRegion, Active: true},
		},
	}
	add := func(orgID int64, lat, lng float64) {
		id := int64(len(snap.Locations) + 1)
		snap.Locations = append(snap.Locations, models.Location{ID: id, Latitude: ptr(lat), Longitude: ptr(lng), Active: true})
		snap.Events = append(snap.Events, models.Event{ID: id, LocationID: ptr(id), Active: true, Parents: []int64{orgID}})
	}
	add(30, 35.0, -81.0)
	add(30, 35.0, -80.0)
	add(30, 36.0, -80.5)
	add(40, 51.5, -0.1)
	return snap
}

func setupTestRouter() (*gin.Engine, *session.Session, *stream.Broadcaster) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sess := session.New(testSnapshot(), session.DefaultOptions())
	b := stream.NewBroadcaster()
	handler := NewHandler(sess, b)
	handler.RegisterRoutes(router)
	return router, sess, b
}

func navigate(t *testing.T, router *gin.Engine, body string) stateResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/navigate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestGetView_ReturnsGeoJSON(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/view?highlight=1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", contentType)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if len(fc.BBox) != 4 {
		t.Errorf("expected bbox with 4 values, got %v", fc.BBox)
	}

	se := fc.Features[0]
	if se.Geometry.Type != "Polygon" {
		t.Errorf("expected Polygon, got %s", se.Geometry.Type)
	}
	ring := se.Geometry.Coordinates[0]
	if len(ring) != 4 {
		t.Errorf("expected closed triangle with 4 positions, got %d", len(ring))
	}
	if ring[0][0] != ring[len(ring)-1][0] || ring[0][1] != ring[len(ring)-1][1] {
		t.Errorf("expected ring to be closed, got %v", ring)
	}
	if se.Properties["kind"] != "hull" || se.Properties["emphasis"] != true {
		t.Errorf("unexpected Southeast properties %v", se.Properties)
	}
	if fc.Features[1].Properties["kind"] != "decorative" {
		t.Errorf("expected International to be decorative, got %v", fc.Features[1].Properties)
	}
}

func TestGetBoundaries_DecodesQuery(t *testing.T) {
	router, sess, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/boundaries?org=10", nil)
	router.ServeHTTP(w, req)

	var fc FeatureCollection
	json.Unmarshal(w.Body.Bytes(), &fc)

	if len(fc.Features) != 1 {
		t.Fatalf("expected only Charlotte, got %d features", len(fc.Features))
	}
	if fc.Features[0].Properties["name"] != "Charlotte" {
		t.Errorf("expected Charlotte, got %v", fc.Features[0].Properties["name"])
	}
	if sess.State().Level != 0 {
		t.Errorf("expected session state untouched, got level %d", sess.State().Level)
	}
}

func TestGetBoundaries_BadQueryFallsBackToRoot(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/boundaries?org=abc&level=99", nil)
	router.ServeHTTP(w, req)

	var fc FeatureCollection
	json.Unmarshal(w.Body.Bytes(), &fc)

	if len(fc.Features) != 2 {
		t.Errorf("expected root view with 2 sectors, got %d", len(fc.Features))
	}
}

func TestNavigate(t *testing.T) {
	router, _, _ := setupTestRouter()

	resp := navigate(t, router, `{"action":"select","orgId":1}`)
	if resp.Level != 1 || resp.LevelType != models.OrgTypeArea {
		t.Errorf("expected area level, got %d %s", resp.Level, resp.LevelType)
	}
	if len(resp.Path) != 1 || resp.Path[0].Name != "Southeast" {
		t.Errorf("unexpected path %+v", resp.Path)
	}
	if resp.Query != "org=1" {
		t.Errorf("expected query org=1, got %q", resp.Query)
	}
	if resp.Changed == nil || !*resp.Changed {
		t.Error("expected changed")
	}

	resp = navigate(t, router, `{"action":"back"}`)
	if resp.Level != 0 || len(resp.Path) != 0 || resp.Query != "" {
		t.Errorf("expected root state, got %+v", resp)
	}
}

func TestNavigate_NoOpReportsUnchanged(t *testing.T) {
	router, _, _ := setupTestRouter()

	resp := navigate(t, router, `{"action":"select","orgId":20}`)
	if resp.Changed == nil || *resp.Changed {
		t.Error("expected view-only select to be a no-op")
	}
}

func TestNavigate_BadRequests(t *testing.T) {
	router, _, _ := setupTestRouter()

	for _, body := range []string{`{"action":"jump"}`, `not json`, `{}`} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/navigate", strings.NewReader(body))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", body, w.Code)
		}
	}
}

func TestRestoreState(t *testing.T) {
	router, sess, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/state?org=10", nil)
	router.ServeHTTP(w, req)

	var resp stateResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Level != 2 || len(resp.Path) != 2 {
		t.Errorf("expected region level under Southeast/Metrolina, got %+v", resp)
	}
	if got := sess.Query(); got != "org=10" {
		t.Errorf("expected session query org=10, got %q", got)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/state", nil)
	router.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Query != "org=10" {
		t.Errorf("expected GET /api/state to report org=10, got %q", resp.Query)
	}
}

func TestGetOrganization(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations/30", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp struct {
		PointCount int          `json:"pointCount"`
		Kind       string       `json:"kind"`
		Ancestors  []breadcrumb `json:"ancestors"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.PointCount != 3 || resp.Kind != "hull" {
		t.Errorf("unexpected detail %+v", resp)
	}
	if len(resp.Ancestors) != 2 || resp.Ancestors[0].ID != 1 || resp.Ancestors[1].ID != 10 {
		t.Errorf("expected root-first ancestors, got %+v", resp.Ancestors)
	}
}

func TestGetOrganization_Errors(t *testing.T) {
	router, _, _ := setupTestRouter()

	tests := []struct {
		path string
		code int
	}{
		{"/api/organizations/999", http.StatusNotFound},
		{"/api/organizations/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", tt.path, nil)
		router.ServeHTTP(w, req)

		if w.Code != tt.code {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.code, w.Code)
		}
	}
}

func TestLocate(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/locate?lat=35.3&lng=-80.5", nil)
	router.ServeHTTP(w, req)

	var resp struct {
		Organization *models.Organization `json:"organization"`
		Drillable    bool                 `json:"drillable"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Organization == nil || resp.Organization.ID != 1 || !resp.Drillable {
		t.Errorf("expected drillable Southeast, got %+v", resp)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/locate?lat=0&lng=0", nil)
	router.ServeHTTP(w, req)
	resp.Organization = nil
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Organization != nil {
		t.Errorf("expected no organization, got %+v", resp.Organization)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/locate?lat=x", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetLevels(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/levels", nil)
	router.ServeHTTP(w, req)

	var resp struct {
		Levels []models.OrgType `json:"levels"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if len(resp.Levels) != 4 || resp.Levels[0] != models.OrgTypeSector {
		t.Errorf("unexpected levels %v", resp.Levels)
	}
}

// closeNotifyRecorder lets gin's Context.Stream run against a recorder.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStream_SendsStateUpdates(t *testing.T) {
	router, _, b := setupTestRouter()

	rec := &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
	req, _ := http.NewRequest("GET", "/api/stream", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(rec, req)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	navigate(t, router, `{"action":"select","orgId":1}`)
	b.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after broadcaster closed")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event:state") {
		t.Errorf("expected state event, got %q", body)
	}
	if !strings.Contains(body, `"query":"org=1"`) {
		t.Errorf("expected query in event data, got %q", body)
	}
}

func TestReload_PublishesRootState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sess := session.New(testSnapshot(), session.DefaultOptions())
	b := stream.NewBroadcaster()
	defer b.Close()
	handler := NewHandler(sess, b)
	handler.RegisterRoutes(router)

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)
	navigate(t, router, `{"action":"select","orgId":1}`)
	if u := <-ch; u.Query != "org=1" {
		t.Fatalf("expected select update, got %+v", u)
	}

	handler.Reload(testSnapshot())

	select {
	case u := <-ch:
		if u.Level != 0 || len(u.Path) != 0 || u.Query != "" {
			t.Errorf("expected root update, got %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an update after reload")
	}
	if sess.State().Level != 0 {
		t.Errorf("expected session back at root, got level %d", sess.State().Level)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected 200 then 429, got %v", codes)
	}
}

func TestRateLimitMiddleware_ExemptsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := range 3 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(0))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := range 5 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", bytes.NewReader(nil))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}
