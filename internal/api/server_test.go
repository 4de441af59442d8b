package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/services/jikan"
	"github.com/kitsouko/aniarr/internal/services/llm"
	"github.com/kitsouko/aniarr/internal/services/sms"
	"github.com/kitsouko/aniarr/internal/utils"
	"github.com/sirupsen/logrus"
)

type stubProvider struct{}

func (stubProvider) FetchByTitle(ctx context.Context, title string) (*jikan.AnimeMetadata, error) {
	return &jikan.AnimeMetadata{Description: "stub metadata"}, nil
}

type stubGenerator struct{}

func (stubGenerator) GenerateCharacterProfile(ctx context.Context, req llm.EnrichmentRequest) (*llm.EnrichedFields, error) {
	return &llm.EnrichedFields{Personality: "stub"}, nil
}

type stubSender struct{}

func (stubSender) SendVerification(ctx context.Context, to, code string) (*sms.SendResult, error) {
	return &sms.SendResult{Success: true, Status: "queued"}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *models.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mirror := cache.NewMirror(filepath.Join(t.TempDir(), "mirror.json"), logger)
	m := metrics.New()
	evaluator := controllers.NewFreshnessEvaluator(24 * time.Hour)

	deps := Deps{
		DB:            db,
		Mirror:        mirror,
		Metrics:       m,
		Evaluator:     evaluator,
		RefreshCtrl:   controllers.NewRefreshController(db, stubProvider{}, evaluator, mirror, m, logger),
		EnrichCtrl:    controllers.NewEnrichmentController(db, stubGenerator{}, mirror, m, 5, false, logger),
		ReviewCtrl:    controllers.NewReviewController(db, utils.NewBlocklist(nil), logger),
		WatchlistCtrl: controllers.NewWatchlistController(db, logger),
		VerifyCtrl:    controllers.NewVerifyController(db, stubSender{}, m, logger),
		MigrateCtrl:   controllers.NewMigrationController(db, logger),
		MetaCtrl:      controllers.NewMetaController(db, logger),
	}

	router := gin.New()
	setupRoutes(router, deps, logger)
	return router, db
}

func doRequest(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestAnimeListPagination(t *testing.T) {
	router, db := newTestRouter(t)

	for _, title := range []string{"A", "B", "C"} {
		if err := db.CreateAnime(&models.Anime{Title: title}); err != nil {
			t.Fatalf("Failed to seed anime: %v", err)
		}
	}

	w := doRequest(router, http.MethodGet, "/api/anime?limit=2&offset=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Total  int            `json:"total"`
		Limit  int            `json:"limit"`
		Offset int            `json:"offset"`
		Items  []models.Anime `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 2 || resp.Items[0].Title != "B" {
		t.Errorf("Pagination wrong: total=%d items=%d", resp.Total, len(resp.Items))
	}
}

func TestAnimeDetailNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/anime/999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/anime/abc", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed id, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/watchlist"},
		{http.MethodPost, "/api/anime/1/refresh"},
		{http.MethodGet, "/api/profile"},
	}
	for _, p := range paths {
		w := doRequest(router, p.method, p.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without identity: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestWatchlistFlow(t *testing.T) {
	router, db := newTestRouter(t)

	anime := &models.Anime{Title: "Tracked"}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("Failed to seed anime: %v", err)
	}

	w := doRequest(router, http.MethodPost, "/api/watchlist", "user-1", map[string]interface{}{
		"anime_id": anime.ID,
		"status":   "watching",
		"progress": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Upsert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/api/watchlist", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List: expected 200, got %d", w.Code)
	}
	var list struct {
		Items []models.WatchlistEntry `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Status != models.WatchStatusWatching {
		t.Errorf("Unexpected watchlist: %+v", list.Items)
	}

	// Another user sees an empty list
	w = doRequest(router, http.MethodGet, "/api/watchlist", "user-2", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 0 {
		t.Errorf("Watchlists must be per-user, got %d items", len(list.Items))
	}
}

func TestReviewFlowOverHTTP(t *testing.T) {
	router, db := newTestRouter(t)

	anime := &models.Anime{Title: "Reviewable"}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("Failed to seed anime: %v", err)
	}
	path := "/api/anime/" + strconv.FormatUint(anime.ID, 10) + "/reviews"

	w := doRequest(router, http.MethodPost, path, "user-1", map[string]interface{}{
		"rating": 4, "text": "Great pacing",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Second review from the same user conflicts
	w = doRequest(router, http.MethodPost, path, "user-1", map[string]interface{}{
		"rating": 2, "text": "Changed my mind",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Duplicate: expected 409, got %d", w.Code)
	}

	// Anyone can read
	w = doRequest(router, http.MethodGet, path, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("List: expected 200, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAdminFlag(t *testing.T) {
	router, db := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/admin/migrate", "user-1", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Non-admin: expected 403, got %d", w.Code)
	}

	if err := db.UpsertUserProfile(&models.UserProfile{UserID: "admin-1", Admin: true}); err != nil {
		t.Fatalf("Failed to seed admin profile: %v", err)
	}
	w = doRequest(router, http.MethodPost, "/api/admin/migrate", "admin-1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Admin: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}
