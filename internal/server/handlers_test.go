package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/sponsorboard/internal/config"
	"github.com/jonathan/sponsorboard/internal/db"
	"github.com/jonathan/sponsorboard/internal/recommend"
)

type generateCall struct {
	userID  uuid.UUID
	limit   int
	refresh bool
}

// fakeRecs is an in-memory RecommendationService
type fakeRecs struct {
	recs          map[uuid.UUID]*db.Recommendation
	viewed        map[uuid.UUID]bool
	clicked       map[uuid.UUID]bool
	feedback      map[uuid.UUID]string
	generateCalls []generateCall
	stats         db.RecommendationStats
	purged        int64
}

func newFakeRecs() *fakeRecs {
	return &fakeRecs{
		recs:     make(map[uuid.UUID]*db.Recommendation),
		viewed:   make(map[uuid.UUID]bool),
		clicked:  make(map[uuid.UUID]bool),
		feedback: make(map[uuid.UUID]string),
	}
}

func (f *fakeRecs) add(userID uuid.UUID, score float64) *db.Recommendation {
	rec := &db.Recommendation{
		ID:         uuid.New(),
		UserID:     userID,
		JobID:      uuid.New(),
		MatchScore: score,
		Algorithm:  recommend.DefaultAlgorithmVersion,
		CreatedAt:  time.Now(),
	}
	f.recs[rec.ID] = rec
	return rec
}

func (f *fakeRecs) forUser(userID uuid.UUID) []db.Recommendation {
	var out []db.Recommendation
	for _, rec := range f.recs {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out
}

func (f *fakeRecs) Generate(_ context.Context, userID uuid.UUID, limit int, refresh bool) ([]db.Recommendation, error) {
	f.generateCalls = append(f.generateCalls, generateCall{userID: userID, limit: limit, refresh: refresh})
	return f.forUser(userID), nil
}

func (f *fakeRecs) List(_ context.Context, userID uuid.UUID, _ int) ([]db.Recommendation, error) {
	return f.forUser(userID), nil
}

func (f *fakeRecs) Get(_ context.Context, id uuid.UUID) (*db.Recommendation, error) {
	rec, ok := f.recs[id]
	if !ok {
		return nil, recommend.ErrRecommendationNotFound
	}
	return rec, nil
}

func (f *fakeRecs) MarkViewed(_ context.Context, id uuid.UUID) error {
	if _, ok := f.recs[id]; !ok {
		return recommend.ErrRecommendationNotFound
	}
	f.viewed[id] = true
	return nil
}

func (f *fakeRecs) MarkClicked(_ context.Context, id uuid.UUID) error {
	if _, ok := f.recs[id]; !ok {
		return recommend.ErrRecommendationNotFound
	}
	f.clicked[id] = true
	return nil
}

func (f *fakeRecs) SubmitFeedback(_ context.Context, id uuid.UUID, tag, _ string) error {
	if !db.IsValidFeedback(tag) {
		return recommend.ErrInvalidFeedback
	}
	if _, ok := f.recs[id]; !ok {
		return recommend.ErrRecommendationNotFound
	}
	f.feedback[id] = tag
	return nil
}

func (f *fakeRecs) Stats(_ context.Context, _ uuid.UUID) (*db.RecommendationStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeRecs) PurgeStale(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.purged, nil
}

// fakePrefs is an in-memory PreferenceStore
type fakePrefs struct {
	prefs   *db.UserPreference
	updates []*db.PreferenceUpdateInput
}

func (f *fakePrefs) GetOrCreatePreferences(_ context.Context, userID uuid.UUID) (*db.UserPreference, error) {
	if f.prefs == nil {
		f.prefs = &db.UserPreference{
			ID:                    uuid.New(),
			UserID:                userID,
			SalaryCurrency:        "GBP",
			NotificationFrequency: db.NotifyWeekly,
			MaxRecommendations:    db.DefaultMaxRecommendations,
		}
	}
	return f.prefs, nil
}

func (f *fakePrefs) UpdatePreferences(_ context.Context, userID uuid.UUID, input *db.PreferenceUpdateInput) (*db.UserPreference, error) {
	f.updates = append(f.updates, input)
	prefs, _ := f.GetOrCreatePreferences(context.Background(), userID)
	prefs.KeySkills = input.KeySkills
	prefs.MinSalary = input.MinSalary
	prefs.MaxSalary = input.MaxSalary
	prefs.MaxRecommendations = input.MaxRecommendations
	return prefs, nil
}

// fakeJobs is an in-memory JobStore
type fakeJobs struct {
	jobs        []db.Job
	lastFilters db.JobFilters
}

func (f *fakeJobs) GetActiveJobs(_ context.Context, filters db.JobFilters) ([]db.Job, error) {
	f.lastFilters = filters
	return f.jobs, nil
}

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	byEmail map[string]*db.User
}

func (s *fakeUserStore) CreateUser(_ context.Context, input *db.UserCreateInput) (*db.User, error) {
	user := &db.User{
		ID:           uuid.New(),
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now(),
	}
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	return s.byEmail[email], nil
}

// testServer wires a Server onto fakes and issues a token for one user
type testServer struct {
	handler http.Handler
	recs    *fakeRecs
	prefs   *fakePrefs
	jobs    *fakeJobs
	users   *fakeUserStore
	userID  uuid.UUID
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	recs := newFakeRecs()
	prefs := &fakePrefs{}
	jobs := &fakeJobs{}
	users := &fakeUserStore{byEmail: make(map[string]*db.User)}

	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
	userService := NewUserService(users, &config.PasswordConfig{BcryptCost: 10})

	s := &Server{
		jwtService:  jwtService,
		userService: userService,
		authHandler: NewAuthHandler(userService, jwtService),
		recs:        recs,
		prefs:       prefs,
		jobs:        jobs,
	}

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	return &testServer{
		handler: s.routes(),
		recs:    recs,
		prefs:   prefs,
		jobs:    jobs,
		users:   users,
		userID:  userID,
		token:   token,
	}
}

// request sends an authenticated request through the full mux
func (ts *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(target))
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{"/recommendations", "/preferences", "/jobs"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListRecommendations(t *testing.T) {
	ts := newTestServer(t)
	ts.recs.add(ts.userID, 0.9)
	ts.recs.add(ts.userID, 0.7)
	ts.recs.add(uuid.New(), 0.8) // someone else's

	w := ts.request(t, http.MethodGet, "/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Recommendations []db.Recommendation `json:"recommendations"`
		Count           int                 `json:"count"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Recommendations, 2)
}

func TestGetRecommendationMarksViewed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.recs.add(ts.userID, 0.9)

	w := ts.request(t, http.MethodGet, "/recommendations/"+rec.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got db.Recommendation
	decodeBody(t, w, &got)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, ts.recs.viewed[rec.ID])
}

func TestGetRecommendationErrors(t *testing.T) {
	ts := newTestServer(t)
	otherRec := ts.recs.add(uuid.New(), 0.9)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "malformed id", id: "not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "unknown id", id: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "someone else's recommendation", id: otherRec.ID.String(), wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, http.MethodGet, "/recommendations/"+tt.id, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, ts.recs.viewed)
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	ts := newTestServer(t)
	ts.recs.add(ts.userID, 0.9)

	// Empty body: engine defaults
	w := ts.request(t, http.MethodPost, "/recommendations/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.recs.generateCalls, 1)
	assert.Equal(t, generateCall{userID: ts.userID, limit: 0, refresh: false}, ts.recs.generateCalls[0])

	var body struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, 1, body.Count)

	// Explicit limit and refresh
	w = ts.request(t, http.MethodPost, "/recommendations/generate", map[string]any{"limit": 5, "refresh": true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.recs.generateCalls, 2)
	assert.Equal(t, generateCall{userID: ts.userID, limit: 5, refresh: true}, ts.recs.generateCalls[1])
}

func TestGenerateRecommendationsRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/recommendations/generate", map[string]any{"limit": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ts.recs.generateCalls)
}

func TestClickRecommendation(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.recs.add(ts.userID, 0.9)

	w := ts.request(t, http.MethodPost, fmt.Sprintf("/recommendations/%s/click", rec.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ts.recs.clicked[rec.ID])
}

func TestRecommendationFeedback(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.recs.add(ts.userID, 0.9)
	path := fmt.Sprintf("/recommendations/%s/feedback", rec.ID)

	w := ts.request(t, http.MethodPost, path, map[string]string{"feedback": "helpful", "notes": "applied same day"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "helpful", ts.recs.feedback[rec.ID])

	w = ts.request(t, http.MethodPost, path, map[string]string{"feedback": "meh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationStats(t *testing.T) {
	ts := newTestServer(t)
	ts.recs.stats = db.RecommendationStats{Total: 4, ViewedCount: 2, AverageScore: 0.61}

	w := ts.request(t, http.MethodGet, "/recommendations/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats db.RecommendationStats
	decodeBody(t, w, &stats)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ViewedCount)
	assert.InDelta(t, 0.61, stats.AverageScore, 1e-9)
}

func TestPurgeRecommendations(t *testing.T) {
	ts := newTestServer(t)
	ts.recs.purged = 3

	w := ts.request(t, http.MethodDelete, "/recommendations/old", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int64
	decodeBody(t, w, &body)
	assert.Equal(t, int64(3), body["deleted"])
}

func TestGetPreferencesCreatesDefaults(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var prefs db.UserPreference
	decodeBody(t, w, &prefs)
	assert.Equal(t, ts.userID, prefs.UserID)
	assert.Equal(t, db.DefaultMaxRecommendations, prefs.MaxRecommendations)
}

func TestUpdatePreferencesTriggersRegeneration(t *testing.T) {
	ts := newTestServer(t)
	minSalary, maxSalary := 55000, 75000

	w := ts.request(t, http.MethodPut, "/preferences", map[string]any{
		"key_skills":      []string{"Go", "PostgreSQL"},
		"min_salary":      minSalary,
		"max_salary":      maxSalary,
		"salary_currency": "GBP",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, ts.prefs.updates, 1)
	update := ts.prefs.updates[0]
	assert.Equal(t, []string{"Go", "PostgreSQL"}, update.KeySkills)
	// Omitted max_recommendations falls back to the default
	assert.Equal(t, db.DefaultMaxRecommendations, update.MaxRecommendations)

	// The update kicks off a refreshed generation run
	require.Len(t, ts.recs.generateCalls, 1)
	call := ts.recs.generateCalls[0]
	assert.Equal(t, ts.userID, call.userID)
	assert.True(t, call.refresh)
	assert.Equal(t, db.DefaultMaxRecommendations, call.limit)
}

func TestUpdatePreferencesRejectsInvertedSalaryBand(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPut, "/preferences", map[string]any{
		"min_salary": 80000,
		"max_salary": 50000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ts.prefs.updates)
	assert.Empty(t, ts.recs.generateCalls)
}

func TestListJobs(t *testing.T) {
	ts := newTestServer(t)
	ts.jobs.jobs = []db.Job{
		{ID: uuid.New(), Title: "Backend Engineer", Status: db.JobStatusActive},
		{ID: uuid.New(), Title: "Platform Engineer", Status: db.JobStatusActive},
	}

	w := ts.request(t, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Jobs  []db.Job `json:"jobs"`
		Count int      `json:"count"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, 2, body.Count)
	assert.True(t, ts.jobs.lastFilters.SponsorOnly)
	assert.Equal(t, jobListDefaultLimit, ts.jobs.lastFilters.Limit)
}

func TestListJobsLimitParam(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{name: "explicit limit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "oversized limit clamps", query: "?limit=500", wantStatus: http.StatusOK, wantLimit: jobListDefaultLimit},
		{name: "zero limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "non-numeric limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, http.MethodGet, "/jobs"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantLimit, ts.jobs.lastFilters.Limit)
			}
		})
	}
}
