package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
	"feedback-backend/internal/service"
)

const (
	testCookie = "feedback_session"
	goodToken  = "valid-token"
)

// store keeps feedback in memory for the real services under test.
type store struct {
	mu      sync.Mutex
	records []models.Feedback
	err     error
}

func (s *store) Create(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	f.ID = bson.NewObjectID()
	f.CreatedAt = time.Date(2024, 1, 1, 0, 0, len(s.records), 0, time.UTC)
	s.records = append([]models.Feedback{*f}, s.records...)
	return nil
}

func (s *store) ListLive(_ context.Context, skip, limit int64) ([]models.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	if skip >= int64(len(s.records)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(s.records)) {
		end = int64(len(s.records))
	}
	return s.records[skip:end], nil
}

func (s *store) Count(context.Context, bool) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.records)), nil
}

func (s *store) Averages(context.Context, bool) (models.RatingAverages, error) {
	if s.err != nil || len(s.records) == 0 {
		return models.RatingAverages{}, s.err
	}
	var sum float64
	for _, r := range s.records {
		sum += float64(r.RecommendationScore)
	}
	avg := sum / float64(len(s.records))
	return models.RatingAverages{RecommendationScore: &avg}, nil
}

func (s *store) Recent(_ context.Context, n int64, _ bool) ([]models.FeedbackSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.FeedbackSummary
	for i, r := range s.records {
		if int64(i) >= n {
			break
		}
		out = append(out, models.FeedbackSummary{ID: r.ID, ContactName: r.ContactName, CompanyName: r.CompanyName, RecommendationScore: r.RecommendationScore, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

type fakeAuth struct {
	storeErr error
}

var testAdmin = auth.Identity{ID: "65a000000000000000000001", Email: "admin@example.com", Name: "Admin"}

func (f *fakeAuth) Authenticate(_ context.Context, email, password string) (*auth.Session, error) {
	if f.storeErr != nil {
		return nil, apperr.Persistence("find admin by email", f.storeErr)
	}
	if email != testAdmin.Email || password != "correct-horse" {
		return nil, apperr.ErrAuthenticationFailed
	}
	return &auth.Session{Identity: testAdmin, Token: goodToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) CurrentSession(_ context.Context, token string) (*auth.Identity, error) {
	if f.storeErr != nil {
		return nil, apperr.Persistence("find admin by id", f.storeErr)
	}
	if token != goodToken {
		return nil, nil
	}
	id := testAdmin
	return &id, nil
}

func newTestRouter(t *testing.T, s *store) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		Logger:      zerolog.Nop(),
		Feedback:    service.NewFeedbackService(s, nil, zerolog.Nop()),
		Stats:       service.NewStatsService(s, false),
		Auth:        &fakeAuth{},
		Cookie:      CookieOptions{Name: testCookie},
		CORSOrigins: []string{"*"},
		Ping:        func(context.Context) error { return nil },
	})
}

const validBody = `{
	"email": "a@b.com",
	"date": "2024-01-01",
	"contactName": "A",
	"companyName": "B",
	"country": "C",
	"salesOrderNumber": "SO-1",
	"toolBuildQuality": 8,
	"packaging": 7,
	"onTimeDelivery": 9,
	"afterSalesSupport": 6,
	"productUsability": 8,
	"recommendationScore": 9
}`

func do(h http.Handler, method, target, body string, prep ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, p := range prep {
		p(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func withSession(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: testCookie, Value: goodToken})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSubmitFeedback_Created(t *testing.T) {
	s := &store{}
	h := newTestRouter(t, s)

	rec := do(h, http.MethodPost, "/feedback", validBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Thank you for your feedback!", body["message"])
	id, _ := body["id"].(string)
	assert.NotEmpty(t, id)

	rec = do(h, http.MethodGet, "/feedback?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)
	data := list["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, id, first["id"])
	assert.Equal(t, "2024-01-01", first["date"])
	assert.Equal(t, float64(9), first["recommendationScore"])
	assert.Nil(t, first["deletedAt"])
	assert.Equal(t, map[string]interface{}{
		"page": float64(1), "limit": float64(10), "total": float64(1), "totalPages": float64(1),
	}, list["pagination"])
}

func TestSubmitFeedback_OutOfRange(t *testing.T) {
	s := &store{}
	h := newTestRouter(t, s)

	rec := do(h, http.MethodPost, "/feedback", strings.Replace(validBody, `"recommendationScore": 9`, `"recommendationScore": 11`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["error"])
	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "recommendationScore", details[0].(map[string]interface{})["field"])
	assert.Empty(t, s.records)
}

func TestSubmitFeedback_WrongType(t *testing.T) {
	h := newTestRouter(t, &store{})

	rec := do(h, http.MethodPost, "/feedback", strings.Replace(validBody, `"packaging": 7`, `"packaging": "seven"`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec)["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "packaging", details[0].(map[string]interface{})["field"])
}

func TestSubmitFeedback_MalformedBody(t *testing.T) {
	h := newTestRouter(t, &store{})

	rec := do(h, http.MethodPost, "/feedback", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", decode(t, rec)["error"])
}

func TestSubmitFeedback_PersistenceFailure(t *testing.T) {
	h := newTestRouter(t, &store{err: errors.New("connection reset")})

	rec := do(h, http.MethodPost, "/feedback", validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to submit feedback"}`, rec.Body.String())
}

func TestListFeedback_BadPaging(t *testing.T) {
	h := newTestRouter(t, &store{})

	for _, q := range []string{"page=0", "limit=-1", "page=abc"} {
		rec := do(h, http.MethodGet, "/feedback?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec := do(h, http.MethodGet, "/feedback", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Equal(t, float64(10), body["pagination"].(map[string]interface{})["limit"])
}

func TestStats_RequiresSession(t *testing.T) {
	h := newTestRouter(t, &store{})

	rec := do(h, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/stats", "", func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStats_Authenticated(t *testing.T) {
	s := &store{}
	h := newTestRouter(t, s)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/feedback", validBody).Code)

	rec := do(h, http.MethodGet, "/stats", "", withSession)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["totalFeedbacks"])
	averages := data["averageScores"].(map[string]interface{})
	assert.Equal(t, float64(9), averages["recommendationScore"])
	assert.Nil(t, averages["packaging"])
	assert.Len(t, data["recentFeedbacks"], 1)
}

func TestStats_PersistenceFailure(t *testing.T) {
	h := newTestRouter(t, &store{err: errors.New("timeout")})

	rec := do(h, http.MethodGet, "/stats", "", withSession)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch statistics", decode(t, rec)["error"])
}

func TestLogin_JSON(t *testing.T) {
	h := newTestRouter(t, &store{})

	rec := do(h, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, goodToken, body["token"])
	assert.Equal(t, "admin@example.com", body["admin"].(map[string]interface{})["email"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, goodToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Positive(t, cookies[0].MaxAge)
}

func TestLogin_FailureIsGeneric(t *testing.T) {
	h := newTestRouter(t, &store{})

	unknown := do(h, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"correct-horse"}`)
	wrong := do(h, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"nope"}`)

	for _, rec := range []*httptest.ResponseRecorder{unknown, wrong} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid email or password"}`, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestLogin_Form(t *testing.T) {
	h := newTestRouter(t, &store{})
	post := func(password string) *httptest.ResponseRecorder {
		values := url.Values{"email": {"admin@example.com"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post("correct-horse")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
	assert.Len(t, rec.Result().Cookies(), 1)

	rec = post("wrong")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath+"?error=1", rec.Header().Get("Location"))
}

func TestCurrentSessionAndLogout(t *testing.T) {
	h := newTestRouter(t, &store{})

	rec := do(h, http.MethodGet, "/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodGet, "/auth/session", "", withSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAdmin.ID, decode(t, rec)["admin"].(map[string]interface{})["id"])

	rec = do(h, http.MethodPost, "/auth/logout", "", withSession)
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t, &store{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"feedback-backend"}`, rec.Body.String())
}

func TestLogin_StoreFailure(t *testing.T) {
	s := &store{}
	h := NewRouter(RouterConfig{
		Logger:   zerolog.Nop(),
		Feedback: service.NewFeedbackService(s, nil, zerolog.Nop()),
		Stats:    service.NewStatsService(s, false),
		Auth:     &fakeAuth{storeErr: errors.New("no reachable servers")},
		Cookie:   CookieOptions{Name: testCookie},
	})

	rec := do(h, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Login failed"}`, rec.Body.String())
}

func TestStats_SessionStoreFailure(t *testing.T) {
	s := &store{}
	h := NewRouter(RouterConfig{
		Logger:   zerolog.Nop(),
		Feedback: service.NewFeedbackService(s, nil, zerolog.Nop()),
		Stats:    service.NewStatsService(s, false),
		Auth:     &fakeAuth{storeErr: errors.New("no reachable servers")},
		Cookie:   CookieOptions{Name: testCookie},
	})

	rec := do(h, http.MethodGet, "/stats", "", withSession)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to verify session"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
