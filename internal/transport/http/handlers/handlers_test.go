package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/skillshare/internal/auth"
	"github.com/vedran77/skillshare/internal/database"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/mail"
	"github.com/vedran77/skillshare/internal/repository"
	"github.com/vedran77/skillshare/internal/repository/sqlite"
	"github.com/vedran77/skillshare/internal/service"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type testAPI struct {
	handler http.Handler
	store   *repository.Store
	mailer  *captureMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(ctx, database.MemorySQLiteDSN("handlers_"+name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateSQLite(ctx, db))

	log := logging.Nop{}
	store := sqlite.NewStore(db)
	mailer := &captureMailer{}
	tokens := auth.NewTokens("handler-secret", time.Hour)
	reset := auth.NewResetTokens("handler-secret", "salt", time.Hour)

	authService := service.NewAuthService(store.Users, tokens, reset, mailer, "http://app.test", log)
	userService := service.NewUserService(store.Users, nil, log)
	workshopService := service.NewWorkshopService(store.Workshops, store.Users, log)
	articleService := service.NewArticleService(store.Articles, store.Users, log)
	adminService := service.NewAdminService(store.Users, store.Workshops, log)

	handler := NewRouter(RouterDeps{
		Auth:       NewAuthHandler(authService, log),
		Users:      NewUserHandler(userService, log),
		Workshops:  NewWorkshopHandler(workshopService, log),
		Articles:   NewArticleHandler(articleService, log),
		Admin:      NewAdminHandler(adminService, log),
		Tokens:     tokens,
		Roles:      userService,
		CORSOrigin: "http://app.test",
		Log:        log,
	})

	return &testAPI{handler: handler, store: store, mailer: mailer}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type session struct {
	ID    uuid.UUID
	Token string
}

func (a *testAPI) signUp(t *testing.T, name string) session {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return session{ID: resp.User.ID, Token: resp.AccessToken}
}

func (a *testAPI) createWorkshop(t *testing.T, host session, capacity int) uuid.UUID {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/workshops", host.Token, map[string]any{
		"title":            "Guitar basics",
		"description":      "Chords and strumming",
		"category":         "music",
		"max_participants": capacity,
		"date_time":        "2030-05-01T18:00:00Z",
		"location":         "Community hall",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var w domain.WorkshopSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	return w.ID
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodOptions, "/api/v1/workshops", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "Ada")

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ada Again", "email": "ADA@example.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "B", "email": "nope", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", "", "{not json")
	assert.Equal(t, "INVALID_JSON", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Wrong1234",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_PasswordReset(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "Ada")

	rec := api.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, api.mailer.sent)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, api.mailer.sent, 1)

	body := api.mailer.sent[0].Body
	i := strings.Index(body, "/reset-password/")
	require.GreaterOrEqual(t, i, 0)
	token := strings.Fields(body[i+len("/reset-password/"):])[0]

	rec = api.do(t, http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]string{
		"token": "bogus", "password": "Changed456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]string{
		"token": token, "password": "Changed456",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Changed456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfile(t *testing.T) {
	api := newTestAPI(t)
	ada := api.signUp(t, "Ada")

	rec := api.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/v1/me", ada.Token, map[string]string{
		"name": "Ada Lovelace", "email": "ada@example.com", "skills_seeking": "music",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/users/"+ada.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Ada Lovelace", profile["name"])
	assert.NotContains(t, profile, "password_hash")

	rec = api.do(t, http.MethodPatch, "/api/v1/me", ada.Token, map[string]string{"bio": "Analyst"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Analyst", profile["bio"])
	assert.Equal(t, "Ada Lovelace", profile["name"])
	assert.Equal(t, "music", profile["skills_seeking"])

	rec = api.do(t, http.MethodPatch, "/api/v1/me", ada.Token, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/users/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/me/avatar", ada.Token, map[string]string{"filename": "me.png"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWorkshops_RegistrationFlow(t *testing.T) {
	api := newTestAPI(t)
	host := api.signUp(t, "Host")
	alice := api.signUp(t, "Alice")
	bob := api.signUp(t, "Bob")

	workshopID := api.createWorkshop(t, host, 1)
	register := map[string]string{"workshop_id": workshopID.String()}

	rec := api.do(t, http.MethodPost, "/api/v1/registrations", host.Token, register)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OWN_WORKSHOP", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/registrations", alice.Token, register)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/registrations", alice.Token, register)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_REGISTERED", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/registrations", bob.Token, register)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WORKSHOP_FULL", errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/api/v1/registrations", bob.Token, map[string]string{"workshop_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/workshops/"+workshopID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail domain.WorkshopDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.ParticipantCount)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "Alice", detail.Participants[0].UserName)

	rec = api.do(t, http.MethodGet, "/api/v1/workshops/scheduled", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var scheduled []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scheduled))
	require.Len(t, scheduled, 1)
	assert.Equal(t, "Host", scheduled[0]["host_name"])
	assert.Equal(t, float64(1), scheduled[0]["current_participants"])
}

func TestWorkshops_CreateValidationAndStatus(t *testing.T) {
	api := newTestAPI(t)
	host := api.signUp(t, "Host")
	other := api.signUp(t, "Other")

	rec := api.do(t, http.MethodPost, "/api/v1/workshops", host.Token, map[string]any{
		"title": "", "category": "juggling", "max_participants": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	id := api.createWorkshop(t, host, 4)
	path := "/api/v1/workshops/" + id.String() + "/status"

	rec = api.do(t, http.MethodPatch, path, other.Token, map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPatch, path, host.Token, map[string]string{"status": "postponed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, path, host.Token, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPatch, path, host.Token, map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/registrations", other.Token, map[string]string{"workshop_id": id.String()})
	assert.Equal(t, "WORKSHOP_CLOSED", errorCode(t, rec))
}

func TestWorkshops_ListAndRecommendations(t *testing.T) {
	api := newTestAPI(t)
	host := api.signUp(t, "Host")
	learner := api.signUp(t, "Learner")
	api.createWorkshop(t, host, 3)

	rec := api.do(t, http.MethodGet, "/api/v1/workshops?page=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.Page[domain.WorkshopSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)

	rec = api.do(t, http.MethodGet, "/api/v1/workshops?page=3074457345618258603", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var beyond domain.Page[domain.WorkshopSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &beyond))
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 1, beyond.Total)
	assert.False(t, beyond.HasNext)

	rec = api.do(t, http.MethodPatch, "/api/v1/me", learner.Token, map[string]string{
		"name": "Learner", "email": "learner@example.com", "skills_seeking": "Guitar",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/me/recommendations", learner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var matches []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, float64(1), matches[0]["match_score"])
	assert.Equal(t, []any{"guitar"}, matches[0]["matching_skills"])
}

func TestArticles(t *testing.T) {
	api := newTestAPI(t)
	author := api.signUp(t, "Author")
	reader := api.signUp(t, "Reader")

	rec := api.do(t, http.MethodPost, "/api/v1/articles", author.Token, map[string]string{
		"title": "Tuning a guitar", "content": "Start with the low E", "category": "arts", "tags": "music, guitar",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var article domain.KnowledgeArticle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &article))
	path := "/api/v1/articles/" + article.ID.String()

	rec = api.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.ArticleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Views)

	rec = api.do(t, http.MethodPost, path+"/comments", reader.Token, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, path+"/comments", reader.Token, map[string]string{"content": "Thanks!"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPatch, path, reader.Token, map[string]string{
		"title": "Mine now", "content": "x", "category": "arts",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/articles?search=GUITAR&category=arts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.Page[domain.KnowledgeArticle]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	rec = api.do(t, http.MethodGet, "/api/v1/articles/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signUp(t, "Admin")
	member := api.signUp(t, "Member")

	rec := api.do(t, http.MethodGet, "/api/v1/admin/stats", member.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	require.NoError(t, api.store.Users.SetRole(context.Background(), admin.ID, domain.RoleAdmin))

	rec = api.do(t, http.MethodGet, "/api/v1/admin/stats", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats service.PlatformStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalUsers)

	rec = api.do(t, http.MethodGet, "/api/v1/admin/activity?limit=1", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activity service.RecentActivity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activity))
	assert.Len(t, activity.RecentUsers, 1)

	rec = api.do(t, http.MethodGet, "/api/v1/admin/users", admin.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/admin/workshops", admin.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rolePath := "/api/v1/admin/users/" + member.ID.String() + "/role"
	rec = api.do(t, http.MethodPut, rolePath, admin.Token, map[string]string{"role": "owner"})
	assert.Equal(t, "INVALID_ROLE", errorCode(t, rec))

	rec = api.do(t, http.MethodPut, rolePath, admin.Token, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/admin/stats", member.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
