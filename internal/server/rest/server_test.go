package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/config"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"github.com/dmitrijs2005/taxportal/internal/server/pagination"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taxportal/internal/server/rest/respond"
	"github.com/dmitrijs2005/taxportal/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t          *testing.T
	handler    http.Handler
	adminToken string
	userToken  string
}

func nopLogger() logging.Logger {
	return logging.New(logging.BackendSlog, "error", io.Discard)
}

func newServer(t *testing.T, store *repomanager.MemoryRepositoryManager) *HTTPServer {
	t.Helper()
	logger := nopLogger()
	svc := Services{
		Contents: services.NewContentService(store.Contents(), logger),
		Contacts: services.NewContactService(store.Contacts(), logger),
		Auth:     services.NewAuthService(store.Users(), logger, false),
		Images:   services.NewImageService(&config.Config{MaxUploadSize: 1 << 20}, logger),
		SEO:      services.NewSEOService(store.Contents(), "https://taxemployee.com", logger),
		Store:    store,
	}
	return NewHTTPServer("127.0.0.1:0", logger, svc, 1<<20, time.Second)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repomanager.NewMemoryRepositoryManager()
	store.UserStore().Add(models.User{
		Email:    "admin@example.com",
		Name:     "Site Admin",
		Password: services.LegacyDigest("admin-pass"),
		IsAdmin:  true,
		Roles:    []string{models.RoleAdmin},
	})
	store.UserStore().Add(models.User{
		Email:    "editor@example.com",
		Password: services.LegacyDigest("editor-pass"),
	})

	env := &testEnv{t: t, handler: newServer(t, store).Handler()}
	env.adminToken = env.login("admin@example.com", "admin-pass")
	env.userToken = env.login("editor@example.com", "editor-pass")
	return env
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp models.LoginResponse
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(e.t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) createContent(title, category, typ, date string) models.Content {
	e.t.Helper()
	body := `{"title":"` + title + `","type":"` + typ + `","category":"` + category +
		`","body":"enough body text for ` + title + `","date":"` + date + `"}`
	w := e.do(http.MethodPost, "/api/content", body, e.adminToken)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Content](e.t, w)
}

func TestContent_CreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title":"Budget Update","type":"news","category":"gst","body":"xxxxxxxxxxxxxxx"}`

	w := env.do(http.MethodPost, "/api/content", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = env.do(http.MethodPost, "/api/content", body, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/content", body, env.userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/content", body, env.adminToken)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Content](t, w)
	assert.True(t, objectid.IsValid(created.ID))
	assert.Equal(t, "Site Admin", created.Author)

	w = env.do(http.MethodGet, "/api/content/item/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Content](t, w)
	assert.Equal(t, "Budget Update", got.Title)
	assert.Equal(t, models.CategoryGST, got.Category)
	assert.Equal(t, models.ContentTypeNews, got.Type)
}

func TestContent_CreateInvalid(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/content", `{"title":"T","type":"blog","category":"gst","body":"long enough body"}`, env.adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decode[respond.ErrorResponse](t, w)
	assert.Contains(t, errResp.Message, "type")

	w = env.do(http.MethodPost, "/api/content", `{"title":`, env.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContent_Listings(t *testing.T) {
	env := newTestEnv(t)
	one := env.createContent("GST council meets", "gst", "news", "2025-01-01")
	env.createContent("Company filings", "mca", "news", "2025-01-02")
	three := env.createContent("Input credit rules", "gst", "articles", "2025-01-03")

	w := env.do(http.MethodGet, "/api/content", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pagination.Page[models.Content]](t, w)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Items, 3)
	assert.Equal(t, three.ID, page.Items[0].ID)

	w = env.do(http.MethodGet, "/api/content?q=council", "", "")
	page = decode[pagination.Page[models.Content]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, one.ID, page.Items[0].ID)

	w = env.do(http.MethodGet, "/api/content/gst/news", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[pagination.Page[models.Content]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, one.ID, page.Items[0].ID)

	w = env.do(http.MethodGet, "/api/content/category/gst?skip=1&limit=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[pagination.Page[models.Content]](t, w)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, int64(2), page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, one.ID, page.Items[0].ID)

	w = env.do(http.MethodGet, "/api/content/count?category=gst", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/content?limit=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/content/vat/news", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"page":1,"pageSize":10,"totalPages":0,"items":[]}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/content/category/vat", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestContent_EmptyListEncodesItemsArray(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/content", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"page":1,"pageSize":10,"totalPages":0,"items":[]}`, w.Body.String())
}

func TestContent_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContent("Old title", "sebi", "news", "2025-01-01")

	w := env.do(http.MethodPut, "/api/content/"+c.ID, `{"title":"New title"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, "/api/content/"+c.ID, `{"title":"New title","summary":null}`, env.userToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Content](t, w)
	assert.Equal(t, "New title", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)

	w = env.do(http.MethodPut, "/api/content/not-an-id", `{"title":"x"}`, env.userToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/content/"+objectid.NewHex(), `{"title":"x"}`, env.userToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/content/"+c.ID, "", env.userToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, "/api/content/"+c.ID, "", env.userToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/content/not-an-id", "", env.userToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/content/item/"+c.ID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/content/item/not-an-id", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContact_Flow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/contact", `{"name":"Asha","email":"asha@example.com","message":"Need help with my GST return"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c := decode[models.Contact](t, w)
	assert.Equal(t, models.ContactStatusNew, c.Status)

	w = env.do(http.MethodPost, "/api/contact", `{"name":"Asha","email":"nope","message":"Need help with my GST return"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodGet, "/api/contact", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodGet, "/api/contact", "", env.userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/contact", "", env.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pagination.Page[models.Contact]](t, w)
	assert.Equal(t, int64(1), page.Total)

	w = env.do(http.MethodPatch, "/api/contact/"+c.ID+"/status", `{"status":"replied"}`, env.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.ContactStatusReplied, decode[models.Contact](t, w).Status)

	w = env.do(http.MethodPatch, "/api/contact/"+c.ID+"/status", `{"status":"spam"}`, env.adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodGet, "/api/contact/"+c.ID, "", env.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha@example.com", decode[models.Contact](t, w).Email)

	w = env.do(http.MethodGet, "/api/contact/count", "", env.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ContactStats{Total: 1, Replied: 1}, decode[models.ContactStats](t, w))

	w = env.do(http.MethodGet, "/api/contact/"+objectid.NewHex(), "", env.adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_LoginMeLogout(t *testing.T) {
	env := newTestEnv(t)

	wrong := env.do(http.MethodPost, "/api/login", `{"email":"admin@example.com","password":"bad-password"}`, "")
	unknown := env.do(http.MethodPost, "/api/login", `{"email":"ghost@example.com","password":"admin-pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	w := env.do(http.MethodGet, "/api/me", "", env.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.PublicUser](t, w)
	assert.Equal(t, "admin@example.com", me.Email)
	assert.True(t, me.IsAdmin)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(http.MethodPost, "/api/logout", "", env.adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/me", "", env.adminToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"connected"}`, w.Body.String())
}

func TestSEO(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContent("Budget", "gst", "news", "2025-01-01")

	w := env.do(http.MethodGet, "/api/seo/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "https://taxemployee.com/article/"+c.ID)

	w = env.do(http.MethodGet, "/api/seo/robots.txt", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /api/")
}

func TestUpload_NotConfigured(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "chart.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.userToken)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(http.MethodPost, "/api/upload/image", `{}`, env.userToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/upload/images", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecoversFromPanic(t *testing.T) {
	srv := newServer(t, repomanager.NewMemoryRepositoryManager())
	srv.svc.Contents = nil

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/content", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := newServer(t, repomanager.NewMemoryRepositoryManager())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestServe_WaitsForHandlersAfterShutdownTimeout(t *testing.T) {
	srv := NewHTTPServer("", logging.New(logging.BackendSlog, "error", io.Discard), Services{}, 1<<20, 50*time.Millisecond)

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	entered := make(chan struct{})
	var finished atomic.Bool
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-r.Context().Done()
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.serve(ctx, listen, slow)
	}()

	go func() {
		resp, err := http.Get("http://" + listen.Addr().String() + "/")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, finished.Load(), "serve returned before the handler finished")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := newServer(t, repomanager.NewMemoryRepositoryManager())
	srv.address = "127.0.0.1:99999"

	assert.Error(t, srv.Run(context.Background()))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, bearerToken(req))
		})
	}
}
