package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/api/http/handlers"
	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/observability"
	"github.com/TahjibNil75/trackIT/internal/repository/repotest"
	"github.com/TahjibNil75/trackIT/internal/service"
	"github.com/TahjibNil75/trackIT/internal/storage"
	"github.com/TahjibNil75/trackIT/internal/storage/storagetest"
)

type testServer struct {
	app     *fiber.App
	store   *repotest.Store
	objects *storagetest.MemoryStore
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repotest.NewStore()
	objects := storagetest.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "test", BcryptCost: 4}, store.Users())
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     store.Tickets(),
		UserRepo:       store.Users(),
		CommentRepo:    store.Comments(),
		AttachmentRepo: store.Attachments(),
		HistoryRepo:    store.History(),
		Transactor:     store.Transactor(),
		Uploader:       storage.NewUploader(objects, 0),
		Dispatcher:     dispatcher,
		Logger:         logger,
		Options:        config.TicketsConfig{HistoryPageSize: 10, MineEmptyAsNotFound: true},
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  store.Tickets(),
		CommentRepo: store.Comments(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, config.AppConfig{CORSOrigins: "*"})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("trackit", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Users:          handlers.NewUsersHandler(service.NewUserService(store.Users())),
		Analytics:      handlers.NewAnalyticsHandler(service.NewAnalyticsService(service.AnalyticsDependencies{AnalyticsRepo: store.Analytics()})),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		Metrics:        metrics,
	})

	return &testServer{app: app, store: store, objects: objects, tokens: authService.TokenManager()}
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	issued, err := s.tokens.GenerateToken(user, domain.TokenKindAccess)
	require.NoError(t, err)
	return issued.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestSignupLoginAndMe(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"username":         "carol",
		"email":            "carol@example.com",
		"password":         "password1",
		"confirm_password": "password1",
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = srv.do(t, fiber.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "carol@example.com",
		"password": "password1",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	data := body["data"].(map[string]any)
	access := data["access_token"].(map[string]any)["token"].(string)
	assert.NotEmpty(t, data["refresh_token"])

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "carol", body["data"].(map[string]any)["username"])
	assert.NotContains(t, body["data"], "PasswordHash")

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.store.AddUser("alice", domain.RoleUser)
	bob := srv.store.AddUser("bob", domain.RoleUser)
	support := srv.store.AddUser("support", domain.RoleITSupport)

	status, body := srv.do(t, fiber.MethodPost, "/api/v1/tickets", srv.token(t, alice), map[string]any{
		"subject":        "Laptop will not boot",
		"description":    "Black screen after the update.",
		"types_of_issue": "hardware",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	ticketID := body["data"].(map[string]any)["ticket_id"].(string)

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/tickets/"+ticketID, srv.token(t, bob), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodPatch, "/api/v1/tickets/"+ticketID+"/status", srv.token(t, bob), map[string]any{"status": "open"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
	assert.NotContains(t, body, "data")

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/tickets/abc", srv.token(t, alice), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, fiber.MethodPatch, "/api/v1/tickets/"+ticketID+"/status", srv.token(t, alice), map[string]any{"status": "closed"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "STATUS_UPDATE_FORBIDDEN", errorCode(body))

	status, _ = srv.do(t, fiber.MethodPut, "/api/v1/tickets/"+ticketID+"/assign", srv.token(t, alice), map[string]any{"assigned_to": support.ID})
	require.Equal(t, fiber.StatusOK, status)

	status, body = srv.do(t, fiber.MethodPatch, "/api/v1/tickets/"+ticketID+"/status", srv.token(t, support), map[string]any{"status": "in_progress"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "in_progress", body["data"].(map[string]any)["status"])

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/tickets/history", srv.token(t, alice), nil)
	require.Equal(t, fiber.StatusOK, status)
	page := body["data"].(map[string]any)
	assert.EqualValues(t, 3, page["total"])

	status, _ = srv.do(t, fiber.MethodGet, "/api/v1/tickets/mine", srv.token(t, support), nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = srv.do(t, fiber.MethodDelete, "/api/v1/tickets/"+ticketID, srv.token(t, alice), nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/tickets/"+ticketID, srv.token(t, alice), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestCreateTicketWithMultipartUpload(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.store.AddUser("alice", domain.RoleUser)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("subject", "Broken monitor"))
	require.NoError(t, writer.WriteField("description", "Monitor flickers constantly."))
	require.NoError(t, writer.WriteField("types_of_issue", "hardware"))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/tickets", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token(t, alice))

	status, body := srv.send(t, req)
	require.Equal(t, fiber.StatusCreated, status, body)
	attachments := body["data"].(map[string]any)["attachments"].([]any)
	require.Len(t, attachments, 1)
	assert.Equal(t, "photo.png", attachments[0].(map[string]any)["file_name"])
	assert.Equal(t, 1, srv.objects.Len())
}

func TestRoleGuardedRoutes(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.store.AddUser("alice", domain.RoleUser)
	manager := srv.store.AddUser("manager", domain.RoleManager)

	status, body := srv.do(t, fiber.MethodGet, "/api/v1/analytics/dashboard", srv.token(t, alice), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/analytics/dashboard", srv.token(t, manager), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["data"], "assigned_to_me")

	status, _ = srv.do(t, fiber.MethodPut, "/api/v1/users/"+alice.ID+"/role", srv.token(t, manager), map[string]any{"role": "manager"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = srv.do(t, fiber.MethodGet, "/api/v1/users/role/user", srv.token(t, alice), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["total"])
}

func TestUnknownRouteAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, _ = srv.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "helpdesk_http_requests_total")
}
