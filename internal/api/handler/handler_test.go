package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/policy"
	"github.com/kiflomm/mu-maintainance/internal/service"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
	meResult    *dto.UserResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ int64) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock UserService ──

type mockUserService struct {
	user      *dto.UserResponse
	form      *dto.UserFormResponse
	list      []dto.UserResponse
	total     int64
	err       error
	deleteErr error
	deletedBy int64
}

func (m *mockUserService) Create(_ context.Context, _ *dto.CreateUserRequest) (*dto.UserResponse, error) {
	return m.user, m.err
}
func (m *mockUserService) GetByID(_ context.Context, _ int64) (*dto.UserResponse, error) {
	return m.user, m.err
}
func (m *mockUserService) EditForm(_ context.Context, _ int64) (*dto.UserFormResponse, error) {
	return m.form, m.err
}
func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return m.list, m.total, m.err
}
func (m *mockUserService) Update(_ context.Context, _ int64, _ *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return m.user, m.err
}
func (m *mockUserService) Delete(_ context.Context, _ int64, callerID int64) error {
	m.deletedBy = callerID
	return m.deleteErr
}
func (m *mockUserService) SeedAdmin(_ context.Context, _, _, _ string) error {
	return nil
}

// ── Mock ComplaintService ──

type mockComplaintService struct {
	submitResult *dto.SubmitComplaintResponse
	submitErr    error
	submitReq    *dto.SubmitComplaintRequest
	submitImage  []byte

	trackID  int64
	trackErr error

	getResult *dto.ComplaintResponse
	getErr    error
	getViewer *policy.Viewer

	listResult []dto.ComplaintResponse
	listTotal  int64
	listErr    error
	listViewer policy.Viewer

	updateResult *dto.ComplaintResponse
	updateErr    error

	dashResult *dto.DashboardResponse
	dashErr    error
}

func (m *mockComplaintService) Submit(_ context.Context, req *dto.SubmitComplaintRequest, image []byte) (*dto.SubmitComplaintResponse, error) {
	m.submitReq = req
	m.submitImage = image
	return m.submitResult, m.submitErr
}
func (m *mockComplaintService) Track(_ context.Context, _ string) (int64, error) {
	return m.trackID, m.trackErr
}
func (m *mockComplaintService) Get(_ context.Context, _ int64, viewer *policy.Viewer) (*dto.ComplaintResponse, error) {
	m.getViewer = viewer
	return m.getResult, m.getErr
}
func (m *mockComplaintService) List(_ context.Context, viewer policy.Viewer, _ *dto.ComplaintListRequest) ([]dto.ComplaintResponse, int64, error) {
	m.listViewer = viewer
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockComplaintService) Update(_ context.Context, _ policy.Viewer, _ int64, _ *dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockComplaintService) Dashboard(_ context.Context, _ policy.Viewer) (*dto.DashboardResponse, error) {
	return m.dashResult, m.dashErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportComplaints(_ context.Context, _ policy.Viewer, _ model.Status) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth 模拟 JWTAuth 注入的上下文
func withAuth(userID int64, role model.Role, campusID *int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserID, userID)
		c.Set(CtxRole, string(role))
		c.Set(CtxCampusID, campusID)
		c.Set(CtxTokenJTI, "test-jti")
		c.Set(CtxTokenExp, time.Now().Add(15*time.Minute))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func jsonRequest(method, path string, v interface{}) *http.Request {
	req := httptest.NewRequest(method, path, jsonBody(v))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func detailFields(resp response.Response) map[string]interface{} {
	m, _ := resp.Details.(map[string]interface{})
	return m
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", TokenType: "Bearer", ExpiresIn: 3600},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, jsonRequest("POST", "/auth/login", dto.LoginRequest{Email: "admin@mu.edu", Password: "secret123"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, jsonRequest("POST", "/auth/login", dto.LoginRequest{Email: "not-an-email", Password: "x"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := detailFields(parseResponse(w))["email"]; !ok {
		t.Error("expected field error for email")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, jsonRequest("POST", "/auth/login", dto.LoginRequest{Email: "admin@mu.edu", Password: "wrong"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", withAuth(1, model.RoleAdmin, nil), h.Logout)
	w := serve(r, httptest.NewRequest("POST", "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := serve(r, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ComplaintHandler Tests
// ═══════════════════════════════════════════════════════════

func newComplaintRouter(mock *mockComplaintService) *gin.Engine {
	h := NewComplaintHandler(mock, 1<<20)
	r := gin.New()
	r.POST("/complaints", h.Submit)
	r.POST("/complaints/track", h.Track)
	r.GET("/complaints/:id", h.Get)
	r.GET("/staff/complaints/:id", withAuth(5, model.RoleCoordinator, nil), h.Get)
	r.GET("/complaints", withAuth(5, model.RoleWorker, nil), h.List)
	r.GET("/anon/complaints", h.List)
	r.PATCH("/complaints/:id", withAuth(5, model.RoleWorker, nil), h.Update)
	return r
}

func TestComplaintHandler_Submit_JSON_Redirects(t *testing.T) {
	mock := &mockComplaintService{
		submitResult: &dto.SubmitComplaintResponse{ID: 7, TicketCode: "COMP-AB12CD34", Status: "pending"},
	}
	r := newComplaintRouter(mock)

	w := serve(r, jsonRequest("POST", "/complaints", map[string]interface{}{
		"campus_id":   1,
		"category_id": 2,
		"description": "Leaking faucet in room 301",
	}))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/complaints/7" {
		t.Errorf("expected Location /complaints/7, got %s", loc)
	}
	if mock.submitReq.CampusID != 1 || mock.submitReq.Description != "Leaking faucet in room 301" {
		t.Errorf("unexpected request: %+v", mock.submitReq)
	}
	if mock.submitImage != nil {
		t.Error("expected no image for JSON submission")
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["ticket_code"] != "COMP-AB12CD34" {
		t.Errorf("expected ticket code in body, got %v", data)
	}
}

func TestComplaintHandler_Submit_MissingCampus(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{})

	w := serve(r, jsonRequest("POST", "/complaints", map[string]interface{}{
		"category_id": 2,
		"description": "Leaking faucet in room 301",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := detailFields(parseResponse(w))["campus_id"]; !ok {
		t.Error("expected field error for campus_id")
	}
}

func TestComplaintHandler_Submit_Multipart(t *testing.T) {
	mock := &mockComplaintService{
		submitResult: &dto.SubmitComplaintResponse{ID: 3, TicketCode: "COMP-ZZZZ0000", Status: "pending"},
	}
	r := newComplaintRouter(mock)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("campus_id", "1")
	mw.WriteField("category_id", "2")
	mw.WriteField("description", "Broken window in the library")
	fw, _ := mw.CreateFormFile("image", "photo.png")
	fw.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	mw.Close()

	req := httptest.NewRequest("POST", "/complaints", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(r, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if !bytes.HasPrefix(mock.submitImage, []byte("\x89PNG")) {
		t.Error("expected image bytes to reach the service")
	}
}

func TestComplaintHandler_Submit_MultipartBlankContacts(t *testing.T) {
	mock := &mockComplaintService{
		submitResult: &dto.SubmitComplaintResponse{ID: 4, TicketCode: "COMP-AAAA1111", Status: "pending"},
	}
	r := newComplaintRouter(mock)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("campus_id", "1")
	mw.WriteField("category_id", "2")
	mw.WriteField("description", "Broken window in the library")
	mw.WriteField("contact_name", "")
	mw.WriteField("contact_email", "")
	mw.WriteField("contact_phone", " 0911223344 ")
	mw.Close()

	req := httptest.NewRequest("POST", "/complaints", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(r, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if mock.submitReq.ContactName != nil || mock.submitReq.ContactEmail != nil {
		t.Error("expected blank form contacts to reach the service as nil")
	}
	if mock.submitReq.ContactPhone == nil || *mock.submitReq.ContactPhone != "0911223344" {
		t.Errorf("expected trimmed contact_phone, got %v", mock.submitReq.ContactPhone)
	}
}

func TestComplaintHandler_Submit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"validation", pkgerrors.NewValidationError("description", "至少需要 10 个字符"), http.StatusBadRequest, 10001},
		{"campus", service.ErrCampusNotFound, http.StatusNotFound, 30002},
		{"category", service.ErrCategoryNotFound, http.StatusNotFound, 30003},
		{"exhausted", pkgerrors.ErrGenerationExhausted, http.StatusServiceUnavailable, 30004},
		{"storage", pkgerrors.ErrStorage, http.StatusInternalServerError, 50001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newComplaintRouter(&mockComplaintService{submitErr: tt.err})
			w := serve(r, jsonRequest("POST", "/complaints", map[string]interface{}{
				"campus_id": 1, "category_id": 2, "description": "short",
			}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestComplaintHandler_Track(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{trackID: 42})
	w := serve(r, jsonRequest("POST", "/complaints/track", dto.TrackComplaintRequest{TicketCode: "comp-ab12cd34"}))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/complaints/42" {
		t.Errorf("expected Location /complaints/42, got %s", loc)
	}
}

func TestComplaintHandler_Track_NotFound(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{trackErr: service.ErrComplaintNotFound})
	w := serve(r, jsonRequest("POST", "/complaints/track", dto.TrackComplaintRequest{TicketCode: "COMP-NOPE0000"}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message == "" {
		t.Error("expected a message on miss")
	}
}

func TestComplaintHandler_Get_ViewerPropagation(t *testing.T) {
	mock := &mockComplaintService{getResult: &dto.ComplaintResponse{ID: 1}}
	r := newComplaintRouter(mock)

	if w := serve(r, httptest.NewRequest("GET", "/complaints/1", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.getViewer != nil {
		t.Error("expected anonymous viewer")
	}

	if w := serve(r, httptest.NewRequest("GET", "/staff/complaints/1", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.getViewer == nil || mock.getViewer.Role != model.RoleCoordinator {
		t.Errorf("expected coordinator viewer, got %+v", mock.getViewer)
	}
}

func TestComplaintHandler_Get_BadID(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{})
	w := serve(r, httptest.NewRequest("GET", "/complaints/abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestComplaintHandler_List(t *testing.T) {
	mock := &mockComplaintService{
		listResult: []dto.ComplaintResponse{{ID: 1}, {ID: 2}},
		listTotal:  12,
	}
	r := newComplaintRouter(mock)

	w := serve(r, httptest.NewRequest("GET", "/complaints?status=pending", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.listViewer.ID != 5 || mock.listViewer.Role != model.RoleWorker {
		t.Errorf("unexpected viewer: %+v", mock.listViewer)
	}

	data, _ := parseResponse(w).Data.(map[string]interface{})
	pg, _ := data["pagination"].(map[string]interface{})
	if pg["page_size"] != float64(10) || pg["total_pages"] != float64(2) {
		t.Errorf("unexpected pagination: %v", pg)
	}
}

func TestComplaintHandler_List_InvalidStatus(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{})
	w := serve(r, httptest.NewRequest("GET", "/complaints?status=closed", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestComplaintHandler_List_Unauthenticated(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{})
	w := serve(r, httptest.NewRequest("GET", "/anon/complaints", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestComplaintHandler_Update_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"forbidden", pkgerrors.ErrForbidden, http.StatusForbidden},
		{"not found", service.ErrComplaintNotFound, http.StatusNotFound},
		{"reassign", service.ErrWorkerReassign, http.StatusForbidden},
		{"bad worker", pkgerrors.NewValidationError("worker_id", "必须是已存在的维修人员"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newComplaintRouter(&mockComplaintService{updateErr: tt.err})
			status := "resolved"
			w := serve(r, jsonRequest("PATCH", "/complaints/1", dto.UpdateComplaintRequest{Status: &status}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestComplaintHandler_Update_InvalidStatus(t *testing.T) {
	r := newComplaintRouter(&mockComplaintService{})
	status := "closed"
	w := serve(r, jsonRequest("PATCH", "/complaints/1", dto.UpdateComplaintRequest{Status: &status}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := detailFields(parseResponse(w))["status"]; !ok {
		t.Error("expected field error for status")
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrEmailExists})

	r := gin.New()
	r.POST("/users", withAuth(1, model.RoleAdmin, nil), h.CreateUser)
	campus := int64(1)
	w := serve(r, jsonRequest("POST", "/users", dto.CreateUserRequest{
		Name: "Worku", Email: "worku@mu.edu", Password: "secret123", Role: "worker", CampusID: &campus,
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestUserHandler_Create_RejectsAdminRole(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	r := gin.New()
	r.POST("/users", withAuth(1, model.RoleAdmin, nil), h.CreateUser)
	w := serve(r, jsonRequest("POST", "/users", dto.CreateUserRequest{
		Name: "Root", Email: "root@mu.edu", Password: "secret123", Role: "admin",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := detailFields(parseResponse(w))["role"]; !ok {
		t.Error("expected field error for role")
	}
}

func TestUserHandler_Delete(t *testing.T) {
	mock := &mockUserService{}
	h := NewUserHandler(mock)

	r := gin.New()
	r.DELETE("/users/:id", withAuth(1, model.RoleAdmin, nil), h.DeleteUser)
	w := serve(r, httptest.NewRequest("DELETE", "/users/9", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.deletedBy != 1 {
		t.Errorf("expected caller 1, got %d", mock.deletedBy)
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	h := NewUserHandler(&mockUserService{deleteErr: service.ErrUserSelfDelete})

	r := gin.New()
	r.DELETE("/users/:id", withAuth(1, model.RoleAdmin, nil), h.DeleteUser)
	w := serve(r, httptest.NewRequest("DELETE", "/users/1", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20003 {
		t.Errorf("expected code 20003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "complaints_20261018_0900.xlsx",
	})

	r := gin.New()
	r.GET("/complaints/export", withAuth(1, model.RoleAdmin, nil), h.ExportComplaints)
	w := serve(r, httptest.NewRequest("GET", "/complaints/export?status=pending", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''complaints_20261018_0900.xlsx" {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestExportHandler_InvalidStatus(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	r := gin.New()
	r.GET("/complaints/export", withAuth(1, model.RoleAdmin, nil), h.ExportComplaints)
	w := serve(r, httptest.NewRequest("GET", "/complaints/export?status=closed", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Forbidden(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: pkgerrors.ErrForbidden})

	r := gin.New()
	r.GET("/complaints/export", withAuth(1, model.RoleCoordinator, nil), h.ExportComplaints)
	w := serve(r, httptest.NewRequest("GET", "/complaints/export", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"CampusID":      "campus_id",
		"TicketCode":    "ticket_code",
		"InternalNotes": "internal_notes",
		"Email":         "email",
	}
	for in, want := range cases {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
