package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"findhome/internal/auth"
	"findhome/internal/media"
	"findhome/internal/metrics"
	"findhome/internal/models"
	"findhome/internal/repository"
)

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevoker) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type testServer struct {
	db     *gorm.DB
	repo   *repository.Repository
	store  *media.MemoryStore
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	auth.InitJWT("test-secret", time.Hour)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	store := media.NewMemoryStore("http://media.test")
	router := NewRouter(RouterOptions{
		DB:      db,
		Media:   store,
		Revoker: &memoryRevoker{revoked: make(map[string]bool)},
		Metrics: metrics.New(),
	})
	return &testServer{db: db, repo: repository.NewRepository(db), store: store, router: router}
}

// user creates an account directly and returns it with a token
func (s *testServer) user(t *testing.T, username string, userType models.UserType) (*models.User, string) {
	t.Helper()
	user := &models.User{Username: username, FirstName: strings.ToUpper(username[:1]) + username[1:], IsActive: true, PasswordHash: "x"}
	if err := s.repo.CreateUserWithProfile(context.Background(), user, &models.UserProfile{UserType: userType}); err != nil {
		t.Fatalf("failed to create %s: %v", username, err)
	}
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return user, token
}

func (s *testServer) do(method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func listingForm(title, houseType, rent string) url.Values {
	return url.Values{
		"title":         {title},
		"description":   {"Bright and quiet"},
		"house_type":    {houseType},
		"address":       {"12 Lake Road"},
		"area":          {"Dhanmondi"},
		"rent":          {rent},
		"contact_phone": {"01700000000"},
		"contact_email": {"owner@example.com"},
	}
}

func (s *testServer) createListing(t *testing.T, token, title, houseType, rent string) uint {
	t.Helper()
	w := s.do(http.MethodPost, "/create-listing/", token, listingForm(title, houseType, rent))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create listing %s: expected 303, got %d: %s", title, w.Code, w.Body.String())
	}
	var body struct {
		Listing models.HouseListing `json:"listing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	return body.Listing.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location, key, message string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("expected Location %q, got %q", location, got)
	}
	if body := decode(t, w); body[key] != message {
		t.Errorf("expected %s %q, got %v", key, message, body[key])
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/register/", "", url.Values{
		"username":   {"alice"},
		"first_name": {"Alice"},
		"last_name":  {"Rahman"},
		"email":      {"alice@example.com"},
		"password1":  {"s3cure-pass"},
		"password2":  {"s3cure-pass"},
		"user_type":  {"renter"},
	})
	expectRedirect(t, w, "/dashboard/", "message", "Registration successful!")
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatal("expected a token after registration")
	}

	w = s.do(http.MethodGet, "/dashboard/", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected dashboard, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["user_type"] != "renter" {
		t.Errorf("expected renter dashboard, got %v", body["user_type"])
	}

	w = s.do(http.MethodPost, "/logout/", token, nil)
	expectRedirect(t, w, "/", "message", "You have been logged out successfully.")

	if w = s.do(http.MethodGet, "/dashboard/", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected revoked token to be rejected, got %d", w.Code)
	}

	w = s.do(http.MethodPost, "/login/", "", url.Values{"username": {"alice"}, "password": {"wrong-pass"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad credentials, got %d", w.Code)
	}

	w = s.do(http.MethodPost, "/login/", "", url.Values{"username": {"alice"}, "password": {"s3cure-pass"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d: %s", w.Code, w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, auth.CookieName+"=") {
		t.Errorf("expected token cookie, got %q", cookie)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/register/", "", url.Values{
		"username":   {"mallory"},
		"first_name": {"Mal"},
		"last_name":  {"Lory"},
		"email":      {"mallory@example.com"},
		"password1":  {"s3cure-pass"},
		"password2":  {"s3cure-pass"},
		"user_type":  {"admin"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	errs, _ := decode(t, w)["errors"].(map[string]interface{})
	if _, ok := errs["user_type"]; !ok {
		t.Errorf("expected user_type error, got %v", errs)
	}
}

func TestCreateListingWithImages(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)
	_, renterToken := s.user(t, "bob", models.UserTypeRenter)

	w := s.do(http.MethodGet, "/create-listing/", renterToken, nil)
	expectRedirect(t, w, "/", "error", "Only owners can create listings.")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range listingForm("Lake view flat", "family", "5000") {
		_ = mw.WriteField(key, values[0])
	}
	for _, name := range []string{"front.jpg", "kitchen.png"} {
		part, err := mw.CreateFormFile("images[]", name)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		_, _ = part.Write([]byte("image-bytes"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/create-listing/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	expectRedirect(t, w, "/dashboard/", "message", "Listing created successfully!")

	if s.store.Len() != 2 {
		t.Fatalf("expected 2 stored images, got %d", s.store.Len())
	}

	w = s.do(http.MethodGet, "/listing/1/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected detail, got %d", w.Code)
	}
	var detail struct {
		Listing models.HouseListing `json:"listing"`
		IsSaved bool                `json:"is_saved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}
	if len(detail.Listing.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(detail.Listing.Images))
	}
	if detail.Listing.OwnerID == 0 || detail.Listing.Status != models.ListingStatusAvailable {
		t.Errorf("unexpected listing %+v", detail.Listing)
	}
}

func TestCreateListingValidation(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)

	form := listingForm("", "villa", "5000")
	w := s.do(http.MethodPost, "/create-listing/", ownerToken, form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	errs, _ := decode(t, w)["errors"].(map[string]interface{})
	for _, field := range []string{"title", "house_type"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}

	var count int64
	s.db.Model(&models.HouseListing{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no listing, got %d", count)
	}
}

func TestSearchFilters(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)

	s.createListing(t, ownerToken, "Family flat", "family", "5000")
	s.createListing(t, ownerToken, "Cheap room", "bachelor_male", "3000")
	s.createListing(t, ownerToken, "Big family home", "family", "9000")

	w := s.do(http.MethodGet, "/?house_type=family&min_rent=4000&max_rent=6000", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["total"] != float64(1) || body["filters_applied"] != true {
		t.Errorf("expected one filtered result, got total=%v applied=%v", body["total"], body["filters_applied"])
	}

	w = s.do(http.MethodGet, "/?min_rent=abc&house_type=family", "", nil)
	body = decode(t, w)
	if body["total"] != float64(3) || body["filters_applied"] != false {
		t.Errorf("expected invalid filters to be dropped, got total=%v applied=%v", body["total"], body["filters_applied"])
	}

	w = s.do(http.MethodGet, "/?query=FLAT&page=99", "", nil)
	body = decode(t, w)
	if body["total"] != float64(1) || body["page"] != float64(1) {
		t.Errorf("expected 1 result on the last page, got total=%v page=%v", body["total"], body["page"])
	}
}

func TestRenterInteractions(t *testing.T) {
	s := newTestServer(t)
	owner, ownerToken := s.user(t, "olivia", models.UserTypeOwner)
	renter, renterToken := s.user(t, "bob", models.UserTypeRenter)
	_, strangerToken := s.user(t, "oscar", models.UserTypeOwner)
	id := s.createListing(t, ownerToken, "Lake view flat", "family", "5000")
	base := fmt.Sprintf("/listing/%d/", id)

	// save toggles
	for _, want := range []bool{true, false} {
		w := s.do(http.MethodPost, base+"save/", renterToken, nil)
		if body := decode(t, w); body["saved"] != want {
			t.Errorf("expected saved=%v, got %v", want, body["saved"])
		}
	}

	// interest once
	w := s.do(http.MethodPost, base+"interest/", renterToken, nil)
	if body := decode(t, w); body["success"] != true || body["message"] != "Interest shown successfully!" {
		t.Errorf("unexpected first interest response %v", body)
	}
	w = s.do(http.MethodPost, base+"interest/", renterToken, nil)
	if body := decode(t, w); body["success"] != false || body["message"] != "You have already shown interest in this property." {
		t.Errorf("unexpected repeat interest response %v", body)
	}
	w = s.do(http.MethodPost, base+"interest/", ownerToken, nil)
	if w.Code != http.StatusForbidden || decode(t, w)["error"] != "Only renters can show interest" {
		t.Errorf("expected owner interest to be forbidden, got %d %s", w.Code, w.Body.String())
	}

	// the owner reads the interest
	var interest models.Interest
	if err := s.db.Where("listing_id = ?", id).First(&interest).Error; err != nil {
		t.Fatalf("interest not stored: %v", err)
	}
	if w = s.do(http.MethodPost, fmt.Sprintf("/interest/%d/read/", interest.ID), strangerToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another owner, got %d", w.Code)
	}
	if w = s.do(http.MethodPost, fmt.Sprintf("/interest/%d/read/", interest.ID), ownerToken, nil); w.Code != http.StatusOK {
		t.Errorf("expected interest read, got %d", w.Code)
	}

	// comments
	if body := decode(t, s.do(http.MethodPost, base+"comment/", renterToken, url.Values{"content": {"  "}})); body["success"] != false {
		t.Errorf("expected blank comment to fail, got %v", body)
	}
	if body := decode(t, s.do(http.MethodPost, base+"comment/", renterToken, url.Values{"content": {"Is it furnished?"}})); body["success"] != true {
		t.Errorf("expected comment, got %v", body)
	}
	if w = s.do(http.MethodPost, base+"comment/", ownerToken, url.Values{"content": {"Yes"}, "parent_id": {"999"}}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing parent, got %d", w.Code)
	}

	// chat
	w = s.do(http.MethodPost, base+"send-message/", renterToken, url.Values{"message": {"Hi"}})
	if body := decode(t, w); body["success"] != false {
		t.Errorf("expected message without receiver to fail, got %v", body)
	}
	w = s.do(http.MethodPost, base+"send-message/", renterToken, url.Values{
		"receiver_id": {fmt.Sprint(owner.ID)},
		"message":     {"Can I visit on Friday?"},
	})
	if body := decode(t, w); body["success"] != true {
		t.Fatalf("expected message to be sent, got %v", body)
	}

	w = s.do(http.MethodGet, base+"chat/", ownerToken, nil)
	expectRedirect(t, w, base, "error", "Renter not specified.")

	w = s.do(http.MethodGet, base+"chat/", strangerToken, nil)
	expectRedirect(t, w, base, "error", "Unauthorized access.")

	w = s.do(http.MethodGet, fmt.Sprintf("%schat/?renter_id=%d", base, renter.ID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected chat thread, got %d: %s", w.Code, w.Body.String())
	}
	messages, _ := decode(t, w)["messages"].([]interface{})
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var unread int64
	s.db.Model(&models.ChatMessage{}).Where("is_read = ?", false).Count(&unread)
	if unread != 0 {
		t.Errorf("expected the owner's view to mark the message read, %d unread", unread)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)
	_, strangerToken := s.user(t, "oscar", models.UserTypeOwner)
	id := s.createListing(t, ownerToken, "Lake view flat", "family", "5000")
	path := fmt.Sprintf("/listing/%d/update-status/", id)

	if w := s.do(http.MethodPost, path, strangerToken, url.Values{"status": {"booked"}}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a foreign listing, got %d", w.Code)
	}

	w := s.do(http.MethodPost, path, ownerToken, url.Values{"status": {"sold"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard/" {
		t.Fatalf("expected redirect to the dashboard, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if _, ok := decode(t, w)["message"]; ok {
		t.Error("expected no message for an unknown status")
	}

	w = s.do(http.MethodPost, path, ownerToken, url.Values{"status": {"booked"}})
	expectRedirect(t, w, "/dashboard/", "message", "Listing status updated to booked.")

	body := decode(t, s.do(http.MethodGet, "/", "", nil))
	if body["total"] != float64(0) {
		t.Errorf("expected booked listing to leave search, got %v", body["total"])
	}
}

func TestAdminRemovesReportedListing(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)
	renter, renterToken := s.user(t, "bob", models.UserTypeRenter)
	_, adminToken := s.user(t, "root", models.UserTypeAdmin)
	id := s.createListing(t, ownerToken, "Too good to be true", "family", "100")
	base := fmt.Sprintf("/listing/%d/", id)

	w := s.do(http.MethodPost, base+"report/", renterToken, url.Values{"reason": {""}})
	if body := decode(t, w); body["success"] != false || body["message"] != "Please provide a valid reason for reporting." {
		t.Errorf("unexpected blank report response %v", body)
	}
	w = s.do(http.MethodPost, base+"report/", renterToken, url.Values{"reason": {"Photos are fake"}})
	if body := decode(t, w); body["success"] != true || body["message"] != "Report submitted successfully." {
		t.Fatalf("unexpected report response %v", body)
	}

	var report models.Report
	if err := s.db.First(&report).Error; err != nil {
		t.Fatalf("report not stored: %v", err)
	}
	resolve := fmt.Sprintf("/admin/report/%d/resolve/", report.ID)

	w = s.do(http.MethodPost, resolve, renterToken, url.Values{"action": {"remove"}})
	expectRedirect(t, w, "/", "error", "Unauthorized access.")

	w = s.do(http.MethodGet, "/dashboard/", adminToken, nil)
	admin, _ := decode(t, w)["admin"].(map[string]interface{})
	if admin["pending_reports"] != float64(1) || admin["total_users"] != float64(2) {
		t.Errorf("unexpected admin stats %v", admin)
	}

	w = s.do(http.MethodPost, resolve, adminToken, url.Values{"action": {"remove"}})
	expectRedirect(t, w, "/dashboard/", "message", "False advertisement removed.")

	if w = s.do(http.MethodGet, base, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected removed listing to be gone, got %d", w.Code)
	}

	w = s.do(http.MethodPost, fmt.Sprintf("/admin/toggle-user/%d/", renter.ID), adminToken, nil)
	expectRedirect(t, w, "/dashboard/", "message", "User bob has been deactivated.")
	if w = s.do(http.MethodGet, "/dashboard/", renterToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected deactivated user to be rejected, got %d", w.Code)
	}

	w = s.do(http.MethodGet, "/admin/logs/", adminToken, nil)
	logs, _ := decode(t, w)["data"].([]interface{})
	if len(logs) != 2 {
		t.Errorf("expected 2 admin log entries, got %d", len(logs))
	}
}

func TestToggleListingReportedHidesFromSearch(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.user(t, "olivia", models.UserTypeOwner)
	_, adminToken := s.user(t, "root", models.UserTypeAdmin)
	id := s.createListing(t, ownerToken, "Lake view flat", "family", "5000")

	w := s.do(http.MethodPost, fmt.Sprintf("/admin/listing/%d/toggle-reported/", id), adminToken, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if body := decode(t, s.do(http.MethodGet, "/", "", nil)); body["total"] != float64(0) {
		t.Errorf("expected hidden listing, got total %v", body["total"])
	}
	if w = s.do(http.MethodGet, fmt.Sprintf("/listing/%d/", id), "", nil); w.Code != http.StatusOK {
		t.Errorf("expected detail to stay reachable, got %d", w.Code)
	}
}

func TestNotFoundAndUnauthorized(t *testing.T) {
	s := newTestServer(t)
	_, renterToken := s.user(t, "bob", models.UserTypeRenter)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
	}{
		{"non numeric id", http.MethodGet, "/listing/abc/", "", http.StatusNotFound},
		{"missing listing", http.MethodGet, "/listing/42/", "", http.StatusNotFound},
		{"save without token", http.MethodPost, "/listing/1/save/", "", http.StatusUnauthorized},
		{"save missing listing", http.MethodPost, "/listing/42/save/", renterToken, http.StatusNotFound},
		{"dashboard without token", http.MethodGet, "/dashboard/", "", http.StatusUnauthorized},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(tt.method, tt.path, tt.token, nil); w.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}
