package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/contactbook/internal/contact/application"
	"github.com/wyfcoding/contactbook/internal/contact/infrastructure/messaging"
	"github.com/wyfcoding/contactbook/internal/contact/infrastructure/persistence/memory"
	"github.com/wyfcoding/contactbook/pkg/metrics"
)

type contactBody struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email"`
	GroupName     *string `json:"group_name"`
	IsBlacklisted bool    `json:"is_blacklisted"`
	Note          *string `json:"note"`
	CreatedAt     string  `json:"created_at"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := memory.NewContactRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := application.NewContactService(repo, messaging.NewNopPublisher(), logger)
	handler := NewContactHandler(service, metrics.New("test"))

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeContact(t *testing.T, w *httptest.ResponseRecorder) contactBody {
	t.Helper()
	var c contactBody
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode contact: %v (body: %s)", err, w.Body.String())
	}
	return c
}

func TestContactLifecycle(t *testing.T) {
	r := newTestRouter()

	// 创建
	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{
		"name":  "Alice",
		"phone": "555-000-1111",
		"email": "a@x.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("POST: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	created := decodeContact(t, w)
	if created.ID == 0 {
		t.Fatal("POST: expected a generated id")
	}
	if created.Phone != "5550001111" {
		t.Fatalf("POST: phone not normalized: %q", created.Phone)
	}

	// 详情
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", w.Code)
	}
	got := decodeContact(t, w)
	if got.Name != "Alice" || got.Email == nil || *got.Email != "a@x.com" || got.IsBlacklisted {
		t.Fatalf("GET: unexpected body: %+v", got)
	}

	// 更新
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/contacts/%d", created.ID), gin.H{
		"name":  "Alice B.",
		"phone": "5550001111",
		"email": "a@x.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if updated := decodeContact(t, w); updated.Name != "Alice B." {
		t.Fatalf("PUT: name not updated: %+v", updated)
	}

	// 无请求体 PATCH = 翻转
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/contacts/%d/blacklist", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var toggled struct {
		ID            uint `json:"id"`
		IsBlacklisted bool `json:"is_blacklisted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("PATCH: decode body: %v", err)
	}
	if toggled.ID != created.ID || !toggled.IsBlacklisted {
		t.Fatalf("PATCH: unexpected body: %+v", toggled)
	}

	// 删除
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE: expected 204, got %d", w.Code)
	}

	// 删除后详情 404
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete: expected 404, got %d", w.Code)
	}

	// 重复删除 404 而非 500
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second DELETE: expected 404, got %d", w.Code)
	}
}

func TestValidationFailureListsEveryViolation(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{
		"phone": "123",
		"email": "not-an-email",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}

	var body struct {
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "Validation failed" {
		t.Fatalf("unexpected message: %q", body.Message)
	}

	// 校验必须穷尽：三条规则同时违反，三条明细同时返回
	fields := make(map[string]bool)
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	for _, want := range []string{"name", "phone", "email"} {
		if !fields[want] {
			t.Fatalf("missing detail for %q, got %+v", want, body.Details)
		}
	}
}

func TestUnknownFieldsAreDropped(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{
		"name":    "Alice",
		"phone":   "555-000-1111",
		"unknown": "ignored",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpsertSamePhoneReturnsSameRow(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Alice", "phone": "555-000-1111"})
	first := decodeContact(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Alice B.", "phone": "(555) 000-1111", "note": "updated"})
	if w.Code != http.StatusOK {
		t.Fatalf("second POST: expected 200, got %d", w.Code)
	}
	second := decodeContact(t, w)

	if second.ID != first.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Name != "Alice B." || second.Note == nil || *second.Note != "updated" {
		t.Fatalf("fields not overwritten: %+v", second)
	}
}

func TestUpdatePhoneConflictIs409(t *testing.T) {
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Alice", "phone": "555-000-1111"})
	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Bob", "phone": "555-000-2222"})
	bob := decodeContact(t, w)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/contacts/%d", bob.ID), gin.H{
		"name":  "Bob",
		"phone": "(555) 000-1111",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%s)", w.Code, w.Body.String())
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "Phone already exists" {
		t.Fatalf("unexpected message: %q", body.Message)
	}

	// 存储未被写穿
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/contacts/%d", bob.ID), nil)
	if got := decodeContact(t, w); got.Phone != "5550002222" {
		t.Fatalf("conflicting update wrote through: %+v", got)
	}
}

func TestBlacklistedFilterTokens(t *testing.T) {
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Flagged", "phone": "555-000-1111", "is_blacklisted": true})
	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Clean", "phone": "555-000-2222"})

	decodeList := func(w *httptest.ResponseRecorder) []contactBody {
		var list []contactBody
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode list: %v (body: %s)", err, w.Body.String())
		}
		return list
	}

	// 真值 token 只返回已拉黑
	for _, token := range []string{"true", "1", "yes", "on"} {
		w := doJSON(t, r, http.MethodGet, "/api/contacts?blacklisted="+token, nil)
		list := decodeList(w)
		if len(list) != 1 || list[0].Name != "Flagged" {
			t.Fatalf("token %q: unexpected rows %+v", token, list)
		}
	}

	// 其余任何取值都按 false 处理
	for _, token := range []string{"false", "0", "no", "whatever"} {
		w := doJSON(t, r, http.MethodGet, "/api/contacts?blacklisted="+token, nil)
		list := decodeList(w)
		if len(list) != 1 || list[0].Name != "Clean" {
			t.Fatalf("token %q: unexpected rows %+v", token, list)
		}
	}

	// 参数缺省时不过滤
	w := doJSON(t, r, http.MethodGet, "/api/contacts", nil)
	if list := decodeList(w); len(list) != 2 {
		t.Fatalf("expected 2 rows without filter, got %d", len(list))
	}
}

func TestGroupsEndpoint(t *testing.T) {
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "A", "phone": "555-000-0001", "group_name": "work"})
	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "B", "phone": "555-000-0002", "group_name": "friends"})
	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "C", "phone": "555-000-0003", "group_name": "work"})
	doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "D", "phone": "555-000-0004"})

	w := doJSON(t, r, http.MethodGet, "/api/contacts/groups", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var groups []string
	if err := json.Unmarshal(w.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 2 || groups[0] != "friends" || groups[1] != "work" {
		t.Fatalf("unexpected groups: %v", groups)
	}
}

func TestPatchWithExplicitValue(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/contacts", gin.H{"name": "Alice", "phone": "555-000-1111"})
	alice := decodeContact(t, w)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/contacts/%d/blacklist", alice.ID), gin.H{"is_blacklisted": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var body struct {
		IsBlacklisted bool `json:"is_blacklisted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.IsBlacklisted {
		t.Fatal("explicit set did not apply")
	}
}

func TestPatchMissingIDIs404(t *testing.T) {
	r := newTestRouter()

	// 翻转路径：flip 静默无操作，回查暴露 404
	w := doJSON(t, r, http.MethodPatch, "/api/contacts/42/blacklist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("toggle: expected 404, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/contacts/42/blacklist", gin.H{"is_blacklisted": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("explicit set: expected 404, got %d", w.Code)
	}
}

func TestInvalidIDIs400(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/contacts/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestMalformedJSONIs400(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}
