package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/contractflow/pkg/httpx"
)

func TestJSON_setsHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("expected nosniff, got %q", xct)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["error"] != "something went wrong" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
	if _, ok := body["details"]; ok {
		t.Error("details must be omitted when empty")
	}
}

func TestJSONErrorDetails(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONErrorDetails(w, http.StatusServiceUnavailable, "store unavailable", "dial tcp: refused")

	var body httpx.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Details != "dial tcp: refused" {
		t.Errorf("unexpected details: %q", body.Details)
	}
}

func TestJSONMessage(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONMessage(w, http.StatusOK, "contract deleted")

	var body httpx.MessageBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !body.Success || body.Message != "contract deleted" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New("pq: connection refused")
	if got := httpx.SafeError(err, http.StatusInternalServerError, true); got != "Internal Server Error" {
		t.Errorf("production 500: got %q", got)
	}
	if got := httpx.SafeError(err, http.StatusInternalServerError, false); got != err.Error() {
		t.Errorf("development 500: got %q", got)
	}
	if got := httpx.SafeError(err, http.StatusConflict, true); got != err.Error() {
		t.Errorf("production 409: got %q", got)
	}
}
