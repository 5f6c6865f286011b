package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubConverter struct {
	data     []byte
	err      error
	lastName string
	calls    int
}

func (s *stubConverter) Convert(ctx context.Context, content []byte, filename string) ([]byte, error) {
	s.calls++
	s.lastName = filename
	return s.data, s.err
}

func TestConvertHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pdfData := []byte("%PDF-1.4 rendered")
	stub := &stubConverter{data: pdfData}

	router := gin.New()
	router.POST("/api/convert", ConvertHandler(stub))

	body := bytes.NewBufferString(`{"html": "<p>hi</p>"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), pdfData) {
		t.Fatalf("unexpected body: %q", rec.Body.Bytes())
	}
	if stub.calls != 1 {
		t.Fatalf("expected 1 convert call, got %d", stub.calls)
	}
}

func TestConvertHandlerConversionFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubConverter{err: newError("レンダリングに失敗しました", "trace detail", nil)}

	router := gin.New()
	router.POST("/api/convert", ConvertHandler(stub))

	body := bytes.NewBufferString(`{"html": "<p>hi</p>"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload["code"] != "CONVERSION_FAILED" {
		t.Fatalf("unexpected code: %s", payload["code"])
	}
}

func TestConvertHandlerInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubConverter{}

	router := gin.New()
	router.POST("/api/convert", ConvertHandler(stub))

	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("converter should not be called, got %d calls", stub.calls)
	}
}
