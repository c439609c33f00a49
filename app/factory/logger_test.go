package factory

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func TestNewModuleLoggerCarriesModuleField(t *testing.T) {
	logger := NewModuleLogger("reservations-controller")
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if entry.Data["module"] != "reservations-controller" {
		t.Fatalf("unexpected module field: %v", entry.Data["module"])
	}
}

func TestLoggerWithContextAddsRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	logger := LoggerWithContext(NewModuleLogger("reservations-controller"), ctx)
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if entry.Data["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id field: %v", entry.Data["request_id"])
	}
}

func TestLoggerWithContextWithoutRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	base := NewModuleLogger("reservations-controller")
	logger := LoggerWithContext(base, ctx)
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if _, present := entry.Data["request_id"]; present {
		t.Fatal("expected no request_id field without the header")
	}
}
