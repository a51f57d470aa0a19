package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/atelier-hq/atelier/pkg/errorbank"
)

func record(t *testing.T, build func(*Builder) error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := build(New(c)); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec, body
}

func TestBuilder_Success(t *testing.T) {
	rec, body := record(t, func(b *Builder) error {
		return b.WithData(map[string]any{"id": 1}).Build()
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if _, ok := body["data"]; !ok {
		t.Error("data missing from envelope")
	}
	if _, ok := body["error"]; ok {
		t.Error("error present in success envelope")
	}
}

func TestBuilder_SuccessWithStatus(t *testing.T) {
	rec, _ := record(t, func(b *Builder) error {
		return b.WithStatus(http.StatusCreated).WithData("ok").Build()
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestBuilder_AppError(t *testing.T) {
	rec, body := record(t, func(b *Builder) error {
		return b.WithError(errorbank.NotFound("order not found",
			errorbank.WithDetail("orderId", 42))).Build()
	})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("error envelope = %T", body["error"])
	}
	if errBody["kind"] != "not_found" {
		t.Errorf("kind = %v, want not_found", errBody["kind"])
	}
	if errBody["message"] != "order not found" {
		t.Errorf("message = %v", errBody["message"])
	}
}

func TestBuilder_PlainErrorBecomesInternal(t *testing.T) {
	rec, body := record(t, func(b *Builder) error {
		return b.WithError(errors.New("boom")).Build()
	})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("error envelope = %T", body["error"])
	}
	if errBody["kind"] != string(errorbank.KindInternal) {
		t.Errorf("kind = %v, want internal", errBody["kind"])
	}
}

func TestBuilder_Meta(t *testing.T) {
	_, body := record(t, func(b *Builder) error {
		return b.WithData([]int{1, 2}).WithMeta("total", 2).Build()
	})
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta envelope = %T", body["meta"])
	}
	if meta["total"] != float64(2) {
		t.Errorf("meta total = %v, want 2", meta["total"])
	}
}

func TestBuilder_Count(t *testing.T) {
	_, body := record(t, func(b *Builder) error {
		items := []string{"a", "b", "c"}
		return b.WithData(items).WithCount(len(items)).Build()
	})
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta envelope = %T", body["meta"])
	}
	if meta["count"] != float64(3) {
		t.Errorf("meta count = %v, want 3", meta["count"])
	}
}
