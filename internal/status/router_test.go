package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

func testJournal(t *testing.T) (*engine.Journal, *engine.Report) {
	t.Helper()
	j, err := engine.OpenJournal(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })

	fake := sysexec.NewFake()
	fake.Script("lsof", sysexec.Result{Status: 1})
	e := engine.New(zap.NewNop(), fake, engine.WithJournal(j),
		engine.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }))

	cfg := config.Default()
	cfg.Set("hostname", "kiosk-test")
	cfg.Set("user_name", "kiosk")
	report, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return j, report
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j, _ := testJournal(t)
	w := get(t, NewRouter(j, "1.0.0"), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStatusReturnsLatestRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j, report := testJournal(t)

	w := get(t, NewRouter(j, "1.0.0"), "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var body struct {
		RunID   string `json:"run_id"`
		Success bool   `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RunID != report.ID || !body.Success {
		t.Fatalf("unexpected summary: %+v", body)
	}
}

func TestReportsListsEveryJournaledRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j, report := testJournal(t)

	w := get(t, NewRouter(j, "1.0.0"), "/reports")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var body []struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 1 || body[0].RunID != report.ID {
		t.Fatalf("unexpected run list: %+v", body)
	}
}

func TestReportByID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j, report := testJournal(t)
	router := NewRouter(j, "1.0.0")

	if w := get(t, router, "/report/"+report.ID); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w := get(t, router, "/report/no-such-run"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d", w.Code)
	}
}
