package terms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/router"
)

type failingRepo struct{ err error }

func (f failingRepo) Get(context.Context, language.Code) (Terms, error) { return Terms{}, f.err }

func makeApp(repo Repository) *fiber.App {
	app := fiber.New()
	router.Mount(app, NewHandler(NewService(repo), zap.NewNop()).Routes(), nil)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("GET %s failed: %v", target, err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("response is not json: %s", b)
	}
	return res.StatusCode, out
}

func TestGetTerms(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	app := makeApp(NewInMemoryRepository(
		Terms{LanguageCode: language.EN, Content: "Terms", UpdatedAt: updated},
		Terms{LanguageCode: language.SV, Content: "Villkor", UpdatedAt: updated},
	))

	status, body := get(t, app, "/api/terms?lang=sv")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["language_code"] != "sv" || body["content"] != "Villkor" || body["updated_at"] != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected body %v", body)
	}

	status, body = get(t, app, "/api/terms")
	if status != http.StatusOK || body["content"] != "Terms" {
		t.Fatalf("default language: unexpected response %d %v", status, body)
	}
}

func TestGetTerms_InvalidLanguage(t *testing.T) {
	app := makeApp(NewInMemoryRepository())

	status, body := get(t, app, "/api/terms?lang=fr")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Invalid Language" || body["message"] != "Language code must be one of: en, sv" || body["provided"] != "fr" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGetTerms_NotSeeded(t *testing.T) {
	app := makeApp(NewInMemoryRepository(Terms{LanguageCode: language.EN, Content: "Terms"}))

	status, body := get(t, app, "/api/terms?lang=sv")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["error"] != "Not Found" || body["message"] != "Terms content not found for language: sv" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGetTerms_StoreErrors(t *testing.T) {
	status, body := get(t, makeApp(failingRepo{errors.New("relation \"terms\" does not exist")}), "/api/terms")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body["error"] != "Database Error" || body["message"] != `relation "terms" does not exist` {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["hint"]; ok {
		t.Fatalf("non-connectivity error must not carry a hint: %v", body)
	}

	status, body = get(t, makeApp(failingRepo{errors.New("dial tcp: connect: ECONNREFUSED")}), "/api/terms")
	if status != http.StatusInternalServerError || body["hint"] != "Run: sudo systemctl start postgresql" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
}
