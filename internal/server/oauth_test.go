package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spindle/internal/auth"
)

type stubExchanger struct {
	session *auth.Session
	err     error
	code    string
	state   string
}

func (e *stubExchanger) Exchange(ctx context.Context, code, state string) (*auth.Session, error) {
	e.code = code
	e.state = state
	return e.session, e.err
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback delivers the session", func(t *testing.T) {
		exchanger := &stubExchanger{session: &auth.Session{AccessToken: "tok"}}
		handler := NewOAuthHandler(exchanger)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}
		if exchanger.code != "abc" || exchanger.state != "xyz" {
			t.Errorf("expected code and state to be forwarded, got %s %s", exchanger.code, exchanger.state)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Session == nil || result.Session.AccessToken != "tok" {
			t.Errorf("expected session in result, got %+v", result.Session)
		}
	})

	t.Run("missing code reports the provider error", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{})

		req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&error_description=denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Fatal("expected error result")
		}
		if !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected provider error in result, got %v", result.Error())
		}
	})

	t.Run("exchange failure surfaces through the channel", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{err: errors.New("bad verifier")})

		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "bad verifier") {
			t.Errorf("expected exchange error, got %v", result.Error())
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{session: &auth.Session{AccessToken: "tok"}})

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?code=def", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for replayed callback, got %d", second.Code)
		}
	})

	t.Run("Routes registers the callback path", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{})
		routes := handler.Routes()

		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("expected [/callback], got %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes a registered handler", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewOAuthHandler(&stubExchanger{session: &auth.Session{AccessToken: "tok"}}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("method filtering rejects mismatched verbs", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/submit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("middleware wraps in registration order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "first")
				next.ServeHTTP(w, r)
			})
		})
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "second")
				next.ServeHTTP(w, r)
			})
		})
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		want := []string{"first", "second", "handler"}
		if len(order) != len(want) {
			t.Fatalf("expected %v, got %v", want, order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Errorf("expected %v, got %v", want, order)
				break
			}
		}
	})
}
