package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/pumplog/internal/api"
	"github.com/claude/pumplog/internal/form"
	"github.com/claude/pumplog/internal/models"
	"github.com/go-chi/chi/v5"
)

// fakeService mimics the training service's REST surface with a chi
// router, the same router the real service uses, so the paths and error
// bodies match the contract.
type fakeService struct {
	router   chi.Router
	sessions map[string]models.TrainingSession
	nextID   int
	lastAuth string
}

func newFakeService() *fakeService {
	f := &fakeService{
		router:   chi.NewRouter(),
		sessions: map[string]models.TrainingSession{},
		nextID:   1,
	}

	f.router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-" + creds.Email})
	})
	f.router.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"access_token": "tok-new"})
	})
	f.router.Post("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"resetUrl": "https://service.example/reset?token=r1"})
	})

	f.router.Route("/trainings", func(r chi.Router) {
		r.Use(f.bearerAuth)
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			out := make([]models.TrainingSession, 0, len(f.sessions))
			for _, s := range f.sessions {
				out = append(out, s)
			}
			writeJSON(w, http.StatusOK, out)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var values models.FormValues
			if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON"})
				return
			}
			s := values.Session("sess-1")
			f.sessions[s.ID] = s
			writeJSON(w, http.StatusCreated, s)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			s, ok := f.sessions[chi.URLParam(r, "id")]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Session not found"})
				return
			}
			writeJSON(w, http.StatusOK, s)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, ok := f.sessions[id]; !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Session not found"})
				return
			}
			var values models.FormValues
			if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON"})
				return
			}
			s := values.Session(id)
			f.sessions[id] = s
			writeJSON(w, http.StatusOK, s)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, ok := f.sessions[id]; !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Session not found"})
				return
			}
			delete(f.sessions, id)
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return f
}

func (f *fakeService) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		f.lastAuth = auth
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, opts ...api.Option) (*api.Client, *fakeService) {
	t.Helper()
	f := newFakeService()
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, opts...), f
}

// TestLoginReturnsToken verifies a successful login yields the issued
// bearer token.
func TestLoginReturnsToken(t *testing.T) {
	client, _ := newTestClient(t)
	token, err := client.Login(context.Background(), "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-alice@example.com" {
		t.Errorf("token = %q", token)
	}
}

// TestLoginErrorUsesServiceMessage verifies the error body's message
// field is surfaced verbatim when present.
func TestLoginErrorUsesServiceMessage(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid credentials" {
		t.Errorf("error = %q, want the service's message", err.Error())
	}
}

// TestGenericFallbackWithoutMessage verifies a failure with no message
// field falls back to the operation's generic string.
func TestGenericFallbackWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.WithToken("tok"))
	_, err := client.ListTrainings(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "Failed to fetch sessions") {
		t.Errorf("error = %q, want generic fallback", err.Error())
	}
}

// TestProtectedEndpointWithoutToken verifies ErrNoAuth is returned
// before any request goes out when no token is held.
func TestProtectedEndpointWithoutToken(t *testing.T) {
	client, f := newTestClient(t)
	_, err := client.ListTrainings(context.Background())
	if !errors.Is(err, api.ErrNoAuth) {
		t.Fatalf("error = %v, want ErrNoAuth", err)
	}
	if f.lastAuth != "" {
		t.Error("request reached the service despite missing token")
	}
}

// TestBearerTokenAttached verifies the Authorization header carries the
// held token on protected calls.
func TestBearerTokenAttached(t *testing.T) {
	client, f := newTestClient(t, api.WithToken("tok-123"))
	if _, err := client.ListTrainings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.lastAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", f.lastAuth)
	}
}

// TestDeleteTraining verifies delete succeeds on 204 and surfaces the
// service message on a missing id.
func TestDeleteTraining(t *testing.T) {
	client, f := newTestClient(t, api.WithToken("tok"))
	f.sessions["sess-9"] = models.TrainingSession{ID: "sess-9"}

	if err := client.DeleteTraining(context.Background(), "sess-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.DeleteTraining(context.Background(), "sess-9"); err == nil || err.Error() != "Session not found" {
		t.Errorf("second delete error = %v, want service message", err)
	}
}

// TestForgotPasswordReturnsResetURL verifies the reset link handed back
// by the service reaches the caller.
func TestForgotPasswordReturnsResetURL(t *testing.T) {
	client, _ := newTestClient(t)
	resetURL, err := client.ForgotPassword(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetURL != "https://service.example/reset?token=r1" {
		t.Errorf("resetURL = %q", resetURL)
	}
}

// TestNewSessionEndToEnd drives the full flow: build a Monday session in
// the form manager, validate it, submit it, and check the manager adopts
// the service-assigned id.
func TestNewSessionEndToEnd(t *testing.T) {
	client, f := newTestClient(t, api.WithToken("tok"))

	m := form.New()
	if err := m.SetDate("2025-06-02"); err != nil {
		t.Fatal(err)
	}
	if got := m.Values().DayOfWeek; got != "Monday" {
		t.Fatalf("dayOfWeek = %q, want Monday", got)
	}
	if err := m.SetTimeOfDay("07:30"); err != nil {
		t.Fatal(err)
	}
	m.SetGoal("Strength")

	i := m.AddExercise()
	name, tempo := "Bench Press", "3-1-1"
	if err := m.UpdateExercise(i, form.ExercisePatch{Name: &name, Tempo: &tempo}); err != nil {
		t.Fatal(err)
	}
	j, err := m.AddSet(i)
	if err != nil {
		t.Fatal(err)
	}
	reps, weight := 8, 60.0
	if err := m.UpdateSet(i, j, form.SetPatch{Reps: &reps, Weight: &weight}); err != nil {
		t.Fatal(err)
	}

	if vs := m.Validate(); !vs.OK() {
		t.Fatalf("expected acceptance, got %v", vs)
	}

	saved, err := m.Submit(context.Background(), client)
	if err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if saved.ID != "sess-1" || m.ID() != "sess-1" {
		t.Errorf("id = %q / manager %q, want sess-1", saved.ID, m.ID())
	}

	stored := f.sessions["sess-1"]
	if stored.Date != "2025-06-02" || stored.DayOfWeek != "Monday" {
		t.Errorf("stored session = %+v", stored)
	}
	if len(stored.Exercises) != 1 || stored.Exercises[0].Name != "Bench Press" {
		t.Fatalf("stored exercises = %+v", stored.Exercises)
	}
	sets := stored.Exercises[0].Sets
	if len(sets) != 1 || sets[0].Reps != 8 || sets[0].Weight != 60 {
		t.Errorf("stored sets = %+v", sets)
	}
}

// TestUpdateSessionEndToEnd verifies editing a fetched session routes
// through PUT and the service's updated record comes back.
func TestUpdateSessionEndToEnd(t *testing.T) {
	client, f := newTestClient(t, api.WithToken("tok"))
	f.sessions["sess-5"] = models.TrainingSession{
		ID: "sess-5", Date: "2025-06-02", DayOfWeek: "Monday", TimeOfDay: "07:30",
		Goal:      "Strength",
		Exercises: []models.Exercise{{Name: "Squat", Tempo: "3-0-3", Sets: []models.Set{{Reps: 5, Weight: 100}}}},
	}

	fetched, err := client.GetTraining(context.Background(), "sess-5")
	if err != nil {
		t.Fatal(err)
	}

	m := form.Edit(*fetched)
	m.SetGoal("Peaking")
	if _, err := m.Submit(context.Background(), client); err != nil {
		t.Fatalf("submit error: %v", err)
	}

	if got := f.sessions["sess-5"].Goal; got != "Peaking" {
		t.Errorf("stored goal = %q, want Peaking", got)
	}
}
