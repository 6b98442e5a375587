package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStaticValidator(t *testing.T) {
	validator := NewStaticValidator(map[string]string{
		"alice": "s3cret-a",
		"bob":   "s3cret-b",
	})

	identity, err := validator.Validate(context.Background(), "s3cret-b")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.Name != "bob" {
		t.Errorf("expected bob, got %s", identity.Name)
	}

	for _, token := range []string{"", "s3cret", "s3cret-a ", "S3CRET-A"} {
		if _, err := validator.Validate(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestHTTPValidator_ValidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Token == "valid-token" {
			json.NewEncoder(w).Encode(validateResponse{Valid: true, Name: "alice"})
		} else {
			json.NewEncoder(w).Encode(validateResponse{Valid: false})
		}
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")

	identity, err := validator.Validate(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.Name != "alice" {
		t.Errorf("expected alice, got %s", identity.Name)
	}

	if _, err := validator.Validate(context.Background(), "other-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHTTPValidator_EmptyToken(t *testing.T) {
	validator := NewHTTPValidator("http://localhost:9999", "")
	_, err := validator.Validate(context.Background(), "")

	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestHTTPValidator_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrInvalidToken},
		{"forbidden", http.StatusForbidden, ErrInvalidToken},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"unexpected", http.StatusTeapot, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			validator := NewHTTPValidator(server.URL, "")
			_, err := validator.Validate(context.Background(), "token")

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHTTPValidator_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")
	_, err := validator.Validate(context.Background(), "token")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestHTTPValidator_AdminSecret(t *testing.T) {
	var receivedSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedSecret = r.Header.Get("X-Admin-Secret")
		json.NewEncoder(w).Encode(validateResponse{Valid: true, Name: "test"})
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "my-secret")
	validator.Validate(context.Background(), "token")

	if receivedSecret != "my-secret" {
		t.Errorf("expected admin secret 'my-secret', got '%s'", receivedSecret)
	}
}

func TestHTTPValidator_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")
	_, err := validator.Validate(context.Background(), "token")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for malformed JSON, got %v", err)
	}
}

func TestHTTPValidator_NetworkError(t *testing.T) {
	validator := NewHTTPValidator("http://localhost:1", "")
	_, err := validator.Validate(context.Background(), "token")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for network error, got %v", err)
	}
}

func TestNoopValidator(t *testing.T) {
	validator := NewNoopValidator()
	for _, token := range []string{"any-token", ""} {
		identity, err := validator.Validate(context.Background(), token)
		if err != nil {
			t.Fatalf("noop validator should never error: %v", err)
		}
		if identity != nil {
			t.Error("noop validator should return nil identity")
		}
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"header wins over query", "Bearer abc", "?token=xyz", "abc"},
		{"other scheme", "Basic abc", "", ""},
		{"query fallback", "", "?token=xyz", "xyz"},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/matches"+tt.query, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFrom(ctx) != nil {
		t.Fatal("expected no identity on a bare context")
	}
	ctx = WithIdentity(ctx, &Identity{Name: "alice"})
	if got := IdentityFrom(ctx); got == nil || got.Name != "alice" {
		t.Errorf("expected alice, got %v", got)
	}
}
