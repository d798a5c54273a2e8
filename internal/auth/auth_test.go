package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

func init() {
	HashCost = bcrypt.MinCost
}

func newTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tk, err := NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tk.now = func() time.Time { return now }
	return tk
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Now()
	tk := newTokens(t, now)
	raw, err := tk.Issue(core.User{UID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	id, err := tk.Verify(raw)
	if err != nil {
		t.Fatal(err)
	}
	if id != (Identity{UID: "u1", Email: "a@example.com"}) {
		t.Fatalf("identity %+v", id)
	}

	tk.now = func() time.Time { return now.Add(61 * time.Minute) }
	if _, err := tk.Verify(raw); !errors.Is(err, core.ErrAuthentication) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	tk := newTokens(t, time.Now())
	other, _ := NewTokens("other-secret", time.Hour)
	raw, _ := other.Issue(core.User{UID: "u1"})

	for name, tok := range map[string]string{"wrong secret": raw, "garbage": "abc.def.ghi", "empty": ""} {
		if _, err := tk.Verify(tok); !errors.Is(err, core.ErrAuthentication) {
			t.Errorf("%s: got %v", name, err)
		}
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour); err == nil {
		t.Fatal("expected error")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret") || CheckPassword(hash, "nope") {
		t.Fatal("password check mismatch")
	}
}

func TestMiddleware(t *testing.T) {
	tk := newTokens(t, time.Now())
	good, _ := tk.Issue(core.User{UID: "u1", Email: "a@example.com"})

	h := Middleware(tk)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			t.Error("identity missing")
		}
		w.Write([]byte(id.UID))
	}))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, msgNoToken},
		{"not bearer", "Basic abc", http.StatusUnauthorized, msgNoToken},
		{"invalid", "Bearer nope", http.StatusUnauthorized, msgInvalidToken},
		{"valid", "Bearer " + good, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + good, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK {
				if rec.Body.String() != "u1" {
					t.Fatalf("body %q", rec.Body.String())
				}
				return
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tc.body {
				t.Fatalf("error %q, want %q", body["error"], tc.body)
			}
		})
	}
}
