package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticToken() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func reply(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{}}
}

func TestPutUploadsMedia(t *testing.T) {
	t.Parallel()

	var gotBody string
	client := &Client{
		bucket:      "bucket",
		apiBase:     "http://gcs.test",
		publicBase:  "https://cdn.test/bucket",
		tokenSource: staticToken(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodPost {
				t.Fatalf("expected POST, got %s", req.Method)
			}
			if req.URL.Path != "/upload/storage/v1/b/bucket/o" {
				t.Fatalf("unexpected path %s", req.URL.Path)
			}
			if req.URL.Query().Get("name") != "products/a.jpg" || req.URL.Query().Get("uploadType") != "media" {
				t.Fatalf("unexpected query %s", req.URL.RawQuery)
			}
			if req.Header.Get("Authorization") != "Bearer token" || req.Header.Get("Content-Type") != "image/jpeg" {
				t.Fatalf("unexpected headers %v", req.Header)
			}
			raw, _ := io.ReadAll(req.Body)
			gotBody = string(raw)
			return reply(http.StatusOK, `{"name":"products/a.jpg"}`)
		})},
	}

	url, err := client.Put(context.Background(), "products/a.jpg", "image/jpeg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.test/bucket/products/a.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotBody != "jpeg" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestPutSurfacesUpstreamError(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "bucket",
		apiBase:     "http://gcs.test",
		tokenSource: staticToken(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return reply(http.StatusForbidden, `{"error":"denied"}`)
		})},
	}
	_, err := client.Put(context.Background(), "stores/b.jpg", "image/jpeg", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNoContent, http.StatusNotFound} {
		client := &Client{
			bucket:      "bucket",
			apiBase:     "http://gcs.test",
			tokenSource: staticToken(),
			httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
				if req.Method != http.MethodDelete {
					t.Fatalf("expected DELETE, got %s", req.Method)
				}
				if req.URL.EscapedPath() != "/storage/v1/b/bucket/o/media%2Ffile.jpg" {
					t.Fatalf("unexpected path %s", req.URL.EscapedPath())
				}
				return reply(status, "")
			})},
		}
		if err := client.Delete(context.Background(), "media/file.jpg"); err != nil {
			t.Fatalf("Delete with status %d: %v", status, err)
		}
	}
}

func TestTokenSourceCaches(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		calls++
		return "tok", time.Now().Add(time.Hour), nil
	}}
	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}

func TestSignAssertion(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	signed, err := signAssertion("signer@example.com", defaultTokenURL, key, time.Now())
	if err != nil {
		t.Fatalf("signAssertion: %v", err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience(defaultTokenURL), jwt.WithIssuer("signer@example.com"))
	if err != nil {
		t.Fatalf("verify assertion: %v", err)
	}
	if claims["scope"] != scope {
		t.Fatalf("unexpected scope %v", claims["scope"])
	}
}

func TestNewServiceAccountTokenSourceRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not-json", `{"client_email":"a@b"}`, `{"client_email":"a@b","private_key":"nope"}`} {
		if _, err := newServiceAccountTokenSource(http.DefaultClient, []byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
