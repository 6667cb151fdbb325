package middleware

import (
	"net/http"
	"testing"
)

func TestEchoOrigin_OnlyWhenOriginPresent(t *testing.T) {
	w := serveWith(t, EchoOrigin(), nil)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("no Origin: expected no ACAO, got %q", got)
	}

	w = serveWith(t, EchoOrigin(), func(r *http.Request) { r.Header.Set("Origin", "https://chat.example") })
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q; want *", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != requestIDHeader {
		t.Fatalf("expose headers = %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("Vary = %q", got)
	}
}
