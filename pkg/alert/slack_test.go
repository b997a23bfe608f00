package alert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotifyPostsPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	Configure(srv.URL)
	t.Cleanup(func() { Configure("") })

	if err := Notify("[ERROR] something broke"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got.Text != "[ERROR] something broke" {
		t.Fatalf("unexpected payload text %q", got.Text)
	}
}

func TestNotifyWithoutWebhookIsNoop(t *testing.T) {
	Configure("")
	if err := Notify("ignored"); err != nil {
		t.Fatalf("expected nil without a webhook, got %v", err)
	}
}

func TestNotifyReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	Configure(srv.URL)
	t.Cleanup(func() { Configure("") })

	if err := Notify("boom"); err == nil {
		t.Fatal("expected an error for a failing webhook")
	}
}
