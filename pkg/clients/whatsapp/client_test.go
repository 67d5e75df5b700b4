package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/megg/internal/config"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.42"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "123",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})

	id, err := client.SendText(context.Background(), "15550001111", "hello")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if id != "wamid.42" {
		t.Fatalf("message id = %q", id)
	}
	if gotPath != "/v20.0/123/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody["to"] != "15550001111" || gotBody["messaging_product"] != "whatsapp" {
		t.Fatalf("body = %v", gotBody)
	}
	text, _ := gotBody["text"].(map[string]any)
	if text["body"] != "hello" {
		t.Fatalf("text = %v", gotBody["text"])
	}
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "token", PhoneNumberID: "123", BaseURL: srv.URL, APIVersion: "v20.0"})

	_, err := client.SendText(context.Background(), "1", "hi")
	if err == nil {
		t.Fatal("expected api error")
	}
	if !strings.Contains(err.Error(), "code=100") || !strings.Contains(err.Error(), "Invalid parameter") {
		t.Fatalf("err = %v", err)
	}
}
