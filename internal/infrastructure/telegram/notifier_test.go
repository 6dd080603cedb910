package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
	}))
	defer server.Close()

	n := NewNotifier("token123", "chat42")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), "새 영업 타겟 1건"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotChat != "chat42" {
		t.Errorf("chat_id = %q", gotChat)
	}
	if gotText != "새 영업 타겟 1건" {
		t.Errorf("text = %q", gotText)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if n.Configured() {
		t.Fatal("expected unconfigured")
	}
	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatal("expected error")
	}
}
