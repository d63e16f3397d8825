package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// mockModelServer mimics an OpenAI-compatible chat completions endpoint.
func mockModelServer(t *testing.T, responseContent string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: responseContent}},
			},
		})
	}))
}

// mockFailingServer returns the given HTTP status with an OpenAI-style error body.
func mockFailingServer(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"message":"denied","type":"invalid_request_error"}}`))
	}))
}

func newTestClient(t *testing.T, baseURL string) *VisionClient {
	t.Helper()
	config := DefaultVisionClientConfig()
	config.BaseURL = baseURL
	client, err := NewVisionClient("test-key", config, nil)
	if err != nil {
		t.Fatalf("NewVisionClient failed: %v", err)
	}
	return client
}

func TestNewVisionClientRequiresKey(t *testing.T) {
	if _, err := NewVisionClient("", DefaultVisionClientConfig(), nil); err == nil {
		t.Fatal("empty API key should be rejected")
	}
}

func TestExtractImage(t *testing.T) {
	server := mockModelServer(t, "# Extracted Heading\n\nBody text.")
	defer server.Close()

	client := newTestClient(t, server.URL)
	got, err := client.ExtractImage(context.Background(), []byte("fake-image-bytes"), "extract as markdown")
	if err != nil {
		t.Fatalf("ExtractImage failed: %v", err)
	}
	if got != "# Extracted Heading\n\nBody text." {
		t.Errorf("content = %q", got)
	}
}

func TestExtractImageEmptyImage(t *testing.T) {
	server := mockModelServer(t, "unused")
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.ExtractImage(context.Background(), nil, "extract"); err == nil {
		t.Fatal("empty image should be rejected before any network call")
	}
}

func TestExtractImageEmptyResponse(t *testing.T) {
	server := mockModelServer(t, "")
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ExtractImage(context.Background(), []byte("img"), "extract")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestExtractImageInvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := mockFailingServer(status)
		client := newTestClient(t, server.URL)

		_, err := client.ExtractImage(context.Background(), []byte("img"), "extract")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("status %d: err = %v, want ErrInvalidCredentials", status, err)
		}
		server.Close()
	}
}

func TestExtractImageOtherFailure(t *testing.T) {
	server := mockFailingServer(http.StatusInternalServerError)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ExtractImage(context.Background(), []byte("img"), "extract")
	if err == nil {
		t.Fatal("server error should propagate")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("5xx should not classify as credential failure: %v", err)
	}
}
