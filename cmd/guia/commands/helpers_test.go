// ABOUTME: Test helpers for running commands against a fake OpenAI endpoint
// ABOUTME: The fake answers embeddings with letter counts and chat with scripted replies

package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode"
)

// fakeOpenAI serves /embeddings and /chat/completions
type fakeOpenAI struct {
	mu        sync.Mutex
	replies   []string // chat replies in call order; the last one repeats
	chatCalls  int
	chatBodies []string
	embedded   int
}

func (f *fakeOpenAI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			var req struct {
				Input []string `json:"input"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("bad embeddings request: %v", err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data := make([]map[string]any, len(req.Input))
			for i, text := range req.Input {
				data[i] = map[string]any{"object": "embedding", "index": i, "embedding": letterVector(text)}
			}
			f.mu.Lock()
			f.embedded += len(req.Input)
			f.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "fake"})

		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			f.mu.Lock()
			reply := f.replies[min(f.chatCalls, len(f.replies)-1)]
			f.chatCalls++
			f.chatBodies = append(f.chatBodies, string(body))
			f.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "chatcmpl-test",
				"object": "chat.completion",
				"model":  "fake",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				}},
			})

		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeOpenAI) chats() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

func (f *fakeOpenAI) embeddedTexts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedded
}

func (f *fakeOpenAI) chatBody(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.chatBodies) {
		return ""
	}
	return f.chatBodies[i]
}

func letterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		} else if unicode.IsDigit(r) {
			v[0] += 0.1
		}
	}
	v[25] += 0.01 // never all zeros
	return v
}

// useFakeOpenAI points the commands at a fake provider
func useFakeOpenAI(t *testing.T, replies ...string) *fakeOpenAI {
	t.Helper()
	fake := &fakeOpenAI{replies: replies}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")
	t.Setenv("GUIA_INDEX", "memory")
	return fake
}

// runRoot executes the root command with args and stdin
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
