// ABOUTME: Hand-written test doubles for the core's external collaborators
// ABOUTME: A bag-of-letters embedder and a recording chat model

package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/harper/guia/internal/models"
)

// letterEmbedder embeds text as counts of the letters a-z, so texts sharing
// letters are similar and results are fully deterministic
type letterEmbedder struct {
	mu         sync.Mutex
	embedCalls int
	batchCalls int
	embedErr   error
	batchErr   error
}

func letterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (e *letterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.embedCalls++
	e.mu.Unlock()
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return letterVector(text), nil
}

func (e *letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batchCalls++
	e.mu.Unlock()
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (e *letterEmbedder) counts() (embed, batch int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embedCalls, e.batchCalls
}

// recordingModel records every conversation and replies from a script
type recordingModel struct {
	mu          sync.Mutex
	calls       [][]models.Message
	opts        []models.ChatOptions
	reply       string
	err         error
	jsonReplies []string
}

func (m *recordingModel) record(msgs []models.Message, opts models.ChatOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.Message, len(msgs))
	copy(cp, msgs)
	m.calls = append(m.calls, cp)
	m.opts = append(m.opts, opts)
}

func (m *recordingModel) Chat(ctx context.Context, msgs []models.Message, opts models.ChatOptions) (string, error) {
	m.record(msgs, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *recordingModel) ChatJSON(ctx context.Context, msgs []models.Message, opts models.ChatOptions, out any) error {
	m.record(msgs, opts)
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	if len(m.jsonReplies) == 0 {
		m.mu.Unlock()
		return errors.New("no scripted json reply")
	}
	next := m.jsonReplies[0]
	m.jsonReplies = m.jsonReplies[1:]
	m.mu.Unlock()
	return json.Unmarshal([]byte(next), out)
}

func (m *recordingModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *recordingModel) lastCall() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
