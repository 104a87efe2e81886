package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	ru := BuildPrompt([]string{"fix login", "add tests"}, LanguageRU)
	assert.Contains(t, ru, "Проанализируй коммиты")
	assert.Contains(t, ru, "- fix login\n- add tests")

	en := BuildPrompt([]string{"fix login"}, LanguageEN)
	assert.Contains(t, en, "Analyze the task commits")
	assert.Contains(t, en, "- fix login")
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LanguageEN, ParseLanguage(" EN "))
	assert.Equal(t, LanguageRU, ParseLanguage("ru"))
	assert.Equal(t, LanguageRU, ParseLanguage(""))
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProvider(Config{Provider: "Yandex", APIKey: "k", FolderID: "f"})
	require.NoError(t, err)
	assert.Equal(t, "yandex", p.Name())

	_, err = NewProvider(Config{Provider: "yandex"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestOllamaSummarize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen2.5", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "- fix login")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: req.Model, Response: "  Fixed the login form.\n"})
	}))
	defer srv.Close()

	o := NewOllama(Config{Endpoint: srv.URL + "/", Model: "qwen2.5"})
	got, err := o.Summarize(context.Background(), []string{"fix login"}, LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, "Fixed the login form.", got)
}

func TestOllamaRetriesTransientError(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("internal error"))
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "ok"})
	}))
	defer srv.Close()

	o := NewOllama(Config{Endpoint: srv.URL, MaxRetries: 1})
	got, err := o.Summarize(context.Background(), []string{"x"}, LanguageRU)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestOllamaErrors(t *testing.T) {
	t.Parallel()

	t.Run("exhausted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewOllama(Config{Endpoint: srv.URL}).Summarize(context.Background(), []string{"x"}, LanguageRU)
		assert.ErrorIs(t, err, ErrRetryExhausted)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		_, err := NewOllama(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}).
			Summarize(context.Background(), []string{"x"}, LanguageRU)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()

		o := NewOllama(Config{Endpoint: "http://127.0.0.1:1", Timeout: time.Second})
		_, err := o.Summarize(context.Background(), []string{"x"}, LanguageRU)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, o.Available(context.Background()))
	})
}

func TestOllamaAvailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.True(t, NewOllama(Config{Endpoint: srv.URL}).Available(context.Background()))
}

func TestYandexSummarize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foundationModels/v1/completion", r.URL.Path)
		assert.Equal(t, "Api-Key secret", r.Header.Get("Authorization"))
		assert.Equal(t, "b1gfolder", r.Header.Get("x-folder-id"))

		var req yandexRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt://b1gfolder/yandexgpt-lite/latest", req.ModelURI)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Text, "- fix login")

		_, _ = w.Write([]byte(`{"result":{"alternatives":[
			{"message":{"role":"assistant","text":"   "},"status":"ALTERNATIVE_STATUS_FINAL"},
			{"message":{"role":"assistant","text":"Исправлена форма входа."},"status":"ALTERNATIVE_STATUS_FINAL"}
		],"modelVersion":"23.10.2024"}}`))
	}))
	defer srv.Close()

	y := NewYandex(Config{Endpoint: srv.URL, APIKey: "secret", FolderID: "b1gfolder"})
	got, err := y.Summarize(context.Background(), []string{"fix login"}, LanguageRU)
	require.NoError(t, err)
	assert.Equal(t, "Исправлена форма входа.", got)
}

func TestYandexAvailable(t *testing.T) {
	t.Parallel()

	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"result":{"alternatives":[{"message":{"role":"assistant","text":"ok"}}]}}`))
	}))
	defer srv.Close()

	y := NewYandex(Config{Endpoint: srv.URL, APIKey: "secret", FolderID: "b1gfolder"})
	assert.True(t, y.Available(context.Background()))

	status.Store(http.StatusUnauthorized)
	assert.False(t, y.Available(context.Background()))
}

func TestYandexAvailableNeedsCredentials(t *testing.T) {
	t.Parallel()

	assert.False(t, NewYandex(Config{APIKey: "k"}).Available(context.Background()))
	assert.Equal(t, DefaultYandexEndpoint, NewYandex(Config{Endpoint: DefaultOllamaEndpoint}).cfg.Endpoint)
}

type fakeProvider struct {
	available  atomic.Int32
	summarized atomic.Int32
	text       string
	err        error
	got        []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Available(context.Context) bool {
	f.available.Add(1)
	return true
}

func (f *fakeProvider) Summarize(_ context.Context, commits []string, _ Language) (string, error) {
	f.summarized.Add(1)
	f.got = commits
	return f.text, f.err
}

func TestSummarizer(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{text: " done \n"}
	s := NewSummarizer(fp, LanguageEN)

	got, err := s.Summarize(context.Background(), []string{" fix ", "", "  ", "test"})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, []string{"fix", "test"}, fp.got)

	_, err = s.Summarize(context.Background(), []string{"fix", "test"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fp.summarized.Load(), "second call served from cache")

	assert.True(t, s.Available(context.Background()))
	assert.True(t, s.Available(context.Background()))
	assert.Equal(t, int32(1), fp.available.Load())

	s.Invalidate()
	assert.True(t, s.Available(context.Background()))
	assert.Equal(t, int32(2), fp.available.Load())
}

func TestSummarizerErrors(t *testing.T) {
	t.Parallel()

	_, err := NewSummarizer(&fakeProvider{text: "x"}, LanguageRU).Summarize(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewSummarizer(&fakeProvider{text: "  "}, LanguageRU).Summarize(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmptyOutput)

	boom := errors.New("boom")
	fp := &fakeProvider{err: boom}
	s := NewSummarizer(fp, LanguageRU)
	_, err = s.Summarize(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
	_, _ = s.Summarize(context.Background(), []string{"a"})
	assert.Equal(t, int32(2), fp.summarized.Load(), "failures are not cached")
}
