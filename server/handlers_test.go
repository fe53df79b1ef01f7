package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/corvid/blog"
	"github.com/corvid-labs/corvid/chunk"
	"github.com/corvid-labs/corvid/config"
	"github.com/corvid-labs/corvid/llm"
	"github.com/corvid-labs/corvid/pipeline"
	"github.com/corvid-labs/corvid/vector"
)

// wordEmbedder maps text to keyword counts so related texts rank closest.
type wordEmbedder struct{}

func (wordEmbedder) Embed(ctx context.Context, text string, task llm.TaskType) ([]float64, error) {
	lower := strings.ToLower(text)
	vocab := []string{"widget", "cost", "gadget"}
	vec := make([]float64, len(vocab)+1)
	vec[0] = 1
	for i, w := range vocab {
		vec[i+1] = float64(strings.Count(lower, w))
	}
	return vec, nil
}

type echoGenerator struct {
	reply   string
	prompts []string
}

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, nil
}

type testEnv struct {
	server  *Server
	handler http.Handler
	gen     *echoGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := blog.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	vectors := vector.NewMemoryStore()
	embedder := wordEmbedder{}
	gen := &echoGenerator{reply: "A generated answer."}

	splitter, err := chunk.New(200, 40)
	require.NoError(t, err)

	ingestor := pipeline.NewIngestor(splitter, embedder, vectors, nil)
	retriever := pipeline.NewRetriever(embedder, vectors, 5, nil)
	composer := pipeline.NewComposer(retriever, gen, true, nil)
	service := blog.NewService(store, ingestor, nil)

	cfg := &config.Config{
		GeminiKeys:    []string{"test-key"},
		VectorBackend: "memory",
		TopK:          5,
		Addr:          ":0",
	}

	srv := New(service, composer, cfg, nil)
	return &testEnv{server: srv, handler: srv.Handler(), gen: gen}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[StatusResponse](t, rec)
	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.Assistant)
	assert.Equal(t, "configured", status.Services["gemini"])
	assert.Equal(t, "not configured", status.Services["pinecone"])
}

func TestChat_RequiresMessage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_NoContext(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "What do widgets cost?"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ChatResponse](t, rec)
	assert.Equal(t, pipeline.MsgNoContext, resp.Response)
}

func TestPublishThenChat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blogs", BlogRequest{
		Title:   "Widget Pricing",
		Content: "<p>Widgets cost $5. They ship worldwide.</p>",
		Status:  "published",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "How much do widgets cost?"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ChatResponse](t, rec)
	assert.Equal(t, "A generated answer.", resp.Response)

	require.NotEmpty(t, env.gen.prompts)
	assert.Contains(t, env.gen.prompts[0], "Widgets cost $5.")
}

func TestBlogCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blogs", BlogRequest{
		Title:    "First Post",
		Content:  "<p>Hello.</p>",
		Category: "notes",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[blog.Blog](t, rec)
	assert.Equal(t, "first-post", created.Slug)
	assert.Equal(t, blog.StatusDraft, created.Status)

	// Drafts are hidden from the public listing.
	rec = env.do(t, http.MethodGet, "/api/blogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]blog.Blog](t, rec))

	rec = env.do(t, http.MethodGet, "/api/blogs/admin/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]blog.Blog](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/blogs/first-post", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[blog.Blog](t, rec).ID)

	rec = env.do(t, http.MethodPut, "/api/blogs/"+created.ID, BlogRequest{
		Title:    "First Post",
		Content:  "<p>Hello again.</p>",
		Category: "notes",
		Status:   "published",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[blog.Blog](t, rec)
	assert.Equal(t, blog.StatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedAt)

	rec = env.do(t, http.MethodGet, "/api/blogs?category=notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]blog.Blog](t, rec), 1)

	rec = env.do(t, http.MethodDelete, "/api/blogs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/blogs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogCreate_Invalid(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/blogs", BlogRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlogGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/blogs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReindex(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blogs", BlogRequest{
		Title:   "Live Post",
		Content: "<p>Widgets cost $5.</p>",
		Status:  "published",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[blog.Blog](t, rec)

	rec = env.do(t, http.MethodPost, "/api/blogs/"+created.ID+"/reindex", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[ReindexResponse](t, rec)
	assert.Equal(t, "success", res.Status)
	assert.Greater(t, res.ChunksProcessed, 0)

	rec = env.do(t, http.MethodPost, "/api/blogs/missing/reindex", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReindex_DraftRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blogs", BlogRequest{Title: "Draft", Content: "<p>x</p>"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[blog.Blog](t, rec)

	rec = env.do(t, http.MethodPost, "/api/blogs/"+created.ID+"/reindex", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "hello widgets"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Operations map[string]struct {
			Count int64 `json:"count"`
		} `json:"operations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.EqualValues(t, 1, snap.Operations["chat"].Count)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/contact", ContactRequest{
		Name: "Ada", Email: "ada@example.com", Message: "Hello there",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode[blog.Contact](t, rec)
	assert.NotEmpty(t, c.ID)

	rec = env.do(t, http.MethodPost, "/api/contact", ContactRequest{Name: "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
