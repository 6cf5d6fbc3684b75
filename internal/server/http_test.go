package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/shell"
	"github.com/mithrel/inkwell/pkg/api"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

type fixture struct {
	srv   *httptest.Server
	posts db.Posts
}

func newFixture(t *testing.T, gen genFunc) fixture {
	t.Helper()
	cfg := viper.New()
	cfg.Set("render.sanitize", true)
	cfg.Set("history.page_size", 10)
	cfg.Set("clipboard.copied_delay", "1500ms")
	log := logrus.New()
	log.SetOutput(io.Discard)

	posts := db.NewMemStore()
	sess := shell.New(shell.Options{
		Generator: gen,
		Recorder:  &shell.HistoryRecorder{Posts: posts, Provider: "test", Model: "m"},
		Log:       log,
	})
	ts := httptest.NewServer(New(cfg, sess, posts, log).Router())
	t.Cleanup(ts.Close)
	return fixture{srv: ts, posts: posts}
}

func (f fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndexPage(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("form#form input#prompt").Length())
	assert.Equal(t, 1, doc.Find("button#copy").Length())
	assert.Equal(t, "Copied!", doc.Find("#copied").Text())
	script := doc.Find("script").Text()
	assert.Contains(t, script, "copiedDelay")
	assert.Contains(t, script, "1500")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/nope").StatusCode)
}

func TestGenerateReturnsRenderedResult(t *testing.T) {
	f := newFixture(t, func(_ context.Context, prompt string) (string, error) {
		return "## " + prompt + "\n<script>x</script>", nil
	})
	resp := f.post(t, "/api/generate", `{"prompt":"Otters"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[stateResponse](t, resp)
	assert.Equal(t, "result", got.State)
	assert.Equal(t, "## Otters\n<script>x</script>", got.Raw)
	assert.NotEmpty(t, got.PostID)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got.HTML))
	require.NoError(t, err)
	assert.Equal(t, "Otters", doc.Find("h2").Text())
	assert.Zero(t, doc.Find("script").Length())

	st := decode[stateResponse](t, f.get(t, "/api/state"))
	assert.Equal(t, "result", st.State)

	p, err := f.posts.GetPost(context.Background(), got.PostID)
	require.NoError(t, err)
	assert.Equal(t, "Otters", p.Prompt)
}

func TestGenerateFailure(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (string, error) {
		return "", errors.New("")
	})
	got := decode[stateResponse](t, f.post(t, "/api/generate", `{"prompt":"x"}`))
	assert.Equal(t, "error", got.State)
	assert.Equal(t, shell.FallbackMessage, got.Message)
}

func TestGenerateRejectsBlankPrompt(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/generate", `{"prompt":"  "}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/generate", `not json`).StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, f.get(t, "/api/generate").StatusCode)
}

func TestGenerateConflictWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	f := newFixture(t, func(context.Context, string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})

	first := make(chan int, 1)
	go func() {
		resp, err := http.Post(f.srv.URL+"/api/generate", "application/json", strings.NewReader(`{"prompt":"a"}`))
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not start")
	}

	assert.Equal(t, "loading", decode[stateResponse](t, f.get(t, "/api/state")).State)
	assert.Equal(t, http.StatusConflict, f.post(t, "/api/generate", `{"prompt":"b"}`).StatusCode)

	close(release)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestRender(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.post(t, "/api/render", `{"markdown":"* [go](https://go.dev)"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		HTML  string            `json:"html"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Nodes, 1)
	assert.JSONEq(t, `{"t":"List","items":[[{"t":"Link","href":"https://go.dev","c":[{"t":"Text","text":"go"}]}]]}`, string(got.Nodes[0]))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got.HTML))
	require.NoError(t, err)
	href, _ := doc.Find("li a").Attr("href")
	assert.Equal(t, "https://go.dev", href)
}

func TestRenderEmpty(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.post(t, "/api/render", `{"markdown":""}`)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"html":"","nodes":[]}`, string(body))
}

func TestPosts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, err := f.posts.CreatePost(ctx, api.Post{Prompt: "otters", Body: "## Otters\nswim"})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, api.Post{Prompt: "badgers", Body: "dig"})
	require.NoError(t, err)

	list := decode[[]api.Post](t, f.get(t, "/api/posts"))
	assert.Len(t, list, 2)

	found := decode[[]api.Post](t, f.get(t, "/api/posts?q=otters"))
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	one := decode[postResponse](t, f.get(t, "/api/posts/"+a.ID))
	assert.Equal(t, "Otters", one.Title)
	assert.Contains(t, one.HTML, "<h2>Otters</h2>")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/posts/zzz").StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/posts?since=yesterday").StatusCode)

	req, err := http.NewRequest(http.MethodDelete, f.srv.URL+"/api/posts/"+a.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, decode[[]api.Post](t, f.get(t, "/api/posts")), 1)
}
