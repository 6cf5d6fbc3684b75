package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/present/format"
	"github.com/mithrel/inkwell/internal/shell"
	"github.com/mithrel/inkwell/pkg/api"
	"github.com/mithrel/inkwell/pkg/markup"
)

// maxBody bounds request bodies for the JSON endpoints.
const maxBody = 1 << 20

// Server serves the browser UI and its JSON API on top of one shell
// session. Only one generation can be in flight across all clients.
type Server struct {
	cfg   *viper.Viper
	sess  *shell.Session
	posts db.Posts
	log   *logrus.Logger
	page  *template.Template
}

func New(cfg *viper.Viper, sess *shell.Session, posts db.Posts, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, sess: sess, posts: posts, log: log, page: pageTemplate}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/posts", s.handleListPosts)
	mux.HandleFunc("/api/posts/", s.handleGetPost)
	return s.logRequests(mux)
}

type pageData struct {
	CopiedDelayMS int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	delay := s.cfg.GetDuration("clipboard.copied_delay")
	if delay <= 0 {
		delay = shell.DefaultCopiedDelay
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, pageData{CopiedDelayMS: delay.Milliseconds()}); err != nil {
		s.log.WithError(err).Error("render index")
	}
}

// stateResponse is the JSON form of a shell.State.
type stateResponse struct {
	State   string `json:"state"`
	Prompt  string `json:"prompt,omitempty"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw,omitempty"`
	HTML    string `json:"html,omitempty"`
	PostID  string `json:"post_id,omitempty"`
}

func (s *Server) toResponse(st shell.State) stateResponse {
	out := stateResponse{State: st.Name()}
	switch st := st.(type) {
	case shell.Loading:
		out.Prompt = st.Prompt
	case shell.Failed:
		out.Prompt = st.Prompt
		out.Message = st.Message
	case shell.Ready:
		out.Prompt = st.Prompt
		out.Raw = st.Raw
		out.HTML = format.SafeHTML(st.Nodes, s.cfg.GetBool("render.sanitize"))
		out.PostID = st.PostID
	}
	return out
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	done, ok := s.sess.Submit(r.Context(), req.Prompt)
	if !ok {
		http.Error(w, "a generation is already in progress", http.StatusConflict)
		return
	}
	select {
	case st := <-done:
		writeJSON(w, http.StatusOK, s.toResponse(st))
	case <-r.Context().Done():
		// The generation keeps running; the client can poll /api/state.
		s.log.WithField("prompt", req.Prompt).Debug("client left before generation finished")
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(s.sess.State()))
}

type renderRequest struct {
	Markdown string `json:"markdown"`
}

type renderResponse struct {
	HTML  string        `json:"html"`
	Nodes []markup.Node `json:"nodes"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	nodes := markup.Render(req.Markdown)
	if nodes == nil {
		nodes = []markup.Node{}
	}
	writeJSON(w, http.StatusOK, renderResponse{
		HTML:  format.SafeHTML(nodes, s.cfg.GetBool("render.sanitize")),
		Nodes: nodes,
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	limit := s.cfg.GetInt("history.page_size")
	if ls := strings.TrimSpace(q.Get("limit")); ls != "" {
		if n, err := strconv.Atoi(ls); err == nil && n > 0 {
			limit = n
		}
	}
	var (
		posts []api.Post
		err   error
	)
	if term := strings.TrimSpace(q.Get("q")); term != "" {
		posts, err = s.posts.SearchPosts(r.Context(), term, limit)
	} else {
		var pq api.PostQuery
		pq.Limit = limit
		if v := q.Get("since"); v != "" {
			if pq.Since, err = time.Parse(time.RFC3339, v); err != nil {
				http.Error(w, "bad since", http.StatusBadRequest)
				return
			}
		}
		posts, err = s.posts.ListPosts(r.Context(), pq)
	}
	if err != nil {
		s.log.WithError(err).Error("list posts")
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []api.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

type postResponse struct {
	api.Post
	Title string `json:"title"`
	HTML  string `json:"html"`
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.posts.GetPost(r.Context(), id)
		if err != nil {
			s.writeLookupError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, postResponse{
			Post:  p,
			Title: p.Title(),
			HTML:  format.SafeHTML(markup.Render(p.Body), s.cfg.GetBool("render.sanitize")),
		})
	case http.MethodDelete:
		p, err := s.posts.GetPost(r.Context(), id)
		if err != nil {
			s.writeLookupError(w, id, err)
			return
		}
		if err := s.posts.DeletePost(r.Context(), p.ID); err != nil {
			s.writeLookupError(w, id, err)
			return
		}
		s.log.WithField("id", p.ID).Info("post deleted")
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) writeLookupError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "post not found", http.StatusNotFound)
	case errors.Is(err, db.ErrAmbiguous):
		http.Error(w, "ambiguous post id", http.StatusConflict)
	default:
		s.log.WithError(err).WithField("id", id).Error("post lookup")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
