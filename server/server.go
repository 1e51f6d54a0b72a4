package server

import (
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"social_post_studio/exporter"
	"social_post_studio/generator"
)

//go:embed web
var embeddedStatic embed.FS

// generateTimeout bounds one generation request. Requests are not cancelled
// when the client goes away.
const generateTimeout = 3 * time.Minute

type Server struct {
	agent       *generator.Agent
	visual      *generator.Visualizer
	logger      *zap.Logger
	store       *sessionStore
	corsOrigins []string
	indexHTML   []byte
	staticFS    http.FileSystem
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// New creates the HTTP server. corsOrigins may be empty to disable CORS.
func New(agent *generator.Agent, visual *generator.Visualizer, logger *zap.Logger, corsOrigins []string) (*Server, error) {
	if agent == nil || visual == nil {
		return nil, errors.New("content and visual generators required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}
	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		agent:       agent,
		visual:      visual,
		logger:      logger,
		store:       newStore(),
		corsOrigins: corsOrigins,
		indexHTML:   index,
		staticFS:    http.FS(sub),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logMiddleware())
	if len(s.corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.corsOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", s.indexHTML)
	})
	r.StaticFS("/static", s.staticFS)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(generator.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/options", s.handleOptions)
		api.POST("/sessions", s.handleSessionCreate)
		api.GET("/sessions/:id", s.handleSessionGet)
		api.POST("/sessions/:id/generate", s.handleGenerate)
	}
	return r
}

// --- Handlers ---

type generateReq struct {
	Idea string `json:"idea"`
	Tone string `json:"tone"`
}

type resultView struct {
	generator.GenerationResult
	AspectRatio generator.AspectRatio `json:"aspect_ratio"`
	HTML        string                `json:"html"`
}

type stateView struct {
	generator.Snapshot
	Results []resultView `json:"results"`
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tones":     generator.Tones,
		"platforms": generator.Profiles(),
	})
}

func (s *Server) handleSessionCreate(c *gin.Context) {
	id := uuid.NewString()
	sess := generator.NewSession(id, s.agent, s.visual, s.logger)
	s.store.set(id, sess)
	c.JSON(http.StatusCreated, s.view(sess.Snapshot()))
}

func (s *Server) handleSessionGet(c *gin.Context) {
	sess, ok := s.store.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, s.view(sess.Snapshot()))
}

// handleGenerate validates the input, then streams every state transition of
// the request as an SSE "state" event until a terminal state is reached.
func (s *Server) handleGenerate(c *gin.Context) {
	sess, ok := s.store.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tone, err := generator.ParseTone(req.Tone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events := make(chan generator.Snapshot, 8)
	err = sess.Start(req.Idea, tone, func(snap generator.Snapshot) { events <- snap })
	switch {
	case errors.Is(err, generator.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, generator.ErrEmptyIdea):
		// 校验失败已记录在 session 中，不发起任何网络请求。
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), generateTimeout)
	go func() {
		defer cancel()
		_ = sess.Run(ctx)
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap := <-events:
			c.SSEvent("state", s.view(snap))
			return !snap.Status.Terminal()
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// --- Helpers ---

func (s *Server) view(snap generator.Snapshot) stateView {
	v := stateView{Snapshot: snap, Results: make([]resultView, 0, len(snap.Results))}
	for _, r := range snap.Results {
		html, err := exporter.RenderHTML(r.Text)
		if err != nil {
			s.logger.Warn("render post html failed", zap.Error(err))
		}
		v.Results = append(v.Results, resultView{
			GenerationResult: r,
			AspectRatio:      r.AspectRatio(),
			HTML:             html,
		})
	}
	return v
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "" {
			path = "/"
		}
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
