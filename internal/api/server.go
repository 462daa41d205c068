package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"showcase/internal/cache"
	"showcase/internal/catalog"
	"showcase/internal/config"
	"showcase/internal/discovery"
	"showcase/internal/metrics"
	"showcase/internal/models"
	"showcase/internal/newsletter"
	"showcase/internal/odata"
	"showcase/internal/pipeline"
	"showcase/internal/security"
	"showcase/internal/session"
	"showcase/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPageSize     = 50
	shutdownTimeout = 10 * time.Second
)

// Dependencies are the services the HTTP layer fronts
type Dependencies struct {
	Store       *catalog.Store
	Sessions    *session.Registry
	Newsletters *cache.Manager
	NewForm     func() *newsletter.Form
}

type Server struct {
	router        *gin.Engine
	store         *catalog.Store
	pipeline      *pipeline.Pipeline
	filters       *odata.FilterParser
	sessions      *session.Registry
	newsletters   *cache.Manager
	newForm       func() *newsletter.Form
	port          int
	pageSize      int
	enableMetrics bool
	swaggerServer *web.SwaggerServer
}

func NewServer(deps Dependencies, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	securityConfig := &security.SecurityConfig{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
		TrustedProxies:        cfg.Security.TrustedProxies,
	}
	security.SetupSecurityMiddleware(router, securityConfig)

	pageSize := cfg.Showcase.PageSize
	if pageSize <= 0 {
		pageSize = pipeline.DefaultPageSize
	}

	server := &Server{
		router:        router,
		store:         deps.Store,
		pipeline:      pipeline.New(),
		filters:       odata.NewFilterParser(),
		sessions:      deps.Sessions,
		newsletters:   deps.Newsletters,
		newForm:       deps.NewForm,
		port:          cfg.Port,
		pageSize:      pageSize,
		enableMetrics: cfg.EnableMetrics,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	if s.enableMetrics {
		s.router.GET("/metrics", metrics.Handler())
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/categories", s.getCategories)
		api.GET("/articles", s.getArticles)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.PUT("/sessions/:id/category", s.setCategory)
		api.PUT("/sessions/:id/search", s.setSearch)
		api.PUT("/sessions/:id/sort", s.setSort)
		api.POST("/sessions/:id/more", s.loadMore)
		api.POST("/sessions/:id/reset", s.resetFilters)
		api.POST("/sessions/:id/retry", s.retry)
		api.POST("/sessions/:id/bookmarks/:article", s.toggleBookmark)
		api.GET("/sessions/:id/articles/:article", s.getArticle)
		api.GET("/sessions/:id/notifications", s.getNotifications)

		api.POST("/newsletter", s.subscribe)
		api.GET("/newsletter/:id", s.getSubscription)
	}

	s.swaggerServer.RegisterRoutes(s.router)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.router.Run(":" + strconv.Itoa(s.port))
}

// StartWithContext serves until ctx is cancelled, then drains in-flight requests
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, discovery.ErrClosed):
		status = http.StatusNotFound
		err = session.ErrNotFound
	case errors.Is(err, discovery.ErrUnknownArticle):
		status = http.StatusNotFound
	case errors.Is(err, discovery.ErrNotReady), errors.Is(err, newsletter.ErrBusy):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "content-showcase",
		"articles": s.store.Len(),
		"sessions": s.sessions.Count(),
	})
}

type categoryCount struct {
	Name  models.Category `json:"name"`
	Count int             `json:"count"`
}

func (s *Server) getCategories(c *gin.Context) {
	counts := s.store.CategoryCounts()
	categories := []categoryCount{{Name: models.CategoryAll, Count: s.store.Len()}}
	for _, category := range models.Categories {
		categories = append(categories, categoryCount{Name: category, Count: counts[category]})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"sort_modes": models.SortModes,
	})
}

// ArticlePage is the response of the stateless listing
type ArticlePage struct {
	Articles  []models.ArticleCard `json:"articles"`
	Total     int                  `json:"total"`
	HasMore   bool                 `json:"has_more"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
	EmptyHint string               `json:"empty_hint,omitempty"`
}

func (s *Server) getArticles(c *gin.Context) {
	category, err := models.ParseCategory(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	sortMode, err := models.ParseSortMode(c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", s.pageSize)
	if pageSize > maxPageSize {
		respondError(c, errors.New("page_size exceeds "+strconv.Itoa(maxPageSize)))
		return
	}

	expr, err := s.filters.Parse(c.Query("$filter"))
	if err != nil {
		respondError(c, err)
		return
	}

	query := pipeline.Query{Category: category, Search: c.Query("q"), Sort: sortMode}
	filtered, err := s.filters.Filter(expr, s.pipeline.Compute(s.store.Articles(), query))
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.QueryResults.Observe(float64(len(filtered)))

	window := pipeline.Window(filtered, page, pageSize)
	resp := ArticlePage{
		Articles: make([]models.ArticleCard, 0, len(window.Visible)),
		Total:    window.Total,
		HasMore:  window.HasMore,
		Page:     window.Page,
		PageSize: window.PageSize,
	}
	for _, a := range window.Visible {
		resp.Articles = append(resp.Articles, a.Card(false))
	}
	if window.Total == 0 {
		resp.EmptyHint = discovery.EmptyHint(category != models.CategoryAll || strings.TrimSpace(query.Search) != "" || expr != nil)
	}

	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}

type sessionResponse struct {
	ID      string         `json:"id"`
	Created time.Time      `json:"created"`
	View    discovery.View `json:"view"`
}

func (s *Server) createSession(c *gin.Context) {
	sess, err := s.sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.SessionsActive.Inc()

	c.JSON(http.StatusCreated, sessionResponse{ID: sess.ID, Created: sess.Created, View: sess.Engine.View()})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: sess.ID, Created: sess.Created, View: sess.Engine.View()})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// mutate applies fn to the session engine and answers with the resulting view
func (s *Server) mutate(c *gin.Context, event string, fn func(e *discovery.Engine) error) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	err := fn(sess.Engine)
	metrics.RecordEvent(event, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Engine.View())
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) setCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	s.mutate(c, "category", func(e *discovery.Engine) error {
		return e.SetCategory(category)
	})
}

type searchRequest struct {
	Query string `json:"query"`
	// Commit applies the query without waiting for the debounce
	Commit bool `json:"commit"`
}

func (s *Server) setSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	s.mutate(c, "search", func(e *discovery.Engine) error {
		if err := e.SetSearch(req.Query); err != nil {
			return err
		}
		if req.Commit {
			return e.CommitSearch()
		}
		return nil
	})
}

type sortRequest struct {
	Sort string `json:"sort"`
}

func (s *Server) setSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	mode, err := models.ParseSortMode(req.Sort)
	if err != nil {
		respondError(c, err)
		return
	}

	s.mutate(c, "sort", func(e *discovery.Engine) error {
		return e.SetSort(mode)
	})
}

func (s *Server) loadMore(c *gin.Context) {
	s.mutate(c, "load_more", func(e *discovery.Engine) error {
		_, err := e.LoadMore()
		return err
	})
}

func (s *Server) resetFilters(c *gin.Context) {
	s.mutate(c, "reset", func(e *discovery.Engine) error {
		return e.ResetFilters()
	})
}

func (s *Server) retry(c *gin.Context) {
	s.mutate(c, "retry", func(e *discovery.Engine) error {
		_, err := e.Retry()
		return err
	})
}

func (s *Server) toggleBookmark(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	article := c.Param("article")
	bookmarked, err := sess.Engine.ToggleBookmark(article)
	metrics.RecordEvent("bookmark", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article":    article,
		"bookmarked": bookmarked,
	})
}

func (s *Server) getArticle(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	detail, err := sess.Engine.Article(c.Param("article"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) getNotifications(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	notifications := sess.Notifications.Drain()
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscriptionResponse struct {
	ID string `json:"id,omitempty"`
	newsletter.Snapshot
}

func newsletterKey(id string) string {
	return "newsletter:" + id
}

func (s *Server) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	form := s.newForm()
	form.SetEmail(req.Email)
	if _, err := form.Submit(); err != nil {
		metrics.NewsletterSubmissions.WithLabelValues("invalid").Inc()
		snapshot := form.Snapshot()
		form.Close()
		c.JSON(http.StatusBadRequest, subscriptionResponse{Snapshot: snapshot})
		return
	}

	id := uuid.NewString()
	if err := s.newsletters.Add(newsletterKey(id), form, 0); err != nil {
		form.Close()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.NewsletterSubmissions.WithLabelValues("accepted").Inc()

	c.JSON(http.StatusAccepted, subscriptionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (s *Server) getSubscription(c *gin.Context) {
	id := c.Param("id")
	value, found := s.newsletters.Get(newsletterKey(id))
	form, ok := value.(*newsletter.Form)
	if !found || !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	c.JSON(http.StatusOK, subscriptionResponse{ID: id, Snapshot: form.Snapshot()})
}
