package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/config"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/server/handlers"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/session"
)

// Server HTTPサーバ
type Server struct {
	router *gin.Engine
	sess   *session.Session
	api    *handlers.Handlers
}

// NewServer サーバを作る。状態はすべて sess が持ち、ここでは配線だけ行う。
func NewServer(cfg *config.AppConfig, sess *session.Session) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.Default(),
		sess:   sess,
		api:    handlers.NewHandlers(sess),
	}

	s.setupRoutes(devMode)

	return s
}

// setupRoutes ルート設定
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// API ルート
	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	if devMode {
		// 開発モード: フロントエンド開発サーバへ転送
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	} else {
		// 画面は外部 SPA が担うため、API 以外は案内だけ返す
		s.router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API は /api 配下です"})
		})
	}
}

// Run サーバ起動
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// SaveNow 即時に永続化する（終了時用）
func (s *Server) SaveNow() error {
	return s.sess.SaveState()
}

// Session セッションの取得（テスト用）
func (s *Server) Session() *session.Session {
	return s.sess
}
