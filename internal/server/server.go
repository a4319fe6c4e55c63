package server

import (
	"net/http"

	"art-trainer/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store     *Store
	db        *gorm.DB
	cfg       config.Config
	sessions  *sessionStore
	generator *imageGenerator
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	srv := &Server{
		store:    NewStore(conn),
		db:       conn,
		cfg:      cfg,
		sessions: newSessionStore(conn),
	}
	if cfg.GeneratorURL != "" {
		srv.generator = newImageGenerator(cfg)
	}
	return srv
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /whoami", s.handleWhoAmI)
	mux.HandleFunc("GET /my-drawings", s.handleMyDrawings)
	mux.HandleFunc("POST /upload-drawing", s.handleUploadDrawing)
	mux.HandleFunc("POST /rename-drawing", s.handleRenameDrawing)
	mux.HandleFunc("DELETE /delete-drawing/{id}", s.handleDeleteDrawing)
	mux.HandleFunc("GET /api/get_community_posts", s.handleListPosts)
	mux.HandleFunc("POST /api/create_post", s.handleCreatePost)
	mux.HandleFunc("POST /api/like_post/{id}", s.handleLikePost)
	mux.HandleFunc("POST /api/comment_post/{id}", s.handleCommentPost)
	mux.HandleFunc("DELETE /api/delete_post/{id}", s.handleDeletePost)
	mux.HandleFunc("POST /api/generate_reference", s.handleGenerateReference)
	mux.Handle("GET /generated/", http.StripPrefix("/generated/", http.FileServer(http.Dir(s.cfg.GeneratedImageDir))))
	return mux
}
