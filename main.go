package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jfontan/parley/internal/auth"
	"github.com/jfontan/parley/internal/config"
	"github.com/jfontan/parley/internal/handlers"
	"github.com/jfontan/parley/internal/middleware"
	"github.com/jfontan/parley/internal/store/sqlstore"
	"github.com/jfontan/parley/internal/ws"
)

var addr = flag.String("addr", "", "http service address (overrides ADDR)")

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Initialize Database
	store, err := sqlstore.New(cfg.DBDriver, cfg.DBSource)
	if err != nil {
		log.Fatal(err)
	}

	tokens := auth.NewTokens(cfg.JWTSecret)

	// Initialize WebSocket Hub
	hub := ws.NewHub(store, tokens)
	go hub.Run()

	// Initialize Handlers
	authHandler := &handlers.AuthHandler{Store: store, Tokens: tokens}
	chatHandler := &handlers.ChatHandler{Store: store}

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	// Auth endpoints
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify", authHandler.Verify).Methods("GET")

	// WebSocket endpoint; the connection authenticates over the socket itself
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	// Authenticated API
	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.Auth(tokens))
	api.HandleFunc("/users", chatHandler.ListUsers).Methods("GET")
	api.HandleFunc("/conversations/{userId}/messages", chatHandler.GetConversation).Methods("GET")
	api.HandleFunc("/conversations/{userId}/read", chatHandler.MarkConversationRead).Methods("PUT")

	log.Println("Starting server on", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, r))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
