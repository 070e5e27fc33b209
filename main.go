package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huntboard/db"
	"huntboard/genai"
	"huntboard/gqlserver"
	"huntboard/jobs"
	"huntboard/pubsub"
	"huntboard/ratelim"
	"huntboard/rdx"
	"huntboard/schema"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// Referrer and permissions
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Prevent caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func newBroker() pubsub.Broker {
	if os.Getenv("PUBSUB_DRIVER") == "redis" {
		log.Println("📡 Using redis pub/sub broker")
		return pubsub.NewRedis(rdx.Conn)
	}
	return pubsub.NewMemory()
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	// read port
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	if err := db.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️ Failed to ensure indexes: %v", err)
	}

	// initialize rate limiter
	rateLimiter := ratelim.NewRateLimiter()

	broker := newBroker()
	jobsService := jobs.NewService(jobs.RedisCache{}, jobs.NewJobStreet(), jobs.NewKalibrr())

	gqlSchema, err := schema.New(schema.Deps{
		Broker: broker,
		Jobs:   jobsService,
		AI:     genai.New(),
	})
	if err != nil {
		log.Fatalf("❌ Failed to build schema: %v", err)
	}
	server := gqlserver.New(gqlSchema)

	router := httprouter.New()
	router.GET("/health", Index)
	router.POST("/graphql", rateLimiter.Limit(server.GraphQL))
	router.GET("/subscriptions", server.Subscriptions)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	// create HTTP server
	httpServer := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	httpServer.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down broker...")
		broker.Close()
	})

	// start server
	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	// initiate graceful shutdown
	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if err := db.Client.Disconnect(ctx); err != nil {
		log.Printf("⚠️ Mongo disconnect error: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
