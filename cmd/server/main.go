package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/steinarvk/brator/internal/auth"
	"github.com/steinarvk/brator/internal/database"
	"github.com/steinarvk/brator/internal/facts"
	"github.com/steinarvk/brator/internal/quiz"
	"github.com/steinarvk/brator/internal/scores"
	"github.com/steinarvk/brator/pkg/cache"
)

func main() {
	// Load .env in development; in production the environment is already set.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without REDIS_ADDR the summary cache is disabled.
	summaryCache := cache.New(os.Getenv("REDIS_ADDR"))

	// Initialize services
	factService := facts.NewService(facts.NewStore(db))
	scoreService, err := scores.NewService(scores.NewStore(db), summaryCache, nil)
	if err != nil {
		log.Fatalf("Failed to configure summarizer: %v", err)
	}
	quizService := quiz.NewService(quiz.NewStore(db), factService, scoreService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	quizHandler := quiz.NewHandler(quizService)
	scoreHandler := scores.NewHandler(scoreService)
	factHandler := facts.NewHandler(factService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/challenge", quizHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenge", quizHandler.DiscardChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{uid}/response", quizHandler.SubmitResponse).Methods("POST")

	protected.HandleFunc("/scores", scoreHandler.GetScores).Methods("GET")
	protected.HandleFunc("/scores/summaries", scoreHandler.GetSummaries).Methods("GET")
	protected.HandleFunc("/scores/largest-batch", scoreHandler.GetLargestBatch).Methods("GET")

	// Admin routes: fact and category management
	protected.HandleFunc("/facts", auth.RequireAdmin(factHandler.ExportFacts)).Methods("GET")
	protected.HandleFunc("/facts", auth.RequireAdmin(factHandler.ImportFacts)).Methods("POST")
	protected.HandleFunc("/categories", auth.RequireAdmin(factHandler.ListCategories)).Methods("GET")
	protected.HandleFunc("/categories", auth.RequireAdmin(factHandler.ImportCategories)).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
