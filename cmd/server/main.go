package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"podium/internal/collab"
	"podium/internal/handlers"
	"podium/internal/rating"
	"podium/internal/routers"
	"podium/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key" // Default for development
	}

	seed := time.Now().UnixNano()
	if s := os.Getenv("VISUAL_SEED"); s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			seed = parsed
		}
	}

	store := rating.NewStore(rdb)
	agg := session.NewAggregator(store)
	critique := collab.NewCritiqueClient(os.Getenv("CRITIQUE_URL"))
	visual := collab.NewVisualGenerator(seed)

	h := handlers.NewHandlers(agg, rdb, critique, visual, []byte(secret))
	go h.SubscribeToRatingUpdates()

	router := routers.NewRouter(h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}
	addr := ":" + port

	logger.Info("podium listening",
		zap.String("addr", addr),
		zap.String("redis", redisAddr),
		zap.Bool("critique_configured", critique != nil),
	)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
