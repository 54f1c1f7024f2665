package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"klsescraper/cache"
	"klsescraper/config"

	"github.com/gorilla/handlers"
)

func main() {
	cfg := config.Load()
	cache.Init(cfg.RedisAddr)

	s := newServer(cfg)

	cors := handlers.CORS(handlers.AllowedOrigins([]string{"*"}))
	logged := handlers.CombinedLoggingHandler(os.Stdout, cors(s.routes()))

	fmt.Printf("Server is running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, logged))
}
