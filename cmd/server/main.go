// Command server runs the goTOTP authentication service.
//
// Configuration is environment-driven:
//
//	ADDR                listen address (default ":3000")
//	USERS_FILE          JSON user store path (default "users.json")
//	REDIS_ADDR          when set, use Redis instead of the file store
//	STATIC_DIR          directory served at / (default "public", skipped if absent)
//	ISSUER              service name shown in authenticator apps (default "goTOTP")
//	SESSION_SIGNING_KEY when set (>= 32 bytes), session cookies are HS256-signed
//	SECURE_COOKIES      "true" adds Secure and SameSite=Lax to cookies
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	goTOTP "github.com/MrEthical07/goTOTP"
	"github.com/MrEthical07/goTOTP/httpapi"
	"github.com/MrEthical07/goTOTP/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	addr := envString("ADDR", ":3000")

	users, err := buildStore()
	if err != nil {
		log.Fatal("user store:", err)
	}

	cfg := goTOTP.DefaultConfig()
	cfg.Issuer = envString("ISSUER", cfg.Issuer)
	if key := os.Getenv("SESSION_SIGNING_KEY"); key != "" {
		cfg.Session.SigningKey = []byte(key)
	}

	engine, err := goTOTP.New().
		WithConfig(cfg).
		WithUserStore(users).
		WithAuditSink(goTOTP.NewJSONWriterSink(os.Stderr)).
		Build()
	if err != nil {
		log.Fatal("engine build:", err)
	}
	defer engine.Close()

	api := httpapi.New(engine, httpapi.Config{
		StaticDir:     staticDir(),
		SecureCookies: envString("SECURE_COOKIES", "false") == "true",
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on %s", addr)
	log.Fatal(srv.ListenAndServe())
}

func buildStore() (goTOTP.UserStore, error) {
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return store.NewRedis(client, ""), nil
	}
	return store.NewFile(envString("USERS_FILE", "users.json"))
}

func staticDir() string {
	dir := envString("STATIC_DIR", "public")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
