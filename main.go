package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/api"
	"taskdeck-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	usersTable := os.Getenv("USERS_TABLE")
	projectsTable := os.Getenv("PROJECTS_TABLE")
	tasksTable := os.Getenv("TASKS_TABLE")
	activityQueue := os.Getenv("ACTIVITY_QUEUE")
	if connStr == "" || usersTable == "" || projectsTable == "" || tasksTable == "" || activityQueue == "" {
		log.Fatal("missing storage config")
	}

	store, err := storage.New(connStr, usersTable, projectsTable, tasksTable, activityQueue)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		log.Fatalf("storage init: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing JWT_SECRET")
	}
	tokenTTL := time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid JWT_TTL: %v", err)
		}
		tokenTTL = d
	}
	var jwks *keyfunc.JWKS
	if idpDomain := os.Getenv("IDP_DOMAIN"); idpDomain != "" {
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", idpDomain)
		jwks, err = keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
	}
	auth := api.NewAuth([]byte(secret), tokenTTL, jwks)

	pageSize := 10
	if v := os.Getenv("PROJECTS_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid PROJECTS_PAGE_SIZE: %v", err)
		}
		if n <= 0 {
			log.Fatalf("invalid PROJECTS_PAGE_SIZE: must be greater than zero")
		}
		pageSize = n
	}

	var apiStore api.Store = store
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			parts := strings.Split(redisConn, ",")
			redisOpts = &redis.Options{Addr: parts[0]}
			for _, p := range parts[1:] {
				kv := strings.SplitN(p, "=", 2)
				if len(kv) != 2 {
					continue
				}
				switch strings.ToLower(kv[0]) {
				case "password":
					redisOpts.Password = kv[1]
				case "ssl":
					if strings.ToLower(kv[1]) == "true" {
						redisOpts.TLSConfig = &tls.Config{}
					}
				}
			}
		}
		rc := redis.NewClient(redisOpts)
		cacheTTL := 5 * time.Minute
		if v := os.Getenv("TASKS_CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid TASKS_CACHE_TTL: %v", err)
			}
			cacheTTL = d
		}
		apiStore = storage.NewCache(store, rc, cacheTTL)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("taskdeck"))
	e.GET("/metrics", echoprometheus.NewHandler())

	logger := log.New()
	api.Register(e, apiStore, auth, pageSize, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
