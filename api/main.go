package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

const version = "1.0.0"

type application struct {
	config  config
	storage storage
	mailer  *mailer
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("AGRIHELP_CONFIG"), "Path to YAML config file")

	// Flags mirror the most commonly overridden config fields; a flag set
	// explicitly on the command line wins over the file value.
	var overrides config
	flag.IntVar(&overrides.Port, "port", 0, "Server port")
	flag.StringVar(&overrides.Env, "env", "", "Environment [development|production]")
	flag.StringVar(&overrides.DB.Engine, "db-engine", "", "Storage engine [memory|sqlite|postgres]")
	flag.StringVar(&overrides.DB.Path, "db-path", "", "SQLite database file")
	flag.StringVar(&overrides.DB.DSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.StringVar(&overrides.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT secret")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = overrides.Port
		case "env":
			cfg.Env = overrides.Env
		case "db-engine":
			cfg.DB.Engine = overrides.DB.Engine
		case "db-path":
			cfg.DB.Path = overrides.DB.Path
		case "db-dsn":
			cfg.DB.DSN = overrides.DB.DSN
		case "jwt-secret":
			cfg.JWTSecret = overrides.JWTSecret
		}
	})
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = os.Getenv("DB_DSN")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}

	if cfg.JWTSecret == "" {
		// Tokens won't survive a restart, but neither does the default
		// memory engine.
		secret := make([]byte, 32)
		_, err = rand.Read(secret[:])
		if err != nil {
			log.Fatal(err)
		}
		cfg.JWTSecret = string(secret)
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("using %s storage", storageEngineName(cfg))

	app := &application{
		config:  cfg,
		storage: store,
		mailer:  newMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.Env, cfg.Port)
	err = srv.ListenAndServe()
	log.Fatal(err)
}

func storageEngineName(cfg config) string {
	if cfg.DB.Engine == "" {
		return engineMemory
	}
	return cfg.DB.Engine
}
