package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/quckapp/moderation-service/internal/config"
	"github.com/quckapp/moderation-service/internal/db"
	httpserver "github.com/quckapp/moderation-service/internal/http"
	"github.com/quckapp/moderation-service/internal/moderation"
	"github.com/quckapp/moderation-service/internal/seed"
	"github.com/quckapp/moderation-service/internal/toxicity"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := config.LoadRemote(log); err != nil {
		log.WithError(err).Fatal("Remote config bootstrap failed")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Configuration error")
	}

	gdb, err := db.Connect(cfg.DSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	if err := seed.DefaultRules(gdb, log); err != nil {
		log.WithError(err).Fatal("Rule seeding failed")
	}

	filter, err := moderation.LoadProfanityFilter(cfg.WordlistPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load profanity wordlist")
	}
	log.WithField("words", filter.Size()).Info("Profanity wordlist loaded")

	var classifier toxicity.Classifier
	if cfg.ModelAPIURL != "" {
		classifier = toxicity.NewHTTPClassifier(cfg.ModelAPIURL, cfg.ModelAPIToken, &http.Client{Timeout: cfg.ModelTimeout})
		log.WithField("url", cfg.ModelAPIURL).Info("External toxicity classifier configured")
	} else {
		log.Warn("MODEL_API_URL not set, toxicity scoring uses heuristic fallback")
	}
	scorer := toxicity.NewScorer(classifier, cfg.ToxicityThreshold, log)

	engine := moderation.NewEngine(gdb, scorer, filter, log)
	router := httpserver.NewRouter(gdb, engine, cfg.JWTSecret, log)

	log.WithField("port", cfg.AppPort).Info("Moderation service listening")
	if err := router.Run(":" + cfg.AppPort); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}
