package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/catalog"
	"github.com/zotprof/backend/internal/chat"
	"github.com/zotprof/backend/internal/config"
	"github.com/zotprof/backend/internal/grades"
	httpapi "github.com/zotprof/backend/internal/http"
	"github.com/zotprof/backend/internal/http/handlers"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/ratings"
	"github.com/zotprof/backend/internal/service"
	"github.com/zotprof/backend/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "zotprof-backend").Logger()

	ctx := context.Background()
	sessions, closeSessions, err := session.Open(ctx, session.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DatabaseURL:   cfg.DatabaseURL,
		TTL:           cfg.SessionTTL,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}
	defer closeSessions()

	caches := map[string]handlers.Purger{}

	table, err := ratings.LoadStaticTable(cfg.RatingsTablePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load ratings table")
	}
	var lookup ratings.Lookup = table
	if cfg.RatingsURL != "" {
		remote := &ratings.GraphQLClient{URL: cfg.RatingsURL, SchoolID: cfg.RatingsSchoolID, Auth: cfg.RatingsAuth, Logger: logger}
		cachedLookup := ratings.NewCached(ratings.Fallback{Sources: []ratings.Lookup{remote, table}, Logger: logger}, cfg.RatingsCacheSize, cfg.RatingsCacheTTL)
		caches["ratings"] = cachedLookup
		lookup = cachedLookup
		logger.Info().Str("url", cfg.RatingsURL).Msg("using remote ratings with static fallback")
	} else {
		logger.Info().Int("professors", table.Len()).Msg("using static ratings table")
	}

	rawNarrator, intent := buildNarrator(ctx, cfg, logger, caches)
	narrator := ai.WithFallback(rawNarrator, logger)

	defaultTerm, ok := query.ParseTerm(cfg.DefaultTerm)
	if !ok {
		logger.Warn().Str("term", cfg.DefaultTerm).Msg("invalid DEFAULT_TERM, using Winter 2026")
		defaultTerm = models.Term{Quarter: "Winter", Year: "2026"}
	}

	cat := &catalog.Client{BaseURL: cfg.CatalogURL}
	gradeClient := &grades.Client{BaseURL: cfg.CatalogURL}

	searchAgg := &service.Aggregator{
		Grades:      gradeClient,
		Ratings:     lookup,
		Narrator:    narrator,
		Threshold:   cfg.AlmostFullThreshold,
		Concurrency: cfg.EnrichConcurrency,
		Logger:      logger,
	}
	// Chat plans carry one recommendation per course instead of a narrative per section.
	planAgg := &service.Aggregator{
		Grades:      gradeClient,
		Ratings:     lookup,
		Threshold:   cfg.AlmostFullThreshold,
		Concurrency: cfg.EnrichConcurrency,
		Logger:      logger,
	}

	deps := httpapi.Deps{
		Search: &service.SearchService{
			Catalog:     cat,
			Grades:      gradeClient,
			Ratings:     lookup,
			Narrator:    narrator,
			Aggregator:  searchAgg,
			DefaultTerm: defaultTerm,
			Logger:      logger,
		},
		Intent: ai.IntentWithFallback{Parser: intent, Logger: logger},
		Chat: &chat.Engine{
			Extractor: query.RegexExtractor{},
			Planner:   &service.Planner{Catalog: cat, Aggregator: planAgg, Narrator: narrator, Logger: logger},
			Narrator:  narrator,
			Logger:    logger,
		},
		Sessions: sessions,
		Caches:   caches,
	}

	router := httpapi.Router(cfg, deps, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

// buildNarrator picks the first configured AI backend. The mock narrator
// answers when nothing is configured.
func buildNarrator(ctx context.Context, cfg config.Config, logger zerolog.Logger, caches map[string]handlers.Purger) (ai.Narrator, ai.IntentParser) {
	switch {
	case cfg.AIURL != "":
		logger.Info().Str("url", cfg.AIURL).Msg("using AI narrative service")
		n := ai.HTTPNarrator{BaseURL: cfg.AIURL}
		return n, n
	case cfg.AssistantBaseURL != "":
		logger.Info().Str("model", cfg.AssistantModel).Msg("using OpenAI-compatible assistant")
		n := ai.NewPromptNarrator(&ai.OpenAICompatCompleter{
			BaseURL:   cfg.AssistantBaseURL,
			Model:     cfg.AssistantModel,
			APIKey:    cfg.AssistantAPIKey,
			MaxTokens: cfg.AssistantMaxTokens,
		}, cfg.AICacheTTL)
		caches["ai"] = n
		return n, n
	case cfg.GeminiAPIKey != "":
		g, err := ai.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error().Err(err).Msg("gemini client failed, using mock narrator")
			break
		}
		logger.Info().Str("model", cfg.GeminiModel).Msg("using gemini")
		n := ai.NewPromptNarrator(g, cfg.AICacheTTL)
		caches["ai"] = n
		return n, n
	}
	logger.Info().Msg("using mock AI narrator")
	return ai.MockNarrator{}, ai.MockNarrator{}
}
