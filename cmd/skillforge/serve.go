package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/skillforge/internal/config"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/llm"
	"github.com/jonathan/skillforge/internal/server"
	"github.com/jonathan/skillforge/internal/server/ratelimit"
	"github.com/jonathan/skillforge/internal/tracker"
	"github.com/jonathan/skillforge/internal/tutor"
	"github.com/jonathan/skillforge/internal/video"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the learning tracker's REST and event stream endpoints.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		cfg.Port = servePort
	}
	// Fail on missing keys before touching the network.
	if err := cfg.RequireServe(); err != nil {
		return err
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	llmConfig, err := cfg.LLMConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	hub := db.NewHub(64)
	notifier := db.NewNotifier(database, hub, logger)
	go func() {
		if err := notifier.Run(ctx); err != nil {
			logger.Error("change notifier stopped", "error", err)
		}
	}()

	service, closeTutor, err := newTutor(ctx, llmConfig)
	if err != nil {
		return err
	}
	defer closeTutor()

	srv, err := server.New(server.Config{Port: cfg.Port}, server.Deps{
		Tracker:   tracker.New(database, service, nil, logger),
		Users:     database,
		Hub:       hub,
		JWT:       jwtConfig,
		Passwords: passwordConfig,
		RateLimit: ratelimit.LoadConfig(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

// newTutor wires the model invoker and the link searchers into a tutor.
func newTutor(ctx context.Context, llmConfig *llm.Config) (*tutor.Service, func(), error) {
	invoker, err := llm.New(ctx, llmConfig, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}
	searcher, err := video.NewSearcher(ctx, cfg.YouTubeAPIKey, logger)
	if err != nil {
		_ = invoker.Close()
		return nil, nil, fmt.Errorf("failed to create video searcher: %w", err)
	}

	pages, err := video.NewPageSearcher(ctx, cfg.Search.APIKey, cfg.Search.EngineID, logger)
	if err != nil {
		_ = invoker.Close()
		return nil, nil, fmt.Errorf("failed to create web searcher: %w", err)
	}

	resolver := video.NewResolver(searcher, logger, video.WithPageSearcher(pages))
	service := tutor.New(invoker, resolver, logger, tutor.Options{
		QuizQuestions: cfg.Tutor.QuizQuestions,
		Flashcards:    cfg.Tutor.Flashcards,
	})
	return service, func() { _ = invoker.Close() }, nil
}
