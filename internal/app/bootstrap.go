package app

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/acquire"
	"github.com/yourusername/media-grab-go/internal/domain"
	"github.com/yourusername/media-grab-go/internal/infrastructure"
	"github.com/yourusername/media-grab-go/internal/resolver"
	"github.com/yourusername/media-grab-go/pkg/logger"
)

// App holds the fully wired application graph. Both the server and the
// CLI build it through Bootstrap so they share the same strategy chains
// and method order.
type App struct {
	Config   *domain.Config
	Logger   *zap.Logger
	Events   *logger.MultiLogger
	Repo     domain.FetchRequestRepository
	Resolver *resolver.Resolver
	Pipeline *Pipeline
	Worker   *Worker

	repoCloser interface{ Close() error }
}

// Bootstrap wires config, storage, strategies and methods into a ready
// App. progress is optional and only used by the direct download method
// (the CLI passes a progress bar callback, the server passes nil).
func Bootstrap(config *domain.Config, progress infrastructure.ProgressFunc) (*App, error) {
	for _, dir := range []string{
		config.Staging.IncomingDir(),
		config.Staging.CompletedDir(),
		config.Staging.LogsDir(),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
		}
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Staging.LogsDir(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event logger: %w", err)
	}

	if dbDir := filepath.Dir(config.History.DatabasePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	repo, err := infrastructure.NewSQLiteFetchRepository(config.History.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open request history: %w", err)
	}

	client := infrastructure.NewHTTPClient(config.Pipeline.StrategyTimeout)
	extractor := infrastructure.NewExtractor(config.Extractor, config.Staging.LogsDir(), events)
	relay := infrastructure.NewRelayClient(config.Relay.Endpoints, client, log)

	htmlMeta := infrastructure.NewHTMLMetaStrategy(client)
	oembed := infrastructure.NewOEmbedStrategy(client)
	pageData := infrastructure.NewPageDataStrategy(client)
	ytdlp := infrastructure.NewExtractorStrategy(extractor)
	relayStrategy := infrastructure.NewRelayStrategy(relay)
	youtubeNative := infrastructure.NewYouTubeStrategy()

	// Order per platform reflects observed reliability: native clients and
	// embedded page data first, generic extractor next, scraping last.
	chains := map[domain.Platform][]domain.Strategy{
		domain.PlatformInstagram: {pageData, oembed, ytdlp, relayStrategy, htmlMeta},
		domain.PlatformTikTok:    {ytdlp, pageData, oembed, htmlMeta},
		domain.PlatformYouTube:   {youtubeNative, ytdlp, oembed, htmlMeta},
		domain.PlatformPinterest: {pageData, ytdlp, htmlMeta},
	}

	res := resolver.New(chains, config.Pipeline.StrategyTimeout, log)

	// Unlike the resolution client, downloads must not be cut off by the
	// strategy budget; the per-request deadline bounds them instead.
	downloadClient := infrastructure.NewHTTPClient(0)
	methods := []domain.AcquisitionMethod{
		infrastructure.NewDirectMethod(downloadClient, domain.RetryPolicy{
			MaxAttempts: config.Acquire.DirectAttempts,
			Delay:       config.Acquire.DirectDelay,
		}, progress),
		infrastructure.NewExtractorMethod(extractor, domain.RetryPolicy{
			MaxAttempts: config.Acquire.ExtractorAttempts,
			Delay:       config.Acquire.ExtractorDelay,
		}),
		infrastructure.NewRelayMethod(relay, downloadClient, domain.RetryPolicy{
			MaxAttempts: config.Acquire.RelayAttempts,
			Delay:       config.Acquire.RelayDelay,
		}, progress),
	}

	engine := acquire.NewEngine(methods, config.Staging.IncomingDir(), log)
	gate := acquire.NewSizeGate(config.Pipeline.SizeLimit, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	pipeline := NewPipeline(res, engine, gate, repo, notifier, events, log,
		&config.Pipeline, config.Staging.CompletedDir())
	worker := NewWorker(repo, pipeline, &config.Worker, events)

	return &App{
		Config:     config,
		Logger:     log,
		Events:     events,
		Repo:       repo,
		Resolver:   res,
		Pipeline:   pipeline,
		Worker:     worker,
		repoCloser: repo,
	}, nil
}

// Close flushes loggers and closes the history database.
func (a *App) Close() error {
	if a.Events != nil {
		a.Events.Sync()
	}
	if a.Logger != nil {
		a.Logger.Sync()
	}
	if a.repoCloser != nil {
		return a.repoCloser.Close()
	}
	return nil
}
