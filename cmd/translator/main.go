package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"turn-translator/internal/config"
	"turn-translator/internal/console"
	"turn-translator/internal/history"
	"turn-translator/internal/integrations/paramstore"
	"turn-translator/internal/repository"
	"turn-translator/internal/speech"
	"turn-translator/internal/storage"
	"turn-translator/internal/summary"
	"turn-translator/internal/translation"
	"turn-translator/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadTranslator()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	// Logs go to stderr so they do not interleave with the conversation.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("translator stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Translator, logger *slog.Logger) error {
	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	kv, closeKV, err := openStorage(ctx, cfg, loadAWS)
	if err != nil {
		return err
	}
	defer closeKV()

	var libreKey string
	if cfg.LibreAPIKeyParam != "" {
		c, err := loadAWS()
		if err != nil {
			return err
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(c))
		if err != nil {
			return err
		}
		if libreKey, err = paramstore.LookupToken(ctx, ssmClient, cfg.LibreAPIKeyParam); err != nil {
			logger.Warn("libretranslate api key unavailable, continuing without it", "err", err)
		}
	}

	stages, err := cfg.Stages(nil, libreKey)
	if err != nil {
		return err
	}
	resolver, err := translation.NewResolver(translation.DefaultDictionary(), stages, translation.WithLogger(logger))
	if err != nil {
		return err
	}

	store, err := history.New(kv,
		history.WithKey(cfg.HistoryKey),
		history.WithCapacity(cfg.HistoryCapacity),
		history.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	player, err := speech.NewConsole(os.Stdout)
	if err != nil {
		return err
	}

	opts := []usecase.SessionOption{
		usecase.WithSessionLogger(logger),
		usecase.WithAutoPlay(cfg.AutoPlay),
	}
	if cfg.SummaryURL != "" {
		client, err := summary.NewClient(cfg.SummaryURL, summary.WithTimeout(cfg.SummaryTimeout))
		if err != nil {
			return err
		}
		opts = append(opts, usecase.WithSummarizer(client))
	}

	session, err := usecase.NewSession(resolver, store, player, cfg.SourceLanguage, cfg.TargetLanguage, opts...)
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return err
	}
	logger.Info("translator ready",
		"source", cfg.SourceLanguage,
		"target", cfg.TargetLanguage,
		"storage", cfg.StorageBackend,
		"providers", len(stages),
	)

	repl, err := console.New(session, os.Stdin, os.Stdout, logger)
	if err != nil {
		return err
	}
	return repl.Run(ctx)
}

func openStorage(ctx context.Context, cfg *config.Translator, loadAWS func() (aws.Config, error)) (storage.KV, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), noop, nil
	case config.BackendFile:
		f, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	case config.BackendDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, nil, err
		}
		s, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(c), cfg.StateTable)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.BackendPostgres:
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s, err := repository.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
