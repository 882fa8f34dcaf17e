// clipforged runs one pipeline stage worker as a long-lived process. Each
// stage runs as its own clipforged instance; coordination between instances
// happens entirely through the shared job store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/worker"
)

func main() {
	var (
		stageName  = flag.String("stage", "", "pipeline stage to serve: script, voiceover, video, or publish")
		configPath = flag.String("config", "", "path to config.toml (defaults to ~/.config/clipforge/config.toml)")
		workerName = flag.String("name", "", "worker identity for claims and heartbeats (defaults to <stage>-<hostname>-<pid>)")
	)
	flag.Parse()

	if err := run(*stageName, *configPath, *workerName); err != nil {
		log.Fatalf("clipforged: %v", err)
	}
}

func run(stageName, configPath, workerName string) error {
	stg, ok := queue.ParseStage(stageName)
	if !ok {
		return fmt.Errorf("unknown stage %q (want script, voiceover, video, or publish)", stageName)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg, fmt.Sprintf("clipforged-%s", stg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// One worker per stage per host. Claim safety across hosts rests on the
	// store's conditional updates; the lock just fails duplicates fast.
	lockPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("clipforged-%s.lock", stg))
	lock := flock.New(lockPath)
	held, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !held {
		return fmt.Errorf("another clipforged --stage %s is already running on this host", stg)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release stage lock", logging.Error(unlockErr))
		}
	}()

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	handler, err := buildHandler(stg, cfg, store, logger)
	if err != nil {
		return err
	}

	w := worker.New(store, handler, logger, worker.Options{
		Name:               workerName,
		PollInterval:       time.Duration(cfg.Workflow.PollInterval) * time.Second,
		ErrorRetryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		HeartbeatInterval:  time.Duration(cfg.Workflow.HeartbeatInterval) * time.Second,
		MaxInFlight:        cfg.Workflow.MaxInFlight,
		FetchBatch:         cfg.Workflow.FetchBatch,
	})

	logger.Info("clipforged starting",
		logging.String(logging.FieldStage, string(stg)),
		logging.Int("pid", os.Getpid()))
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info("clipforged stopped", logging.String(logging.FieldStage, string(stg)))
	return nil
}
