package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/config"
	"github.com/open-edge-platform/manifest-sync/internal/endpoint"
	"github.com/open-edge-platform/manifest-sync/internal/logger"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
	"github.com/open-edge-platform/manifest-sync/internal/transport"
	"github.com/open-edge-platform/manifest-sync/internal/updater"
)

// sharedCounter lives for the whole process so attempt indices keep
// alternating origins across successive updates.
var sharedCounter endpoint.Counter

const pollInterval = 50 * time.Millisecond

func createUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update PACKAGE VERSION",
		Short: "Synchronize the cached manifest for a package and verify content",
		Args:  cobra.ExactArgs(2),
		RunE:  executeUpdate,
	}
	return cmd
}

func executeUpdate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg := config.GlConfig
	id := manifest.Identity{Name: args[0], Version: args[1]}

	cacheDir, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	co := updater.NewCoordinator(id, updater.Config{
		MainOrigin:     cfg.Origins.Main,
		FallbackOrigin: cfg.Origins.Fallback,
		Timeout:        cfg.Timeout(),
		Workers:        cfg.Workers,
	}, &sharedCounter, transport.NewHTTPRequester(), cache.NewStorage(cacheDir), cache.NewQueryService(cfg.ContentDir))

	bar := progressbar.NewOptions(100,
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(fmt.Sprintf("updating %s", id)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	co.Start()
	for !co.IsDone() {
		co.Update()
		bar.Set(int(co.Progress() * 100))
		if !co.IsDone() {
			time.Sleep(pollInterval)
		}
	}
	bar.Finish()

	if co.Status() == operation.StatusFailed {
		return fmt.Errorf("updating %s: %w", id, co.Err())
	}
	if !co.FoundNewManifest() {
		log.Infof("manifest for %s already current", id)
		return nil
	}
	res := co.VerifyResult()
	log.Infof("new manifest for %s: %d files verified, %d mismatched",
		id, len(res.Succeeded), len(res.Failed))
	return nil
}
