package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/config"
	"github.com/open-edge-platform/manifest-sync/internal/logger"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/verify"
)

func createVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify PACKAGE VERSION",
		Short: "Re-validate local content against the cached manifest",
		Long: `Verify runs the content verification pass alone, against the manifest
already in the local cache. Mismatched files are reported, not treated as an
error; remediation is up to the caller.`,
		Args: cobra.ExactArgs(2),
		RunE: executeVerify,
	}
	return cmd
}

func executeVerify(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg := config.GlConfig
	id := manifest.Identity{Name: args[0], Version: args[1]}

	cacheDir, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}
	storage := cache.NewStorage(cacheDir)

	raw, err := os.ReadFile(storage.ManifestPath(id))
	if err != nil {
		return fmt.Errorf("no cached manifest for %s: %w", id, err)
	}
	d := manifest.NewDeserializer(raw, id)
	d.Start()
	for !d.IsDone() {
		d.Update()
	}
	if d.Err() != nil {
		return fmt.Errorf("cached manifest for %s: %w", id, d.Err())
	}
	m := d.Manifest()

	v := verify.New(m, cache.NewQueryService(cfg.ContentDir), cfg.Workers)
	bar := progressbar.NewOptions(len(m.Files),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(fmt.Sprintf("verifying %s", id)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	v.Start()
	for !v.IsDone() {
		v.Update()
		bar.Set(int(v.Progress() * float64(len(m.Files))))
		if !v.IsDone() {
			time.Sleep(pollInterval)
		}
	}
	bar.Finish()

	res := v.Result()
	if len(res.Failed) == 0 {
		log.Infof("all %d content files match the manifest", len(res.Succeeded))
		return nil
	}

	var merr error
	for _, entry := range res.Failed {
		merr = multierr.Append(merr, fmt.Errorf("%s: hash or size mismatch", entry.Path))
	}
	log.Warnf("%d of %d content files failed verification", len(res.Failed), len(m.Files))
	log.Debugf("verification mismatches: %v", merr)
	return nil
}
