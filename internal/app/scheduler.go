package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/amaumene/syncarr/internal/config"
	"github.com/amaumene/syncarr/internal/service"
	log "github.com/sirupsen/logrus"
)

const snapshotFilePrefix = "snapshot-"

// Scheduler periodically writes a snapshot backup to the snapshot directory
// and prunes old backups beyond the retention count.
type Scheduler struct {
	cfg         *config.Config
	snapshotSvc *service.SnapshotService
}

func NewScheduler(cfg *config.Config, snapshotSvc *service.SnapshotService) *Scheduler {
	return &Scheduler{cfg: cfg, snapshotSvc: snapshotSvc}
}

func (s *Scheduler) RunPeriodically(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.WithField("component", "scheduler").Info("stopping snapshot scheduler")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.writeSnapshot(ctx); err != nil {
		log.WithFields(log.Fields{
			"component": "scheduler",
			"error":     err,
		}).Error("scheduled snapshot failed")
		return
	}

	if err := s.pruneSnapshots(); err != nil {
		log.WithFields(log.Fields{
			"component": "scheduler",
			"error":     err,
		}).Error("snapshot pruning failed")
	}
}

func (s *Scheduler) writeSnapshot(ctx context.Context) error {
	payload, err := s.snapshotSvc.Build(ctx)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.SnapshotDir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	path := s.cfg.SnapshotFilename(time.UnixMilli(payload.ExportedAt))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"component": "scheduler",
		"path":      path,
	}).Info("snapshot written")
	return nil
}

func (s *Scheduler) pruneSnapshots() error {
	entries, err := os.ReadDir(s.cfg.SnapshotDir)
	if err != nil {
		return fmt.Errorf("reading snapshot directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, snapshotFilePrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) <= s.cfg.SnapshotRetain {
		return nil
	}

	// Filenames embed the export time, so lexical order is age order.
	sort.Strings(names)
	for _, name := range names[:len(names)-s.cfg.SnapshotRetain] {
		path := filepath.Join(s.cfg.SnapshotDir, name)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing old snapshot: %w", err)
		}
		log.WithFields(log.Fields{
			"component": "scheduler",
			"path":      path,
		}).Info("pruned old snapshot")
	}
	return nil
}
