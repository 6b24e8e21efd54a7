package service

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"safeprofile/internal/repository"
	"safeprofile/internal/util"
)

// RetentionWorker periodically removes image directories that no longer
// belong to any stored profile. Deletion is age-gated so a directory written
// moments before its profile row is committed cannot be reaped.
type RetentionWorker struct {
	store      repository.ProfileStore
	imageStore *util.ImageStore
	maxAge     time.Duration
	interval   time.Duration
	stopChan   chan bool
}

func NewRetentionWorker(store repository.ProfileStore, imageStore *util.ImageStore, maxAge time.Duration) *RetentionWorker {
	return &RetentionWorker{
		store:      store,
		imageStore: imageStore,
		maxAge:     maxAge,
		interval:   24 * time.Hour,
		stopChan:   make(chan bool),
	}
}

// Start runs the sweep loop in a goroutine. One sweep happens immediately so
// restarts do not postpone cleanup by a full interval.
func (w *RetentionWorker) Start() {
	if w.imageStore == nil {
		return
	}

	go func() {
		log.Println("Retention worker started")
		w.sweep()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stopChan:
				log.Println("Retention worker stopped")
				return
			case <-ticker.C:
				w.sweep()
			}
		}
	}()
}

// Stop stops the retention worker.
func (w *RetentionWorker) Stop() {
	close(w.stopChan)
}

func (w *RetentionWorker) sweep() {
	ids, err := w.store.ListIDs()
	if err != nil {
		log.Printf("Retention sweep skipped, cannot list profiles: %v", err)
		return
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	entries, err := os.ReadDir(w.imageStore.BaseDir())
	if err != nil {
		log.Printf("Retention sweep skipped, cannot read image directory: %v", err)
		return
	}

	cutoff := time.Now().Add(-w.maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || known[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(w.imageStore.BaseDir(), entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Retention sweep could not remove %s: %v", dir, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("Retention sweep removed %d orphaned image director(ies)", removed)
	}
}
