package watch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// DefaultInterval is how often the catalog file is polled.
const DefaultInterval = 5 * time.Second

// Watcher polls a file for content changes and invokes a reload callback.
// Modification time is checked first so unchanged files are not re-hashed
// on every tick.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func() error

	lastModTime time.Time
	lastHash    [sha256.Size]byte
	hashKnown   bool
}

// NewWatcher creates a watcher for path. onChange runs once per detected
// content change; if it fails, the change stays pending and is retried on
// the next tick.
func NewWatcher(path string, interval time.Duration, onChange func() error) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		path:     path,
		interval: interval,
		onChange: onChange,
	}
}

// Run polls until ctx is cancelled. Poll errors are logged; the loop never
// stops on its own.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the baseline so startup does not count as a change.
	if _, err := w.Check(); err != nil {
		log.Printf("catalog watcher: initial check failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := w.Check()
			if err != nil {
				log.Printf("catalog watcher: %v", err)
				continue
			}
			if changed {
				log.Printf("catalog watcher: %s changed, reloaded", w.path)
			}
		}
	}
}

// Check performs one poll. It returns true when the file content changed
// and the reload callback succeeded.
func (w *Watcher) Check() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", w.path, err)
	}
	if w.hashKnown && info.ModTime().Equal(w.lastModTime) {
		return false, nil
	}

	hash, err := hashFile(w.path)
	if err != nil {
		return false, err
	}
	if w.hashKnown && hash == w.lastHash {
		// Touched but identical content.
		w.lastModTime = info.ModTime()
		return false, nil
	}

	firstSight := !w.hashKnown
	if !firstSight && w.onChange != nil {
		if err := w.onChange(); err != nil {
			// Baseline not advanced, so the change is retried.
			return false, fmt.Errorf("reload of %s failed: %w", w.path, err)
		}
	}

	w.lastModTime = info.ModTime()
	w.lastHash = hash
	w.hashKnown = true
	return !firstSight, nil
}

func hashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte

	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
