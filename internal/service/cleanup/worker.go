package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector reclaims space in an embedded store.
type Collector interface {
	RunGC(discardRatio float64) (int, error)
}

const DefaultDiscardRatio = 0.5

type Worker struct {
	collector Collector
	interval  time.Duration
	log       zerolog.Logger
}

func NewWorker(collector Collector, interval time.Duration, log zerolog.Logger) *Worker {
	return &Worker{collector: collector, interval: interval, log: log}
}

// Run collects once immediately and then every interval until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("background gc worker started")
	w.runCleanup()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("background gc worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *Worker) runCleanup() {
	rewritten, err := w.collector.RunGC(DefaultDiscardRatio)
	if err != nil {
		w.log.Error().Err(err).Msg("value log gc failed")
		return
	}
	if rewritten > 0 {
		w.log.Info().Int("files", rewritten).Msg("value log gc reclaimed space")
	}
}
