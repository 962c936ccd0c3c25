package people

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

// Watcher debounces filesystem changes under the subjects root into a
// rebuild, so edits on disk show up without a manual recover call.
type Watcher struct {
	root     string
	svc      *Service
	log      *logger.Logger
	debounce time.Duration
}

func NewWatcher(root string, svc *Service, baseLog *logger.Logger) *Watcher {
	return &Watcher{
		root:     root,
		svc:      svc,
		log:      baseLog.With("component", "SubjectWatcher"),
		debounce: 2 * time.Second,
	}
}

// Run blocks until ctx is cancelled. Watch errors are logged, never fatal:
// the service keeps serving the last good snapshot.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.root); err != nil {
		return err
	}
	w.log.Info("Watching subjects root", "root", w.root)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", "error", err)
		case <-pending:
			w.log.Info("Subjects root changed, rebuilding index")
			if err := w.svc.Rebuild(ctx); err != nil {
				w.log.Error("Rebuild after change failed", "error", err)
			}
		}
	}
}
