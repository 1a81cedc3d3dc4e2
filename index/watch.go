package index

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/satishbabariya/querykit/internal/debug"
	"github.com/satishbabariya/querykit/query/qerr"
)

// watchDebounce coalesces bursts of write events into one reload.
const watchDebounce = 500 * time.Millisecond

// Watcher reloads a file-backed index when its file changes.
type Watcher struct {
	file     string
	onChange func() error
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
}

// Watch starts watching path on the OS filesystem and calls onChange
// after each settled burst of writes. Callers stop it with Stop.
func Watch(path string, onChange func() error) (*Watcher, error) {
	return watchWithDebounce(path, onChange, watchDebounce)
}

func watchWithDebounce(path string, onChange func() error, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, qerr.Wrap(qerr.KindAdapterError, err, "cannot create file watcher")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, qerr.Wrap(qerr.KindInvalidValue, err, "cannot resolve %s", path)
	}

	// Watch the parent directory: editors often replace the file
	// instead of writing it in place.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, qerr.Wrap(qerr.KindAdapterError, err, "cannot watch %s", filepath.Dir(abs))
	}

	w := &Watcher{
		file:     abs,
		onChange: onChange,
		watcher:  fw,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err == nil && abs == w.file {
				timer.Reset(w.debounce)
				pending = timer.C
			}

		case <-pending:
			pending = nil
			if err := w.onChange(); err != nil {
				debug.Error("index reload failed", "file", w.file, "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Error("index watch error", "file", w.file, "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop ends watching and releases the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
