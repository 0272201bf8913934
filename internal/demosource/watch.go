package demosource

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// Watcher hot-swaps the producer's source image whenever the watched
// directory gets a new or modified file, so a demo deployment can change
// its picture without a restart.
type Watcher struct {
	watcher  *fsnotify.Watcher
	producer *Producer
	dir      string
	logger   servicelog.Logger
}

// Watch starts watching dir for file creation/writes. Each qualifying
// event triggers producer.Load for the changed file.
func Watch(producer *Producer, dir string, logger servicelog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fw, producer: producer, dir: dir, logger: logger}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(w.dir, event.Name)
			if err != nil {
				continue
			}
			if err := w.producer.Load(os.DirFS(w.dir), rel); err != nil {
				w.logger.Warn("demo source reload failed", servicelog.String("path", event.Name), servicelog.Error(err))
				continue
			}
			w.logger.Info("demo source reloaded", servicelog.String("path", event.Name))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("demo source watch failed", servicelog.Error(err))
		}
	}
}

// Close stops the watch goroutine.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
