package ml

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchBundle reloads the model bundle when the artifact file is replaced
// on disk. A reload that fails to load or validate keeps the previous
// bundle installed. Close the returned watcher to stop.
func WatchBundle(path string, provider *Provider, logger *zap.SugaredLogger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and scp replace files by rename, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	target, _ := filepath.Abs(path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, _ := filepath.Abs(event.Name)
				if name != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				bundle, err := LoadBundle(path)
				if err != nil {
					logger.Warnw("model bundle reload failed, keeping current bundle",
						"path", path, "error", err)
					continue
				}
				provider.Swap(bundle)
				logger.Infow("model bundle reloaded", "path", path,
					"classes", len(bundle.Encoder.Classes))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("bundle watcher error", "error", err)
			}
		}
	}()

	return watcher, nil
}
