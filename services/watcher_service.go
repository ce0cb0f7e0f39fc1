package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatcherService auto-ingests supported files dropped into a watched
// directory. It runs the same ingestion gate as uploads, so rewriting a file
// with identical bytes does not re-index it. The session must come from the
// SessionStore: an index reset clears every store ledger, and the watcher's
// has to be among them or re-drops after a reset would be skipped forever.
type WatcherService struct {
	ingestion *IngestionService
	session   *Session
}

func NewWatcherService(ingestion *IngestionService, session *Session) *WatcherService {
	return &WatcherService{
		ingestion: ingestion,
		session:   session,
	}
}

// WatchDirectory blocks until the context is cancelled, ingesting files as
// they appear.
func (w *WatcherService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !IsSupportedFile(event.Name) {
					continue
				}
				// Many editors write by creating a temp file and renaming,
				// which fires multiple events; Create and Write are handled
				// the same and the dedup ledger absorbs the repeats.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: New or modified file: %s", event.Name)
					content, err := os.ReadFile(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not read file %s: %v", event.Name, err)
						continue
					}
					report := w.ingestion.IngestFiles(ctx, w.session, []UploadedFile{
						{Name: filepath.Base(event.Name), Content: content},
					})
					for _, skipped := range report.Skipped {
						log.Printf("WATCHER: %s skipped: %s", skipped.Name, skipped.Reason)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}
