package ipc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/control"
)

// Watcher turns files created in the signals directory into commands.
// Creating <dir>/skip queues a skip; the file is removed once claimed.
type Watcher struct {
	dir      string
	commands Commander
	log      zerolog.Logger
	watcher  *fsnotify.Watcher
}

func NewWatcher(dir string, commands Commander, logger zerolog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		commands: commands,
		log:      logger.With().Str("component", "signals").Logger(),
		watcher:  fw,
	}, nil
}

// Run processes signals until ctx is done. Files left over from before
// the watcher started are handled first.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	if entries, err := os.ReadDir(w.dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				w.handle(filepath.Join(w.dir, e.Name()))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handle(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}
	// Whoever removes the file owns the signal, so a Create followed by a
	// Write yields one command.
	if err := os.Remove(path); err != nil {
		return
	}
	typ, err := control.ParseCommand(name)
	if err != nil {
		w.log.Warn().Str("file", name).Msg("ignoring unknown signal")
		return
	}
	if w.commands.Enqueue(control.Command{Type: typ, Source: control.SourceSignal}) {
		w.log.Info().Str("command", typ.String()).Str("source", string(control.SourceSignal)).Msg("command queued")
	}
}
