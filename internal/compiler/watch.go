package compiler

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch builds the entry file once, then rebuilds whenever a .wj file in
// its directory is written, created or renamed. It blocks until the
// watcher fails; progress and diagnostics go to out.
func Watch(entry string, cfg Config, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(entry)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	rebuild := func() {
		res, outPath, err := BuildFile(entry, cfg)
		switch {
		case err != nil:
			fmt.Fprintf(out, "build failed: %v\n", err)
		case res.Diagnostics.HasErrors():
			fmt.Fprintln(out, res.Diagnostics.Format(entry))
		default:
			fmt.Fprintf(out, "wrote %s\n", outPath)
		}
	}

	fmt.Fprintf(out, "watching %s\n", dir)
	rebuild()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".wj" {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s changed\n", filepath.Base(ev.Name))
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher failed: %w", err)
		}
	}
}
