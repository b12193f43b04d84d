// Package watcher re-runs work when input files change on disk.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"atsgenie/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

// FileWatcher calls onChange once per burst of edits to any watched file
type FileWatcher struct {
	mu sync.Mutex

	files []string
	state map[string]fileState

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	doneChan   chan struct{}
	changeChan chan struct{}

	onChange func(changed []string)
	logger   *errors.Logger

	running bool
}

// NewFileWatcher creates a watcher for files. onChange runs on the watcher goroutine
// and must not call Stop.
func NewFileWatcher(files []string, debounceDelay time.Duration, onChange func(changed []string), logger *errors.Logger) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounce
	}

	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		if !slices.Contains(abs, p) {
			abs = append(abs, p)
		}
	}

	return &FileWatcher{
		files:         abs,
		state:         make(map[string]fileState, len(abs)),
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}, nil
}

// Start begins watching
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("file watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Directories are watched so editors that replace files atomically are still seen
	dirs := make([]string, 0, len(fw.files))
	for _, file := range fw.files {
		fw.state[file] = statFile(file)
		dir := filepath.Dir(file)
		if slices.Contains(dirs, dir) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}

	fw.fsWatcher = watcher
	fw.stopChan = make(chan struct{})
	fw.doneChan = make(chan struct{})
	fw.changeChan = make(chan struct{}, 1)
	fw.running = true
	go fw.watchLoop()

	fw.logger.Info("File watcher started", "files", fw.files, "debounce_delay", fw.debounceDelay)
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	close(fw.stopChan)
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	err := fw.fsWatcher.Close()
	done := fw.doneChan
	fw.mu.Unlock()

	<-done
	if err != nil {
		fw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	fw.logger.Info("File watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// Files returns the absolute paths being watched
func (fw *FileWatcher) Files() []string {
	return slices.Clone(fw.files)
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.doneChan)

	for {
		select {
		case event, ok := <-fw.fsWatcher.Events:
			if !ok {
				return
			}
			if fw.isRelevant(event) {
				fw.scheduleCheck()
			}

		case err, ok := <-fw.fsWatcher.Errors:
			if !ok {
				return
			}
			fw.logger.LogError(err, "File watcher error")

		case <-fw.changeChan:
			if changed := fw.changedFiles(); len(changed) > 0 {
				fw.logger.Debug("Watched files changed", "files", changed)
				fw.onChange(changed)
			}

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return slices.Contains(fw.files, name)
}

func (fw *FileWatcher) scheduleCheck() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return
	}
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	changeChan := fw.changeChan
	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case changeChan <- struct{}{}:
		default:
		}
	})
}

// changedFiles compares current file state with the last seen state
func (fw *FileWatcher) changedFiles() []string {
	var changed []string
	for _, file := range fw.files {
		current := statFile(file)
		if !current.equal(fw.state[file]) {
			fw.state[file] = current
			changed = append(changed, file)
		}
	}
	return changed
}

func (s fileState) equal(o fileState) bool {
	return s.exists == o.exists && s.size == o.size && s.modTime.Equal(o.modTime)
}

func statFile(file string) fileState {
	info, err := os.Stat(file)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}
