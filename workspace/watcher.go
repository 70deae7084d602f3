package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Change describes one update the watcher applied to the workspace.
// File is nil when the file was removed.
type Change struct {
	Path    string
	Removed bool
	File    *FileInfo
}

// FileWatcher re-checks files below the workspace root as they change.
type FileWatcher struct {
	workspace *Workspace
	onChange  func(Change)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher returns a watcher that calls onChange after every
// update. onChange runs on the watcher's goroutine and may be nil.
func NewFileWatcher(w *Workspace, onChange func(Change)) *FileWatcher {
	return &FileWatcher{
		workspace: w,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start watches the root directory and every non-hidden directory below
// it, then handles events until Stop is called.
func (fw *FileWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	fw.watcher = watcher
	if err := fw.addTree(fw.workspace.RootDir()); err != nil {
		watcher.Close()
		return err
	}
	go fw.run()
	return nil
}

// Stop ends event handling and waits for the watcher goroutine to exit.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		if fw.watcher != nil {
			err = fw.watcher.Close()
			<-fw.done
		}
	})
	return err
}

func (fw *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		log.Debugf("watching %s", path)
		return fw.watcher.Add(path)
	})
}

func (fw *FileWatcher) run() {
	defer close(fw.done)
	for {
		select {
		case <-fw.stopCh:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(ev)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watch %s: %s", fw.workspace.RootDir(), err)
		}
	}
}

func (fw *FileWatcher) handle(ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if fw.workspace.GetFile(path) == nil {
			return
		}
		fw.workspace.RemoveFile(path)
		fw.notify(Change{Path: path, Removed: true})

	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Op&fsnotify.Create != 0 && !strings.HasPrefix(info.Name(), ".") {
				if err := fw.addTree(path); err != nil {
					log.Errorf("watch %s: %s", path, err)
				}
			}
			return
		}
		if !fw.workspace.Matches(path) {
			return
		}
		f, err := fw.workspace.ScanFile(path)
		if err != nil {
			log.Errorf("%s", err)
			return
		}
		fw.notify(Change{Path: path, File: f})
	}
}

func (fw *FileWatcher) notify(c Change) {
	if fw.onChange != nil {
		fw.onChange(c)
	}
}
