// Package workspace keeps the check results for a tree of style sheets
// and keeps them current from a file watcher or a language client.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/pegcss/peg"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("pegcss.workspace")

// FileInfo is the result of checking one file.
type FileInfo struct {
	Path       string
	Content    []byte
	OK         bool
	Consumed   int
	Diagnostic *peg.Diagnostic
	Stats      peg.Stats
}

// Err returns a *peg.ParseError for a failed check, nil otherwise.
func (f *FileInfo) Err() error {
	if f.OK {
		return nil
	}
	return &peg.ParseError{Diagnostic: f.Diagnostic}
}

type Option func(*Workspace)

// WithJobs bounds the number of files checked at once. n <= 0 means no
// limit.
func WithJobs(n int) Option {
	return func(w *Workspace) {
		w.jobs = n
	}
}

// WithRule checks files from the named rule instead of the grammar's
// start rule.
func WithRule(name string) Option {
	return func(w *Workspace) {
		w.rule = name
	}
}

// WithParserOptions passes options to every parser the workspace creates.
func WithParserOptions(opts ...peg.ParserOption) Option {
	return func(w *Workspace) {
		w.parserOpts = append(w.parserOpts, opts...)
	}
}

// WithExtensions sets the file extensions ScanAll and the watcher pick
// up. The default is ".css".
func WithExtensions(exts ...string) Option {
	return func(w *Workspace) {
		w.exts = exts
	}
}

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*FileInfo

	grammar    *peg.Grammar
	rule       string
	parserOpts []peg.ParserOption
	jobs       int
	exts       []string
}

func New(rootDir string, g *peg.Grammar, opts ...Option) *Workspace {
	w := &Workspace{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
		grammar: g,
		exts:    []string{".css"},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Grammar() *peg.Grammar {
	return w.grammar
}

// Matches reports whether path has one of the workspace's extensions.
func (w *Workspace) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ScanAll checks every matching file below the root directory. Hidden
// directories are skipped.
func (w *Workspace) ScanAll(ctx context.Context) error {
	var paths []string
	err := filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.rootDir, err)
	}

	if _, err := w.scanFiles(ctx, paths); err != nil {
		return err
	}
	log.Infof("scanned %d files in %s, %d failed", len(paths), w.rootDir, len(w.Failed()))
	return nil
}

// scanFiles checks paths concurrently and returns the results in order.
func (w *Workspace) scanFiles(ctx context.Context, paths []string) ([]*FileInfo, error) {
	results := make([]*FileInfo, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if w.jobs > 0 {
		g.SetLimit(w.jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := w.ScanFile(path)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ScanFile reads and checks path.
func (w *Workspace) ScanFile(path string) (*FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return w.UpdateFile(path, content)
}

// UpdateFile checks content as the new text of path and stores the result.
func (w *Workspace) UpdateFile(path string, content []byte) (*FileInfo, error) {
	f, err := w.check(path, content)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.files[path] = f
	w.mu.Unlock()
	return f, nil
}

func (w *Workspace) check(path string, content []byte) (*FileInfo, error) {
	p := peg.NewParser(w.grammar, string(content), w.parserOpts...)
	var ok bool
	if w.rule == "" {
		ok = p.Parse()
	} else {
		var err error
		if ok, err = p.ParseFrom(w.rule); err != nil {
			return nil, err
		}
	}

	f := &FileInfo{
		Path:     path,
		Content:  content,
		OK:       ok,
		Consumed: p.Pos(),
		Stats:    p.Stats(),
	}
	if !ok {
		f.Diagnostic = p.Diagnostic()
		log.Debugf("%s: %s", path, f.Diagnostic.Oneline())
	} else {
		log.Debugf("%s: parsed %d bytes", path, len(content))
	}
	return f, nil
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns every stored result sorted by path.
func (w *Workspace) Files() []*FileInfo {
	w.mu.RLock()
	out := make([]*FileInfo, 0, len(w.files))
	for _, f := range w.files {
		out = append(out, f)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Failed returns the stored results that did not parse, sorted by path.
func (w *Workspace) Failed() []*FileInfo {
	var out []*FileInfo
	for _, f := range w.Files() {
		if !f.OK {
			out = append(out, f)
		}
	}
	return out
}

// CheckFiles checks paths with g and returns the results in the order
// of paths.
func CheckFiles(ctx context.Context, g *peg.Grammar, paths []string, opts ...Option) ([]*FileInfo, error) {
	return New("", g, opts...).scanFiles(ctx, paths)
}
