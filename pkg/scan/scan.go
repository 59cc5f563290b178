package scan

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// FreeSpaceLabel is the payload of the pseudo node added by [Options.FreeSpace].
const FreeSpaceLabel = "<free>"

// Options configures [Dir].
type Options struct {
	// MaxDepth collapses directories deeper than this into leaves weighted
	// by their total size. Zero means unlimited.
	MaxDepth int

	// Hidden includes entries whose name starts with a dot.
	Hidden bool

	// FreeSpace adds a child of the root weighted by the free space of the
	// volume holding the root.
	FreeSpace bool

	// Ignore lists glob patterns (filepath.Match syntax) matched against
	// entry names. Matching entries are skipped.
	Ignore []string

	// Concurrency bounds the number of directories read at once.
	// Zero selects four per CPU.
	Concurrency int

	Logger *log.Logger
}

// Stats counts what a scan visited.
type Stats struct {
	Files int64
	Dirs  int64
	Bytes int64
}

type entry struct {
	rel      string
	size     int64
	dir      bool
	children []*entry
}

type scanner struct {
	opts   Options
	root   string
	group  *errgroup.Group
	ctx    context.Context
	logger *log.Logger
	stats  Stats
}

// Dir scans root and returns the resulting tree. The root rectangle is left
// empty.
func Dir(ctx context.Context, root string, opts Options) (*treemap.Tree, Stats, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Stats{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "scan %s", root)
		}
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", root)
	}
	if !info.IsDir() {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidPath, "scan %s: not a directory", root)
	}
	for _, p := range opts.Ignore {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "ignore pattern %q", p)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU() * 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	s := &scanner{opts: opts, root: abs, group: g, ctx: gctx, logger: logger}

	top := &entry{rel: ".", dir: true}
	readErr := s.readDir(top, 0)
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	if readErr != nil {
		if ctx.Err() != nil {
			return nil, Stats{}, ctx.Err()
		}
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidPath, readErr, "read %s", root)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	t := treemap.New(treemap.Rect{})
	t.Root().Payload = filepath.Base(abs)
	s.stats.Dirs++
	for _, c := range top.children {
		s.add(t, treemap.Root, c, 1)
	}

	if opts.FreeSpace {
		usage, err := disk.UsageWithContext(ctx, abs)
		if err != nil {
			logger.Warn("free space unavailable", "path", abs, "error", err)
		} else {
			t.AddChild(treemap.Root, FreeSpaceLabel, float64(usage.Free))
		}
	}

	logger.Debug("scanned directory", "root", abs, "files", s.stats.Files, "dirs", s.stats.Dirs, "bytes", s.stats.Bytes)
	return t, s.stats, nil
}

// readDir fills e with the entries of its directory. Subdirectories are
// handed to the worker group when a slot is free and read inline otherwise.
func (s *scanner) readDir(e *entry, depth int) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	des, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(e.rel)))
	if err != nil {
		return err
	}

	for _, de := range des {
		name := de.Name()
		if s.skip(name) || de.Type()&os.ModeSymlink != 0 {
			continue
		}
		child := &entry{rel: path.Join(e.rel, name), dir: de.IsDir()}

		if !child.dir {
			info, err := de.Info()
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			child.size = info.Size()
			e.children = append(e.children, child)
			continue
		}

		e.children = append(e.children, child)
		work := func() error {
			if err := s.readDir(child, depth+1); err != nil {
				if s.ctx.Err() != nil {
					return s.ctx.Err()
				}
				s.logger.Debug("skipping unreadable directory", "path", child.rel, "error", err)
			}
			return nil
		}
		if !s.group.TryGo(work) {
			if err := work(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scanner) skip(name string) bool {
	if !s.opts.Hidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, p := range s.opts.Ignore {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// add converts e into tree nodes under parent. Directories below MaxDepth
// become leaves carrying their total size.
func (s *scanner) add(t *treemap.Tree, parent treemap.NodeID, e *entry, depth int) int64 {
	if !e.dir {
		s.stats.Files++
		s.stats.Bytes += e.size
		t.AddChild(parent, e.rel, float64(e.size))
		return e.size
	}

	s.stats.Dirs++
	if s.opts.MaxDepth > 0 && depth >= s.opts.MaxDepth {
		size := s.collapse(e)
		t.AddChild(parent, e.rel, float64(size))
		return size
	}

	id := t.AddChild(parent, e.rel, 0)
	var total int64
	for _, c := range e.children {
		total += s.add(t, id, c, depth+1)
	}
	return total
}

func (s *scanner) collapse(e *entry) int64 {
	if !e.dir {
		s.stats.Files++
		s.stats.Bytes += e.size
		return e.size
	}
	var total int64
	for _, c := range e.children {
		if c.dir {
			s.stats.Dirs++
		}
		total += s.collapse(c)
	}
	return total
}
