package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
)

var (
	ErrUnknownHandle = errors.New("asset: unknown handle")
	ErrNotFound      = errors.New("asset: not found")
)

type entry struct {
	path  string
	state LoadState
	img   image.Image
	err   error
	// gen is bumped by Reload and Register; decodes started under an
	// older gen are discarded.
	gen uint64
}

// Server loads images in the background and hands out handles for them.
// Sources are searched in order; the first one that has the file wins.
type Server struct {
	mu      sync.RWMutex
	next    Handle
	byPath  map[string]Handle
	entries map[Handle]*entry
	sources []fs.FS
	wg      sync.WaitGroup
}

func NewServer(sources ...fs.FS) *Server {
	return &Server{
		byPath:  map[string]Handle{},
		entries: map[Handle]*entry{},
		sources: append([]fs.FS(nil), sources...),
	}
}

// Load starts decoding path unless it is already known and returns its
// handle immediately.
func (s *Server) Load(p string) Handle {
	clean := cleanPath(p)

	s.mu.Lock()
	if h, ok := s.byPath[clean]; ok {
		s.mu.Unlock()
		return h
	}
	h := s.allocLocked()
	s.entries[h] = &entry{path: clean, state: Loading}
	s.byPath[clean] = h
	s.mu.Unlock()

	s.decodeAsync(h, clean, 0)
	return h
}

// Add registers an in-memory image, already loaded.
func (s *Server) Add(img image.Image) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.allocLocked()
	s.entries[h] = &entry{state: Loaded, img: img}
	return h
}

// Register stores img under path so later Loads of that path resolve to it.
func (s *Server) Register(p string, img image.Image) Handle {
	clean := cleanPath(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.byPath[clean]; ok {
		e := s.entries[h]
		e.img, e.err, e.state = img, nil, Loaded
		e.gen++
		return h
	}
	h := s.allocLocked()
	s.entries[h] = &entry{path: clean, state: Loaded, img: img}
	s.byPath[clean] = h
	return h
}

// Reload drops the cached result for path and decodes it again under the
// same handle.
func (s *Server) Reload(p string) Handle {
	clean := cleanPath(p)
	s.mu.Lock()
	h, ok := s.byPath[clean]
	if !ok {
		s.mu.Unlock()
		return s.Load(clean)
	}
	e := s.entries[h]
	e.state, e.img, e.err = Loading, nil, nil
	e.gen++
	gen := e.gen
	s.mu.Unlock()

	s.decodeAsync(h, clean, gen)
	return h
}

// Release forgets h. Unknown handles are ignored.
func (s *Server) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return
	}
	delete(s.entries, h)
	if e.path != "" && s.byPath[e.path] == h {
		delete(s.byPath, e.path)
	}
}

// LoadState reports the progress of h; unknown handles are NotLoaded.
func (s *Server) LoadState(h Handle) LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok {
		return NotLoaded
	}
	return e.state
}

// Err returns the load error of a Failed handle.
func (s *Server) Err(h Handle) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok {
		return ErrUnknownHandle
	}
	return e.err
}

// Image returns the decoded image once h is Loaded.
func (s *Server) Image(h Handle) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok || e.state != Loaded {
		return nil, false
	}
	return e.img, true
}

// Exists reports whether h is still tracked.
func (s *Server) Exists(h Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[h]
	return ok
}

// Path returns the source path of h, empty for in-memory images.
func (s *Server) Path(h Handle) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[h]; ok {
		return e.path
	}
	return ""
}

// Wait blocks until every load started so far has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) allocLocked() Handle {
	s.next++
	return s.next
}

func (s *Server) decodeAsync(h Handle, p string, gen uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		img, err := s.decode(p)
		s.finish(h, gen, img, err)
	}()
}

func (s *Server) finish(h Handle, gen uint64, img image.Image, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		// released while loading
		return
	}
	if e.gen != gen {
		// superseded by Reload or Register
		return
	}
	if err != nil {
		e.state, e.err = Failed, err
		return
	}
	e.state, e.img = Loaded, img
}

func (s *Server) decode(p string) (image.Image, error) {
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", p, err)
	}
	return img, nil
}

func (s *Server) read(p string) ([]byte, error) {
	if !fs.ValidPath(p) {
		return nil, fmt.Errorf("asset: read %s: %w", p, ErrNotFound)
	}
	for _, src := range s.sources {
		data, err := fs.ReadFile(src, p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset: read %s: %w", p, err)
		}
	}
	return nil, fmt.Errorf("asset: read %s: %w", p, ErrNotFound)
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	if strings.Contains(p, "://") {
		return p
	}
	s := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	s = strings.TrimPrefix(s, "/")
	return strings.TrimPrefix(s, "assets/")
}
