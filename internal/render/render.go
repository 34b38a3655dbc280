package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// glamour.TermRenderer is not safe for concurrent Render calls, so
// renderers are pooled per option set instead of shared.
var pools struct {
	mu sync.RWMutex
	m  map[string]*sync.Pool
}

func poolKey(opts Options) string {
	return fmt.Sprintf("%s:%d:%t", opts.Style, opts.Width, opts.PreserveNewLines)
}

func poolFor(opts Options) *sync.Pool {
	key := poolKey(opts)

	pools.mu.RLock()
	pool, ok := pools.m[key]
	pools.mu.RUnlock()
	if ok {
		return pool
	}

	pools.mu.Lock()
	defer pools.mu.Unlock()
	if pool, ok := pools.m[key]; ok {
		return pool
	}
	if pools.m == nil {
		pools.m = make(map[string]*sync.Pool)
	}
	pool = &sync.Pool{
		New: func() interface{} {
			r, err := newRenderer(opts)
			if err != nil {
				return nil
			}
			return r
		},
	}
	pools.m[key] = pool
	return pool
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// Markdown renders markdown for terminal display using a pooled
// renderer.
func Markdown(content string, opts Options) (string, error) {
	pool := poolFor(opts)

	r, _ := pool.Get().(*glamour.TermRenderer)
	if r == nil {
		var err error
		r, err = newRenderer(opts)
		if err != nil {
			return "", err
		}
	}
	defer pool.Put(r)

	return r.Render(content)
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}
