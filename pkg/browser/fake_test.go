package browser

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// fakePage replays a fixed sequence of heights. Once the sequence is used up
// the last height repeats.
type fakePage struct {
	mu         sync.Mutex
	heights    []int
	measured   int
	scrolls    int
	html       string
	heightErr  error
	scrollErr  error
	htmlErr    error
	panicOnHTML bool
	closed     int
}

func (p *fakePage) ScrollHeight(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.heightErr != nil {
		return 0, p.heightErr
	}
	if len(p.heights) == 0 {
		return 0, nil
	}
	i := p.measured
	if i >= len(p.heights) {
		i = len(p.heights) - 1
	}
	p.measured++
	return p.heights[i], nil
}

func (p *fakePage) ScrollToBottom(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scrollErr != nil {
		return p.scrollErr
	}
	p.scrolls++
	return nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.panicOnHTML {
		panic("driver connection lost")
	}
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.html, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// fakeDriver hands out a single fakePage.
type fakeDriver struct {
	page    *fakePage
	openErr error
	opened  []string
	opts    Options
}

func (d *fakeDriver) Name() DriverName {
	return "fake"
}

func (d *fakeDriver) Open(ctx context.Context, target *url.URL, opts Options) (Page, error) {
	d.opened = append(d.opened, target.String())
	d.opts = opts
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.page, nil
}

// recordingWait records requested delays without sleeping.
type recordingWait struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (w *recordingWait) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delays = append(w.delays, d)
	if w.err != nil {
		return w.err
	}
	return ctx.Err()
}

var errDriver = errors.New("driver failure")
