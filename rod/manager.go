package rod

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/dashdoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// DefaultLanguage is the browser locale. Documentation hosts negotiate the
// served language from it when a URL carries no locale.
const DefaultLanguage = "en-US"

// BrowserManager owns the headless browser used for page fetches and
// restarts it every maxPages pages. Chrome's memory grows steadily over a
// long crawl and does not shrink after pages close; a docset crawl visits
// thousands of pages.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	pages    atomic.Int64
	recycles atomic.Int64
	closed   atomic.Bool

	maxPages int64
	language string
	logger   *slog.Logger
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages after which the browser is restarted.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithLanguage sets the browser locale.
func WithLanguage(lang string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.language = lang
	}
}

// WithManagerLogger reports browser restarts to logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(bm)
	}

	b, l, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = b, l
	return bm, nil
}

// Browser returns the current browser, restarting it first once maxPages
// pages have been fetched. Callers report each fetched page with
// IncrementPageCount.
func (bm *BrowserManager) Browser() (*rod.Browser, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed.Load() || bm.browser == nil {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "browser is closed")
	}
	if bm.maxPages > 0 && bm.pages.Load() >= bm.maxPages {
		bm.recycle()
	}
	return bm.browser, nil
}

// IncrementPageCount records one fetched page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.pages.Add(1)
}

// Recycles returns the number of browser restarts.
func (bm *BrowserManager) Recycles() int64 {
	return bm.recycles.Load()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

// LauncherPID returns the process ID of the browser launcher, or 0 once
// closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

func (bm *BrowserManager) launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("lang", bm.language).
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, dashdoc.Errorf(dashdoc.EINTERNAL, "launch browser: %v", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, dashdoc.Errorf(dashdoc.EINTERNAL, "connect to browser: %v", err)
	}
	return b, l, nil
}

// recycle swaps in a fresh browser. The old browser stays in use if the
// new one cannot be launched. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	pages := bm.pages.Load()
	b, l, err := bm.launch()
	if err != nil {
		if bm.logger != nil {
			bm.logger.Warn("recycle browser", "pages", pages, "error", err)
		}
		return
	}

	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = b, l
	bm.pages.Store(0)
	bm.recycles.Add(1)
	if bm.logger != nil {
		bm.logger.Info("recycle browser", "pages", pages, "recycles", bm.recycles.Load())
	}
}

func shutdown(b *rod.Browser, l *launcher.Launcher) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}
