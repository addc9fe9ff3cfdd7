// Package browser drives a single headless Chrome session through chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/rasff/internal/engine"
)

// Session is the set of browser operations the extraction pipeline relies on.
//
// Every blocking call takes a context; cancelling it aborts the call but not
// the session. Close must be called exactly once the session is no longer
// needed, on every exit path.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitUntil blocks until selector is present in the DOM or timeout elapses.
	// Expiry yields an error matching engine.ErrNavigationTimeout.
	WaitUntil(ctx context.Context, selector string, timeout time.Duration) error

	// Snapshot returns the outer HTML of the first element matching any of
	// the selectors, tried in order.
	Snapshot(ctx context.Context, selectors ...string) (string, error)

	// RunScript applies the JavaScript function expression fn to args and
	// stores the JSON result in res. Element arguments resolve to DOM nodes.
	RunScript(ctx context.Context, fn string, res interface{}, args ...interface{}) error

	// Click waits for selector to be visible and clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// Close terminates the browser process. It is safe to call more than once.
	Close() error
}

// Opener launches sessions. Tests substitute a fake implementation.
type Opener interface {
	Open(ctx context.Context, cfg Config) (Session, error)
}

// ChromeOpener launches a fresh headless Chrome process per session
type ChromeOpener struct{}

// NewChromeOpener returns the production Opener
func NewChromeOpener() *ChromeOpener {
	return &ChromeOpener{}
}

// Open starts Chrome with cfg and returns a ready session.
// The process is bound to ctx: cancelling ctx kills the browser.
func (o *ChromeOpener) Open(ctx context.Context, cfg Config) (Session, error) {
	start := time.Now()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, cfg.AllocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// First Run on the browser context launches the process
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": cfg.language()}),
	)
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, engine.NewEngineError(engine.ErrCodeBrowserLaunch, "failed to start chrome", err)
	}

	if e := log.Debug(); e.Enabled() {
		e.Str("version", ChromeVersion(cfg.ChromePath)).
			Bool("headless", cfg.Headless).
			Dur("elapsed_ms", time.Since(start)).
			Msg("Browser session started")
	}

	return &chromeSession{
		cfg:         cfg,
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
	}, nil
}

// chromeSession implements Session on top of a chromedp browser context
type chromeSession struct {
	cfg         Config
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

// runCtx derives a context from the browser context that also ends when the
// caller's ctx does.
func (s *chromeSession) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	rctx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}

// timeoutError maps a deadline hit into a NavigationTimeout unless the caller cancelled.
func timeoutError(ctx context.Context, selector string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("waiting for %q: %w", selector, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return engine.NavigationTimeout(selector, err)
	}
	return fmt.Errorf("waiting for %q: %w", selector, err)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	rctx, cancel := s.runCtx(ctx, s.cfg.navigateTimeout())
	defer cancel()

	log.Debug().Str("url", url).Msg("Navigating")
	resp, err := chromedp.RunResponse(rctx, chromedp.Navigate(url))
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return engine.NewEngineError(engine.ErrCodeNavigationTimeout, "page load did not finish", err).
				WithDetail("url", url)
		}
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	logResponse(url, resp)
	return nil
}

// logResponse records the status of the main document. An error page still
// loads, so the table wait that follows is what fails the run.
func logResponse(url string, resp *network.Response) {
	if resp == nil {
		return
	}
	e := log.Debug()
	if resp.Status >= 400 {
		e = log.Warn()
	}
	e.Str("url", url).
		Int64("status", resp.Status).
		Str("protocol", resp.Protocol).
		Msg("Document received")
}

func (s *chromeSession) WaitUntil(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.cfg.waitTimeout()
	}
	rctx, cancel := s.runCtx(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(rctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return timeoutError(ctx, selector, err)
	}
	return nil
}

func (s *chromeSession) Snapshot(ctx context.Context, selectors ...string) (string, error) {
	var html string
	if err := s.RunScript(ctx, OuterHTMLScript, &html, selectors); err != nil {
		return "", err
	}
	if html == "" {
		return "", engine.NewEngineError(engine.ErrCodeParseError, "no element matched", nil).
			WithDetail("selectors", selectors)
	}
	return html, nil
}

func (s *chromeSession) RunScript(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	expr, err := CallExpression(fn, args...)
	if err != nil {
		return err
	}

	rctx, cancel := s.runCtx(ctx, s.cfg.waitTimeout())
	defer cancel()

	if err := chromedp.Run(rctx, chromedp.Evaluate(expr, res)); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.cfg.waitTimeout()
	}
	rctx, cancel := s.runCtx(ctx, timeout)
	defer cancel()

	err := chromedp.Run(rctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return timeoutError(ctx, selector, err)
	}
	return nil
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		// Graceful close first so Chrome can flush, then tear down the allocator
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancel()
		s.allocCancel()
		log.Debug().Msg("Browser session closed")
	})
	return s.closeErr
}

// WithSession opens a session, passes it to fn and closes it on every exit
// path, including a panic inside fn.
func WithSession(ctx context.Context, opener Opener, cfg Config, fn func(Session) error) error {
	sess, err := opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close browser session")
		}
	}()
	return fn(sess)
}
