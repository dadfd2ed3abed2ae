package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"go-wellfound-scraper/internal/domain"
)

// Options configures the one browser page a Session owns.
type Options struct {
	BaseURL     string
	Headless    bool
	Timeout     time.Duration
	LoginSettle time.Duration
	Email       string
	Password    string
	Cookies     []domain.AuthCredential
}

// Session owns one authenticated page. Only one holder may drive the page at
// a time; Acquire blocks until the page is free.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	sem       *semaphore.Weighted
	closed    atomic.Bool
	closeOnce sync.Once
}

// Handle is proof of exclusive access to the page. It is released exactly once.
type Handle struct {
	session  *Session
	released atomic.Bool
}

// Page returns the shared page, or nil once the handle has been released.
func (h *Handle) Page() playwright.Page {
	if h.released.Load() {
		return nil
	}
	return h.session.page
}

// Start launches Chromium, installs the cookies and logs in. Any failure
// tears down what was already started.
func Start(ctx context.Context, opts Options) (*Session, error) {
	log.Info().Bool("headless", opts.Headless).Str("url", opts.BaseURL).Msg("🚀 Starting browser session")

	pw, err := playwright.Run()
	if err != nil {
		return nil, initFailure("could not start playwright", err)
	}
	s := &Session{pw: pw, sem: semaphore.NewWeighted(1)}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		s.Close()
		return nil, initFailure("could not launch browser", err)
	}

	bctx, err := s.browser.NewContext()
	if err != nil {
		s.Close()
		return nil, initFailure("could not create browser context", err)
	}

	cookies := make([]playwright.OptionalCookie, 0, len(opts.Cookies))
	for _, c := range opts.Cookies {
		cookies = append(cookies, ToPlaywright(c))
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			s.Close()
			return nil, initFailure("could not install cookies", err)
		}
	}

	s.page, err = bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, initFailure("could not open page", err)
	}
	if opts.Timeout > 0 {
		s.page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	if err := Login(ctx, s.page, opts); err != nil {
		s.Close()
		return nil, err
	}

	log.Info().Str("url", s.page.URL()).Msg("✅ Browser session ready")
	return s, nil
}

// Attach wraps an already prepared page. The caller keeps ownership of the
// browser behind it; Close only marks the session closed.
func Attach(page playwright.Page) *Session {
	return &Session{page: page, sem: semaphore.NewWeighted(1)}
}

// Acquire waits for exclusive use of the page or for ctx to end.
func (s *Session) Acquire(ctx context.Context) (*Handle, error) {
	if s.closed.Load() {
		return nil, domain.ErrSessionClosed
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		s.sem.Release(1)
		return nil, domain.ErrSessionClosed
	}
	return &Handle{session: s}, nil
}

// Release returns the page. Releasing the same handle twice is a no-op.
func (s *Session) Release(h *Handle) {
	if h == nil || h.session != s {
		return
	}
	if h.released.CompareAndSwap(false, true) {
		s.sem.Release(1)
	}
}

// Close stops the browser and the driver. Errors are logged, not returned to
// callers that are shutting down anyway.
func (s *Session) Close() error {
	var firstErr error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				log.Warn().Err(err).Msg("⚠️ could not close browser")
				firstErr = err
			}
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				log.Warn().Err(err).Msg("⚠️ could not stop playwright")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	})
	return firstErr
}

func initFailure(msg string, err error) error {
	return &domain.SessionError{Kind: domain.SessionInitFailure, Err: fmt.Errorf("%s: %w", msg, err)}
}
