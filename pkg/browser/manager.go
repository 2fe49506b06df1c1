// Package browser drives the Chrome instance that renders the chat client.
//
// The Manager launches Chrome with a persistent profile (so a login survives
// between runs) or connects to one started elsewhere, and opens stealth tabs.
// Bindings wires the in-page save trigger and DownloadDeliverer saves the
// export through the page itself.
package browser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"emojiscraper/pkg/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const defaultNavigationTimeout = 60 * time.Second

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local Chrome.
	RemoteURL string

	Headless bool

	// Stealth opens tabs with the stealth evasions applied.
	Stealth bool

	// UserDataDir keeps cookies and local storage between runs.
	UserDataDir string

	NavigationTimeout time.Duration

	// KeepOpen leaves a launched Chrome running on Close.
	KeepOpen bool

	Logger logger.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = defaultNavigationTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.NewNopLogger()
	}
}

// Manager manages the Chrome lifecycle.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Call Start to launch or connect.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to the remote one) and returns the
// browser handle.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	log := m.cfg.Logger
	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.WithField("url", wsURL).Info("Connecting to remote browser")
	} else {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}
		if m.cfg.KeepOpen {
			l = l.Leakless(false)
		}

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.WithFields(map[string]interface{}{
			"url":           wsURL,
			"headless":      m.cfg.Headless,
			"user_data_dir": m.cfg.UserDataDir,
		}).Info("Launched local browser")
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

// Browser returns the current browser handle or nil before Start.
func (m *Manager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser
}

// Open returns a tab showing pageURL. With a remote browser an already open
// tab on the same URL is reused, so a session the user prepared by hand is
// scanned as is.
func (m *Manager) Open(ctx context.Context, pageURL string) (*rod.Page, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	if m.cfg.RemoteURL != "" {
		if p, err := b.Pages(); err == nil {
			if existing, err := p.FindByURL(regexp.QuoteMeta(pageURL)); err == nil {
				m.cfg.Logger.WithField("url", pageURL).Info("Reusing open tab")
				return existing.Context(ctx), nil
			}
		}
	}

	var page *rod.Page
	var err error
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.WithError(err).Warn("Page load did not finish in time")
	}

	return page.Context(ctx), nil
}

// Close disconnects from Chrome. A launched Chrome is shut down unless
// KeepOpen is set.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.browser == nil {
		return nil
	}

	var err error
	if m.lnch != nil && !m.cfg.KeepOpen {
		err = m.browser.Close()
		m.lnch.Kill()
	}
	m.browser = nil
	return err
}
