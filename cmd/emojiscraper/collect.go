package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"emojiscraper/pkg/browser"
	"emojiscraper/pkg/collector"
	"emojiscraper/pkg/config"
	"emojiscraper/pkg/exporter"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/page"
	"emojiscraper/pkg/scraper"
	"emojiscraper/pkg/storage"
	"emojiscraper/pkg/trigger"
	"emojiscraper/pkg/ui"
	"emojiscraper/pkg/ui/tui"

	"github.com/go-rod/rod"
	"github.com/spf13/cobra"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Record custom emojis from the chat web app and save emoji-data.json",
	Long: `Open the chat web app in Chrome and record every custom emoji shown in the
emoji picker.

Open a channel you can type in, open the emoji picker and scroll through it
until every server's emojis have appeared once. Then press any key in the
browser tab or in this terminal, or type save() in the browser console.
The first key press saves once; save() can be called again at any time.

The browser profile is kept between runs, so you only log in once.`,
	Example: `  # Launch Chrome and save emoji-data.json into ./workspace
  emojiscraper collect -o ./workspace

  # Attach to a Chrome started with --remote-debugging-port=9222
  emojiscraper collect --remote-url ws://127.0.0.1:9222/devtools/browser/<id>

  # Let the browser download the file, like the console script did
  emojiscraper collect --delivery browser

  # Scan a saved copy of the page instead of a live tab
  emojiscraper collect --snapshot picker.html`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String("url", "", "page to open (default https://discord.com/app)")
	collectCmd.Flags().String("remote-url", "", "DevTools WebSocket URL of a running Chrome")
	collectCmd.Flags().Bool("headless", false, "run the launched Chrome without a window")
	collectCmd.Flags().Bool("keep-open", false, "leave the launched Chrome running on exit")
	collectCmd.Flags().Duration("interval", 0, "scan interval (default 100ms)")
	collectCmd.Flags().String("snapshot", "", "scan a saved HTML file instead of a browser tab")
	collectCmd.Flags().Bool("fail-fast", false, "stop on the first element that lacks the expected structure")
	collectCmd.Flags().StringP("output", "o", "", "directory emoji-data.json is written to")
	collectCmd.Flags().String("delivery", "", "how the file is saved: file or browser")
	collectCmd.Flags().Bool("tui", false, "show the interactive terminal UI")
}

// source is where the scanner reads candidates from
type source struct {
	page    collector.Page
	tab     *rod.Page
	manager *browser.Manager
}

func (s *source) Close() error {
	if s.manager == nil {
		return nil
	}
	return s.manager.Close()
}

func openSource(ctx context.Context, cfg *config.Config, log logger.Logger) (*source, error) {
	if cfg.Scan.Snapshot != "" {
		log.WithField("file", cfg.Scan.Snapshot).Info("Scanning saved page")
		return &source{page: page.NewHTMLFile(cfg.Scan.Snapshot, cfg.Scan.Selector)}, nil
	}

	manager := browser.NewManager(browser.Config{
		RemoteURL:         cfg.Browser.RemoteURL,
		Headless:          cfg.Browser.Headless,
		Stealth:           cfg.Browser.Stealth,
		UserDataDir:       cfg.Browser.UserDataDir,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		KeepOpen:          cfg.Browser.KeepOpen,
		Logger:            log,
	})
	if _, err := manager.Start(ctx); err != nil {
		return nil, err
	}

	tab, err := manager.Open(ctx, cfg.Browser.URL)
	if err != nil {
		manager.Close()
		return nil, err
	}

	return &source{
		page:    page.NewRod(tab, cfg.Scan.Selector),
		tab:     tab,
		manager: manager,
	}, nil
}

func newDeliverer(cfg *config.Config, src *source) (exporter.Deliverer, error) {
	switch strings.ToLower(cfg.Export.Delivery) {
	case "browser":
		if src.tab == nil {
			return nil, errors.New("browser delivery needs a live browser tab")
		}
		dir, err := filepath.Abs(cfg.Export.Directory)
		if err != nil {
			return nil, err
		}
		return browser.NewDownloadDeliverer(src.tab, dir)
	default:
		return storage.NewManager(cfg.Export.Directory, "")
	}
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := trigger.NewTerminal(os.Stdin)
	listenKeys := !cfg.UI.TUI && keys.IsTerminal()

	var console io.Writer = os.Stdout
	if listenKeys {
		console = trigger.NewCRLFWriter(os.Stdout)
		ui.SetOutput(console)
		defer ui.SetOutput(nil)
	}
	if cfg.UI.TUI {
		console = nil
	}
	if err := logger.InitializeWithWriter(&cfg.Logging, console); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("emojiscraper starting")

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	deliverer, err := newDeliverer(cfg, src)
	if err != nil {
		return err
	}

	s, err := scraper.New(cfg, src.page, deliverer)
	if err != nil {
		return err
	}
	if notifications {
		s.SetNotifier(ui.NewNotifier())
	}

	if src.tab != nil {
		bindings := browser.NewBindings(browser.Handlers{
			Manual: func(ctx context.Context) (interface{}, error) {
				res, err := s.Save(ctx)
				return scraper.Summary(res), err
			},
			Keypress: func(ctx context.Context) (interface{}, error) {
				s.SaveOnce()
				res, err := s.Result()
				return scraper.Summary(res), err
			},
		}, log)
		if err := bindings.Install(ctx, src.tab); err != nil {
			return err
		}
		defer bindings.Remove()
	}

	var screen *tui.TUI
	screenDone := make(chan error, 1)
	if cfg.UI.TUI {
		screen = tui.NewTUI(func() { s.SaveOnce() })
		s.SetTUI(screen)
		go func() {
			err := screen.Start()
			select {
			case <-s.Done():
			default:
				// quit before saving
				cancel()
			}
			screenDone <- err
		}()
	}

	keysDone := make(chan struct{})
	keyCtx, stopKeys := context.WithCancel(ctx)
	if listenKeys {
		go func() {
			defer close(keysDone)
			if err := keys.Listen(keyCtx, func() { s.SaveOnce() }); errors.Is(err, trigger.ErrInterrupt) {
				cancel()
			}
		}()
	} else {
		close(keysDone)
	}

	runErr := s.Run(ctx)

	// restore the terminal before printing anything else
	stopKeys()
	<-keysDone
	ui.SetOutput(nil)

	if screen != nil {
		if runErr != nil {
			screen.Stop()
		}
		if err := <-screenDone; err != nil {
			log.WithError(err).Warn("Terminal UI failed")
		}
	}

	if runErr != nil {
		return fmt.Errorf("collection failed: %w", runErr)
	}

	if res, _ := s.Result(); res != nil {
		where := res.FileName
		if !strings.EqualFold(cfg.Export.Delivery, "browser") {
			where = filepath.Join(cfg.Export.Directory, res.FileName)
		}
		ui.PrintSuccess(fmt.Sprintf("Saved %d emojis from %d servers to %s", res.Emojis, res.Servers, where))
	}
	return nil
}
