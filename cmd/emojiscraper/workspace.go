package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"emojiscraper/internal/downloader"
	"emojiscraper/pkg/cdn"
	"emojiscraper/pkg/config"
	"emojiscraper/pkg/include"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/ratelimit"
	"emojiscraper/pkg/retry"
	"emojiscraper/pkg/storage"
	"emojiscraper/pkg/ui"
	"emojiscraper/pkg/workspace"

	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspace directories",
}

var workspaceInitCmd = &cobra.Command{
	Use:   "init <workspace>",
	Short: "Create a workspace directory",
	Long: `Create a workspace directory with emojis/, sources/, output-images/ and
output-text/ folders and a default include.txt. Existing files are left
untouched. Save emoji-data.json into the workspace with
'emojiscraper collect -o <workspace>'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := workspace.New(dir).Init(); err != nil {
			return err
		}
		ui.PrintSuccess("Initialized " + dir)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <workspace>",
	Short: "List the emojis include.txt selects",
	Long: `Print every emoji from emoji-data.json that include.txt selects, in the
order they were collected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace.New(args[0])
		emojis, err := ws.Emojis()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if showRules, _ := cmd.Flags().GetBool("rules"); showRules {
			text, err := ws.LoadInclude()
			if err != nil {
				return err
			}
			rules, err := include.Parse(text)
			if err != nil {
				return err
			}
			for _, r := range rules.Rules() {
				target := "server"
				if r.Target == include.TargetEmoji {
					target = "emoji"
				}
				fmt.Fprintf(w, "line %d: %s %s %s\n", r.Line, r.Mode, target, strings.TrimSpace(r.Text))
			}
		}

		for _, e := range emojis {
			fmt.Fprintf(w, "Emoji :%s: from server \"%s\"\n", e.Name, e.Server)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <workspace>",
	Short: "Download the images of the selected emojis",
	Long: `Download the image of every emoji include.txt selects into the workspace's
emojis/ folder. Images are composited over the chat background and saved as
square PNG files named after the emoji id. Files already present are skipped
unless --update is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceInitCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(downloadCmd)

	previewCmd.Flags().Bool("rules", false, "print the parsed include.txt lines first")

	downloadCmd.Flags().Bool("update", false, "download images again even if they exist")
	downloadCmd.Flags().Int("concurrent-downloads", 0, "number of parallel downloads (default 4)")
	downloadCmd.Flags().Int("requests-per-minute", 0, "request budget (default 120)")
	downloadCmd.Flags().Int("burst", 0, "allow up to this many requests back to back")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	update, _ := cmd.Flags().GetBool("update")

	ws := workspace.New(args[0])
	emojis, err := ws.Emojis()
	if err != nil {
		return err
	}

	background, err := config.ParseHexColor(cfg.Download.Background)
	if err != nil {
		return err
	}
	store, err := storage.NewManager(ws.EmojisDir(), cfg.Download.FilePattern)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := cdn.NewClient(cfg.Download.URLTemplate, cfg.Download.DownloadTimeout, log)
	for key, value := range cfg.Download.Headers {
		client.SetHeader(key, value)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Download.MaxRetries + 1
	retryCfg.Logger = log

	pool := downloader.NewWorkerPool(ctx,
		cfg.Download.ConcurrentDownloads,
		client,
		cdn.NewRenderer(cfg.Download.ImageSize, background),
		store,
		ratelimit.New(cfg.Download.RequestsPerMinute, cfg.Download.Burst),
		retryCfg,
		log,
	)

	jobs := make([]downloader.DownloadJob, 0, len(emojis))
	for _, e := range emojis {
		jobs = append(jobs, downloader.DownloadJob{Emoji: e, Force: update})
	}

	ui.PrintInfo("Emojis selected", fmt.Sprintf("%d", len(jobs)))
	debug := cfg.Logging.Level == "debug"
	progress := ui.NewProgressDisplay(ws.EmojisDir(), len(jobs), debug)

	pool.Start()
	stats := pool.DownloadAll(jobs, func(r downloader.DownloadResult) {
		switch {
		case r.Skipped:
			progress.SkipDownload(r.Job.Emoji.ID)
		case r.Success:
			progress.CompleteDownload(r.Job.Emoji.ID, r.Job.Emoji.Name, int64(r.Size))
		default:
			progress.FailDownload(r.Job.Emoji.ID, r.Error)
		}
		if debug {
			log.DebugWithFields("Download pool", map[string]interface{}{
				"queued":  pool.GetQueueSize(),
				"workers": pool.GetActiveWorkers(),
			})
		}
	})
	progress.Complete()
	ui.PrintInfo("Images stored", fmt.Sprintf("%d in %s", store.GetDownloadedCount(), store.GetOutputDir()))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	if stats.Failed > 0 {
		if notifications {
			ui.NewNotifier().SendError("Download finished with errors", fmt.Sprintf("%d of %d images failed", stats.Failed, len(jobs)))
		}
		return fmt.Errorf("%d of %d downloads failed", stats.Failed, len(jobs))
	}
	if notifications {
		ui.NewNotifier().SendSuccess("Download complete", fmt.Sprintf("%d images in %s", stats.Completed+stats.Skipped, ws.EmojisDir()))
	}
	return nil
}
