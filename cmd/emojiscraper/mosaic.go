package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"emojiscraper/pkg/config"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
	"emojiscraper/pkg/mosaic"
	"emojiscraper/pkg/storage"
	"emojiscraper/pkg/ui"
	"emojiscraper/pkg/workspace"

	"github.com/spf13/cobra"
)

var mosaicCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Rebuild a picture out of emojis",
	Long: `Match every cell of a source picture against the downloaded images of the
emojis include.txt selects. Bare source names are read from the workspace's
sources/ directory.

The output name is the source name followed by --suffix, which may use the
placeholders {we} (width in emojis), {r} (resize), {hw}, {sw} and {vw}
(channel weights).`,
}

var mosaicTextCmd = &cobra.Command{
	Use:   "text <workspace> <source> <width-emojis> <resize>",
	Short: "Print the mosaic as emoji text",
	Args:  cobra.ExactArgs(4),
	RunE:  runMosaicText,
}

var mosaicCompositeCmd = &cobra.Command{
	Use:   "composite <workspace> <source> <width-emojis> <resize> <resize-width>",
	Short: "Save the mosaic as a PNG built from the emoji images",
	Long: `Draw the mosaic with the downloaded emoji images and save it to
output-images/. The result is scaled to resize-width pixels; 0 keeps one
image-size square per emoji.`,
	Args: cobra.ExactArgs(5),
	RunE: runMosaicComposite,
}

func init() {
	rootCmd.AddCommand(mosaicCmd)
	mosaicCmd.AddCommand(mosaicTextCmd)
	mosaicCmd.AddCommand(mosaicCompositeCmd)

	mosaicCmd.PersistentFlags().String("suffix", mosaic.DefaultSuffix, "appended to the source name to name the output")
	mosaicCmd.PersistentFlags().Float64("hue-weight", 1, "weight of hue differences")
	mosaicCmd.PersistentFlags().Float64("saturation-weight", 1, "weight of saturation differences")
	mosaicCmd.PersistentFlags().Float64("value-weight", 1, "weight of value differences")

	mosaicTextCmd.Flags().Bool("save", false, "save the text to output-text/")
	mosaicTextCmd.Flags().Bool("show", false, "print the text even when saving")
}

// mosaicRun is a matched mosaic with everything needed to write it out.
type mosaicRun struct {
	ctx     context.Context
	cfg     *config.Config
	ws      *workspace.Workspace
	builder *mosaic.Builder
	mosaic  *mosaic.Mosaic
	name    string
}

func positiveArg(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, v)
	}
	return n, nil
}

func matchMosaic(cmd *cobra.Command, args []string) (*mosaicRun, func(), error) {
	widthEmojis, err := positiveArg("width-emojis", args[2])
	if err != nil {
		return nil, nil, err
	}
	resize, err := positiveArg("resize", args[3])
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, err
	}
	log := logger.GetLogger()

	ws := workspace.New(args[0])
	emojis, err := ws.Emojis()
	if err != nil {
		return nil, nil, err
	}
	images, err := storage.NewManager(ws.EmojisDir(), cfg.Download.FilePattern)
	if err != nil {
		return nil, nil, err
	}

	opts := mosaic.Options{
		WidthEmojis:      widthEmojis,
		Resize:           resize,
		HueWeight:        cfg.Mosaic.HueWeight,
		SaturationWeight: cfg.Mosaic.SaturationWeight,
		ValueWeight:      cfg.Mosaic.ValueWeight,
	}
	builder, err := mosaic.NewBuilder(emojis, images, opts, log)
	if err != nil {
		return nil, nil, err
	}

	sourcePath := ws.SourcePath(args[1])
	src, err := mosaic.LoadImage(sourcePath)
	if err != nil {
		return nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	m, err := builder.Match(ctx, src)
	if err != nil {
		stop()
		return nil, nil, err
	}

	base := filepath.Base(sourcePath)
	return &mosaicRun{
		ctx:     ctx,
		cfg:     cfg,
		ws:      ws,
		builder: builder,
		mosaic:  m,
		name:    strings.TrimSuffix(base, filepath.Ext(base)) + opts.Suffix(cfg.Mosaic.Suffix),
	}, stop, nil
}

// save writes an output file atomically into dir and returns its path.
func (r *mosaicRun) save(dir string, artifact models.Artifact) (string, error) {
	store, err := storage.NewManager(dir, "")
	if err != nil {
		return "", err
	}
	if err := store.Deliver(r.ctx, artifact); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", artifact.Name, err)
	}
	return filepath.Join(dir, artifact.Name), nil
}

func runMosaicText(cmd *cobra.Command, args []string) error {
	run, stop, err := matchMosaic(cmd, args)
	if err != nil {
		return err
	}
	defer stop()

	save, _ := cmd.Flags().GetBool("save")
	show, _ := cmd.Flags().GetBool("show")
	text := run.mosaic.Text()

	if save {
		path, err := run.save(run.ws.OutputTextDir(), models.Artifact{
			Name:     run.name + ".txt",
			MIMEType: "text/plain",
			Data:     []byte(text),
		})
		if err != nil {
			return err
		}
		ui.PrintSuccess("Saved " + path)
	}
	if show || !save {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}
	return nil
}

func runMosaicComposite(cmd *cobra.Command, args []string) error {
	width, err := strconv.Atoi(args[4])
	if err != nil || width < 0 {
		return fmt.Errorf("resize-width must be a number, got %q", args[4])
	}

	run, stop, err := matchMosaic(cmd, args)
	if err != nil {
		return err
	}
	defer stop()

	img, err := run.builder.Composite(run.mosaic, run.cfg.Download.ImageSize, width)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode mosaic: %w", err)
	}

	path, err := run.save(run.ws.OutputImagesDir(), models.Artifact{
		Name:     run.name + ".png",
		MIMEType: "image/png",
		Data:     buf.Bytes(),
	})
	if err != nil {
		return err
	}
	ui.PrintSuccess("Saved " + path)
	ui.PrintInfo("Size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()))
	return nil
}
