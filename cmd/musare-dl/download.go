package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/musare/musare-dl/internal/config"
	"github.com/musare/musare-dl/internal/download"
	"github.com/musare/musare-dl/internal/history"
	ioutils "github.com/musare/musare-dl/internal/io"
	"github.com/musare/musare-dl/internal/logging"
	"github.com/musare/musare-dl/internal/media"
	"github.com/musare/musare-dl/internal/model"
	"github.com/musare/musare-dl/internal/preflight"
	"github.com/musare/musare-dl/internal/progress"
	"github.com/musare/musare-dl/internal/source"
	"github.com/musare/musare-dl/internal/tui"
	"github.com/urfave/cli/v3"
)

var summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file (default: user config directory)",
		Sources: cli.EnvVars("MUSARE_DL_CONFIG"),
	}
}

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "playlist-id",
			Aliases: []string{"p"},
			Usage:   "Musare playlist ID (24 hexadecimal characters)",
		},
		&cli.StringFlag{
			Name:    "playlist-file",
			Aliases: []string{"P"},
			Usage:   "Playlist file exported by Musare",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides config)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Download format: audio or video",
		},
		&cli.StringFlag{
			Name:    "images",
			Aliases: []string{"i"},
			Usage:   "Download cover art: true or false",
		},
		&cli.IntFlag{
			Name:  "max-songs",
			Usage: "Stop after this many songs (0 downloads all)",
		},
		&cli.BoolFlag{
			Name:  "playlist",
			Usage: "Create a playlist file of the downloaded songs",
		},
		&cli.StringFlag{
			Name:  "playlist-format",
			Usage: "Playlist file format: m3u, pls, wpl or zpl",
		},
		&cli.StringFlag{
			Name:    "mongo-uri",
			Usage:   "MongoDB connection string of the Musare database",
			Sources: cli.EnvVars("MUSARE_MONGO_URI"),
		},
		&cli.StringFlag{
			Name:  "history-db",
			Usage: "Run history database (empty disables history)",
		},
		configFlag(),
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show the interactive terminal interface",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Show verbose output",
		},
	}
}

// loadSettings reads the config file named by the config flag, or the
// default one.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// resolveSettings merges flags over the config file over the defaults and
// validates the result.
func resolveSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("playlist-id") {
		settings.PlaylistID = strings.TrimSpace(cmd.String("playlist-id"))
	}
	if cmd.IsSet("playlist-file") {
		settings.PlaylistFile = cmd.String("playlist-file")
	}
	if cmd.IsSet("output") {
		settings.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("format") {
		format, err := model.ParseFormat(cmd.String("format"))
		if err != nil {
			return nil, err
		}
		settings.Format = format
	}
	if cmd.IsSet("images") {
		images, err := config.ParseBool(cmd.String("images"))
		if err != nil {
			return nil, fmt.Errorf("images: %w", err)
		}
		settings.DownloadImages = images
	}
	if cmd.IsSet("max-songs") {
		settings.MaxSongs = cmd.Int("max-songs")
	}
	if cmd.IsSet("playlist") {
		settings.CreatePlaylist = cmd.Bool("playlist")
	}
	if cmd.IsSet("playlist-format") {
		settings.PlaylistFormat = cmd.String("playlist-format")
	}
	if cmd.IsSet("mongo-uri") {
		settings.Mongo.URI = cmd.String("mongo-uri")
	}
	if cmd.IsSet("history-db") {
		settings.HistoryDB = cmd.String("history-db")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func runDownload(ctx context.Context, cmd *cli.Command) error {
	verbose := cmd.Bool("verbose")
	logger := logging.New(os.Stderr, verbose)

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := preflight.Run(ctx, preflightChecks(settings)...); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	unlock, err := ioutils.LockDir(settings.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("release lock", "err", err)
		}
	}()

	src, err := openSource(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close playlist source", "err", err)
		}
	}()

	var opts []download.Option
	if settings.HistoryDB != "" {
		store, err := history.Open(ctx, settings.HistoryDB)
		if err != nil {
			logger.Warn("run history disabled", "err", err)
		} else {
			defer store.Close()
			opts = append(opts, download.WithLedger(store))
		}
	}

	useTUI := cmd.Bool("tui")
	if useTUI {
		// Log lines would tear the interface.
		opts = append(opts, download.WithLogger(logging.Discard()))
	} else {
		opts = append(opts, download.WithLogger(logger))
	}

	reporter := newReporter(useTUI, verbose, cancel, logger)
	manager := download.NewManager(settings, reporter.Handle, opts...)
	report, err := manager.Run(ctx, src)
	if cerr := reporter.Close(); cerr != nil {
		logger.Warn("close progress display", "err", cerr)
	}
	if err != nil {
		return err
	}

	printSummary(os.Stdout, report, settings.OutputDir)

	switch {
	case report.Cancelled:
		return errCancelled
	case report.SourceErr != nil:
		return fmt.Errorf("read playlist: %w", report.SourceErr)
	}
	return nil
}

// preflightChecks resolves the tools the same way the download pipeline
// does. An empty yt-dlp path is left to go-ytdlp and not checked.
func preflightChecks(settings *config.Settings) []preflight.Check {
	checks := []preflight.Check{
		preflight.Binary("ffmpeg", media.NewFFmpeg(settings.FFmpegPath).Binary()),
	}
	if ytdlp := media.NewYTDLP(settings.YTDLPPath, 0).Executable(); ytdlp != "" {
		checks = append(checks, preflight.Binary("yt-dlp", ytdlp))
	}
	return append(checks, preflight.Writable(settings.OutputDir))
}

func openSource(ctx context.Context, settings *config.Settings) (source.Source, error) {
	if settings.PlaylistFile != "" {
		return source.OpenFile(settings.PlaylistFile)
	}
	return source.OpenMongo(ctx, settings.Mongo, settings.PlaylistID)
}

// newReporter picks the progress display: the TUI when asked for, a
// progress bar on an interactive terminal, log lines otherwise.
func newReporter(useTUI, verbose bool, cancel context.CancelFunc, logger *log.Logger) progress.Reporter {
	fd := os.Stderr.Fd()
	switch {
	case useTUI:
		return tui.Start(cancel, verbose)
	case isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd):
		return progress.NewBar(os.Stderr, verbose)
	default:
		return progress.NewLog(logger)
	}
}

func printSummary(w io.Writer, report *model.Report, dir string) {
	var size int64
	for _, o := range report.CompletedOutcomes() {
		size += o.Size
	}
	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Second)
	line := fmt.Sprintf("Saved %d of %d songs (%s) to %s in %s",
		len(report.Completed), report.Attempted, humanize.Bytes(uint64(size)), dir, elapsed)
	fmt.Fprintln(w, summaryStyle.Render(line))
}
