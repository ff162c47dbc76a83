package main

import (
	"context"
	"errors"
	"os"

	"github.com/musare/musare-dl/internal/logging"
	"github.com/urfave/cli/v3"
)

// errCancelled is returned by the download action when the user stopped the
// batch.
var errCancelled = errors.New("download cancelled")

func main() {
	app := &cli.Command{
		Name:      "musare-dl",
		Usage:     "Download the songs of a Musare playlist",
		UsageText: "musare-dl --playlist-id <id> [options]\nmusare-dl --playlist-file <file.json> [options]",
		Version:   "0.1.0",
		Flags:     downloadFlags(),
		Action:    runDownload,
		Commands: []*cli.Command{
			historyCommand(),
			configCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := logging.New(os.Stderr, false)
		if errors.Is(err, errCancelled) {
			logger.Warn("Download cancelled")
			os.Exit(130)
		}
		logger.Error(err)
		os.Exit(1)
	}
}
