package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/musare/musare-dl/internal/history"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded download runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "history-db",
				Usage: "Run history database (overrides config)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to list",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the songs of one run (ID or ID prefix)",
			},
		},
		Action: runHistory,
	}
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := settings.HistoryDB
	if cmd.IsSet("history-db") {
		path = cmd.String("history-db")
	}
	if path == "" {
		return errors.New("run history is disabled, set history_db in the config file")
	}

	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	if id := cmd.String("run"); id != "" {
		return showRun(ctx, os.Stdout, store, id)
	}

	runs, err := store.Runs(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	fmt.Println(renderRuns(runs, time.Now()))
	return nil
}

// showRun prints the songs of the run whose ID starts with prefix. Only the
// most recent runs are searched.
func showRun(ctx context.Context, w io.Writer, store *history.Store, prefix string) error {
	runs, err := store.Runs(ctx, 1000)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if !strings.HasPrefix(run.ID, prefix) {
			continue
		}
		entries, err := store.Entries(ctx, run.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Run %s: %s (%s) into %s\n", run.ID, run.Playlist, run.Format, run.OutputDir)
		fmt.Fprintln(w, renderEntries(entries))
		return nil
	}
	return fmt.Errorf("no run matches %q", prefix)
}

func renderRuns(runs []history.RunSummary, now time.Time) string {
	headers := []string{"Run", "Playlist", "Format", "Started", "Duration", "Songs", "Completed", "Failed", "State"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.Finished() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.Playlist,
			run.Format.String(),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			duration,
			strconv.Itoa(run.Attempted),
			strconv.Itoa(run.Completed),
			strconv.Itoa(run.Failed),
			runState(run),
		})
	}
	return renderTable(headers, rows, []columnAlignment{
		alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft,
	})
}

func runState(run history.RunSummary) string {
	switch {
	case !run.Finished():
		return "interrupted"
	case run.Cancelled:
		return "cancelled"
	case run.SourceError != "":
		return "source error"
	case run.Failed > 0:
		return "partial"
	default:
		return "done"
	}
}

func renderEntries(entries []history.Entry) string {
	headers := []string{"#", "Song", "Status", "File", "Size", "Detail"}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		size := ""
		if e.Size > 0 {
			size = humanize.Bytes(uint64(e.Size))
		}
		detail := strings.Join(e.Warnings, "; ")
		if e.Error != "" {
			detail = e.Stage + ": " + e.Error
		}
		song := e.SongID
		if e.Title != "" {
			song += " " + e.Title
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			song,
			string(e.Status),
			e.FileName,
			size,
			detail,
		})
	}
	return renderTable(headers, rows, []columnAlignment{
		alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft,
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
