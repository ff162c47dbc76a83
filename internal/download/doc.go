// Package download runs the per-song acquisition pipeline over a playlist.
//
// # Manager
//
// The Manager takes each song of a source.Source in order and runs:
//
//  1. Validate the song record
//  2. Acquire the raw media with yt-dlp (<id>.tmp)
//  3. Transcode it with ffmpeg, applying the trim window (<id>.<ext>)
//  4. Fetch cover art (optional, failures are warnings)
//  5. Write ID3 tags (audio only)
//  6. Rename <id>.<ext> to its normalized name
//
// A failing step fails the song, never the batch. Failures are reported as
// *StepError values naming the stage.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := manager.Run(ctx, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Failed)
//
// # Cancellation
//
// Cancelling ctx stops the batch before the next song or step. The song in
// flight is neither completed nor failed and its working files are removed.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Kind    EventKind     // BatchStarted, Stage, SongFinished, BatchFinished
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    ...
//	}
//
// # Retry Logic
//
// Media and cover art downloads are retried with exponential backoff,
// configurable via settings.DownloadMaxRetries, settings.DownloadRetryCooldown
// and settings.DownloadRetryExponent.
package download
