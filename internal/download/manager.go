package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/musare/musare-dl/internal/audio"
	"github.com/musare/musare-dl/internal/config"
	"github.com/musare/musare-dl/internal/http"
	ioutils "github.com/musare/musare-dl/internal/io"
	"github.com/musare/musare-dl/internal/logging"
	"github.com/musare/musare-dl/internal/media"
	"github.com/musare/musare-dl/internal/model"
	"github.com/musare/musare-dl/internal/source"
)

// ThumbnailSize is the edge length of the icon embedded in audio files.
const ThumbnailSize = 32

// Fetcher downloads the raw media of a song to dest.
type Fetcher interface {
	Fetch(ctx context.Context, song model.Song, format model.Format, dest string) error
}

// Transcoder converts a raw download into the target format.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, trim *model.Trim) error
}

// ArtworkFetcher downloads cover images.
type ArtworkFetcher interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// Tagger writes metadata tags to an audio file.
type Tagger interface {
	SaveTags(path string, tags audio.Tags) error
}

// Ledger records runs and their outcomes.
type Ledger interface {
	BeginRun(ctx context.Context, run model.Run) error
	RecordOutcome(ctx context.Context, runID string, o model.Outcome) error
	FinishRun(ctx context.Context, report *model.Report) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithFetcher replaces the yt-dlp fetcher.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// WithTranscoder replaces the ffmpeg transcoder.
func WithTranscoder(t Transcoder) Option {
	return func(m *Manager) { m.transcoder = t }
}

// WithArtworkFetcher replaces the HTTP client used for cover images.
func WithArtworkFetcher(a ArtworkFetcher) Option {
	return func(m *Manager) { m.artwork = a }
}

// WithTagger replaces the ID3 tagger.
func WithTagger(t Tagger) Option {
	return func(m *Manager) { m.tagger = t }
}

// WithLedger records every run in l.
func WithLedger(l Ledger) Option {
	return func(m *Manager) { m.ledger = l }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager runs the per-song pipeline over a playlist.
//
// Songs are processed one at a time in source order. A failing song is
// recorded and skipped; only cancellation stops the batch early.
type Manager struct {
	settings     *config.Settings
	fetcher      Fetcher
	transcoder   Transcoder
	artwork      ArtworkFetcher
	tagger       Tagger
	ledger       Ledger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService
	logger       *log.Logger

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager. settings must not be modified
// while the manager is in use.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:     settings,
		fetcher:      media.NewYTDLP(settings.YTDLPPath, settings.VideoMaxHeight),
		transcoder:   media.NewFFmpeg(settings.FFmpegPath),
		artwork:      http.NewClient(),
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		playlist:     audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		logger:       logging.Discard(),
		onProgress:   onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// batch holds the state of one Run.
type batch struct {
	report  *model.Report
	entries []audio.PlaylistEntry
	logger  *log.Logger
}

// Run processes the songs of src and returns the batch report.
//
// Per-song failures never produce an error: they are recorded in the
// report. An error is returned only when the batch could not start. A
// cancelled ctx stops the batch before the next song or step and marks the
// report as cancelled; the interrupted song is neither completed nor
// failed.
func (m *Manager) Run(ctx context.Context, src source.Source) (*model.Report, error) {
	total, err := src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count songs: %w", err)
	}
	maxSongs := m.settings.MaxSongs
	if maxSongs > 0 && total > maxSongs {
		total = maxSongs
	}

	if m.settings.DownloadImages {
		if err := ioutils.EnsureDir(filepath.Join(m.settings.OutputDir, ioutils.ImagesDir)); err != nil {
			return nil, fmt.Errorf("create images directory: %w", err)
		}
	}

	b := &batch{report: &model.Report{RunID: uuid.NewString(), StartedAt: time.Now()}}
	b.logger = m.logger.With("run", b.report.RunID)

	m.beginRun(ctx, b, src.Name())
	m.progress(ProgressEvent{
		Kind:    EventBatchStarted,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d songs from %s", total, src.Name()),
		Level:   LevelInfo,
	})

	for song, err := range src.Songs(ctx) {
		var songErr *source.SongError
		if err != nil && !errors.As(err, &songErr) {
			if ctx.Err() != nil {
				b.report.Cancelled = true
				break
			}
			b.report.SourceErr = err
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading playlist: %v", err), Level: LevelError})
			break
		}
		if ctx.Err() != nil {
			b.report.Cancelled = true
			break
		}

		b.report.Attempted++
		var outcome model.Outcome
		if songErr != nil {
			outcome, _ = failed(model.Outcome{SongID: song.ID, Title: song.Title},
				&StepError{SongID: song.ID, Stage: StageValidate, Err: songErr})
		} else {
			outcome, err = m.processSong(ctx, b, song)
			if isCancellation(ctx, err) {
				b.report.Cancelled = true
				break
			}
		}
		m.finishSong(ctx, b, outcome)

		if maxSongs > 0 && b.report.Attempted >= maxSongs {
			break
		}
	}

	if b.report.Cancelled {
		m.progress(ProgressEvent{Message: "Cancelled downloads", Level: LevelWarning})
	}
	if m.settings.CreatePlaylist && len(b.entries) > 0 {
		m.writePlaylist(b, src.Name())
	}

	b.report.FinishedAt = time.Now()
	m.finishRun(ctx, b)
	m.progress(ProgressEvent{
		Kind:    EventBatchFinished,
		Message: summary(b.report),
		Level:   summaryLevel(b.report),
		Report:  b.report,
	})
	return b.report, nil
}

// songJob holds the working paths and outcome of one song.
type songJob struct {
	song       model.Song
	outcome    model.Outcome
	label      string
	name       string
	ext        string
	raw        string
	transcoded string

	// images lists the image files written for this song in this run.
	images []string
}

// processSong runs the pipeline for one song. A returned error is either a
// *StepError or the cancellation of ctx.
func (m *Manager) processSong(ctx context.Context, b *batch, song model.Song) (model.Outcome, error) {
	outcome := model.Outcome{SongID: song.ID, Title: song.Title}

	if err := song.Validate(); err != nil {
		return failed(outcome, &StepError{SongID: song.ID, Stage: StageValidate, Err: err})
	}

	dir := m.settings.OutputDir
	job := &songJob{
		song:    song,
		outcome: outcome,
		label:   fmt.Sprintf("(%s) %s", song.ID, song.DisplayName()),
		name:    ioutils.NormalizeFileName(song.Artists, song.Title, song.ID),
		ext:     m.settings.Format.Extension(),
		raw:     ioutils.WorkingPath(dir, song.ID, ioutils.TempExtension),
	}
	if job.name == "" {
		job.name = song.ID
	}
	job.transcoded = ioutils.WorkingPath(dir, song.ID, job.ext)

	err := m.runSteps(ctx, b, job)
	if err == nil {
		return job.outcome, nil
	}
	m.cleanup(b, job)
	if isCancellation(ctx, err) {
		return job.outcome, err
	}
	return failed(job.outcome, err)
}

func failed(outcome model.Outcome, err error) (model.Outcome, error) {
	outcome.Status = model.StatusFailed
	outcome.Err = err
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		outcome.Stage = string(stepErr.Stage)
	}
	return outcome, err
}

func (m *Manager) runSteps(ctx context.Context, b *batch, job *songJob) error {
	song := job.song
	format := m.settings.Format

	// Acquire
	if err := ctx.Err(); err != nil {
		return err
	}
	m.stage(song.ID, StageAcquire, "Downloading "+job.label+"..")
	err := m.retry(ctx, song.ID, "download", func() error {
		return m.fetcher.Fetch(ctx, song, format, job.raw)
	})
	if err != nil {
		return m.stepError(ctx, song.ID, StageAcquire, err)
	}

	// Transcode
	if err := ctx.Err(); err != nil {
		return err
	}
	m.stage(song.ID, StageTranscode, "Converting "+job.label+"..")
	if err := m.transcoder.Transcode(ctx, job.raw, job.transcoded, song.Trim); err != nil {
		return m.stepError(ctx, song.ID, StageTranscode, err)
	}
	if err := ioutils.RemoveIfExists(job.raw); err != nil {
		m.warn(b, job, fmt.Sprintf("could not remove %s: %v", filepath.Base(job.raw), err))
	}

	// Artwork
	var tags audio.Tags
	if m.settings.DownloadImages {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.stage(song.ID, StageArtwork, "Downloading Images for "+job.label+"..")
		icon, cover, err := m.fetchArtwork(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.warn(b, job, fmt.Sprintf("Error downloading album art for %s, skipping: %v", job.label, err))
		}
		tags.Icon, tags.Cover = icon, cover
	}

	// Tag
	if format.IsAudio() {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.stage(song.ID, StageTag, "Tagging "+job.label+"..")
		tags.Artist = song.TagArtist()
		tags.Title = song.Title
		tags.Album = song.Album
		if err := m.tagger.SaveTags(job.transcoded, tags); err != nil {
			return m.stepError(ctx, song.ID, StageTag, err)
		}
	}

	// Finalize
	if err := ctx.Err(); err != nil {
		return err
	}
	m.stage(song.ID, StageFinalize, "Finalizing "+job.label+"..")
	final, err := ioutils.Finalize(m.settings.OutputDir, song.ID, job.name, job.ext)
	if err != nil {
		return m.stepError(ctx, song.ID, StageFinalize, err)
	}

	job.outcome.Status = model.StatusSucceeded
	job.outcome.FileName = filepath.Base(final)
	if info, err := os.Stat(final); err == nil {
		job.outcome.Size = info.Size()
	}

	entry := audio.PlaylistEntry{
		FileName: job.outcome.FileName,
		Artist:   strings.Join(song.Artists, ", "),
		Title:    song.Title,
	}
	if song.Trim != nil {
		entry.Duration = song.Trim.Duration
	}
	b.entries = append(b.entries, entry)
	return nil
}

// fetchArtwork downloads the cover image of the song and writes the full
// size JPEG and, for audio, the thumbnail. It returns the encoded images for
// tagging. On failure the image files it wrote are removed again; files
// left by earlier runs are only touched once a new image replaces them.
func (m *Manager) fetchArtwork(ctx context.Context, job *songJob) (icon, cover []byte, err error) {
	song := job.song
	if song.Thumbnail == "" {
		return nil, nil, errors.New("song has no thumbnail")
	}
	full, thumb := ioutils.ImagePaths(m.settings.OutputDir, job.name)
	defer func() {
		if err != nil {
			_ = ioutils.RemoveIfExists(job.images...)
			job.images = nil
		}
	}()

	var data []byte
	err = m.retry(ctx, song.ID, "artwork", func() error {
		var dlErr error
		data, dlErr = m.artwork.DownloadBytes(ctx, song.Thumbnail)
		return dlErr
	})
	if err != nil {
		return nil, nil, err
	}

	img, err := m.imageService.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	cover, err = m.imageService.EncodeJPEG(img)
	if err != nil {
		return nil, nil, err
	}
	if err = m.writeImage(job, full, cover); err != nil {
		return nil, nil, err
	}

	if !m.settings.Format.IsAudio() {
		return nil, nil, nil
	}

	icon, err = m.imageService.Thumbnail(img, ThumbnailSize, ThumbnailSize)
	if err != nil {
		return nil, nil, err
	}
	if err = m.writeImage(job, thumb, icon); err != nil {
		return nil, nil, err
	}
	return icon, cover, nil
}

func (m *Manager) writeImage(job *songJob, path string, data []byte) error {
	job.images = append(job.images, path)
	return ioutils.WriteFile(path, data)
}

// cleanup removes the working files of a song that did not complete,
// together with the images written for it in this run.
func (m *Manager) cleanup(b *batch, job *songJob) {
	paths := append([]string{job.raw, job.raw + ".part", job.transcoded}, job.images...)
	if err := ioutils.RemoveIfExists(paths...); err != nil {
		b.logger.Warn("cleanup failed", "song", job.song.ID, "err", err)
	}
}

func (m *Manager) finishSong(ctx context.Context, b *batch, outcome model.Outcome) {
	label := outcome.SongID
	if outcome.Title != "" {
		label = fmt.Sprintf("(%s) %s", outcome.SongID, outcome.Title)
	}

	if outcome.Succeeded() {
		b.logger.Debug("song completed", "song", outcome.SongID, "file", outcome.FileName)
		m.progress(ProgressEvent{
			Kind:    EventSongFinished,
			SongID:  outcome.SongID,
			Status:  model.StatusSucceeded,
			Message: "Downloaded " + label,
			Level:   LevelSuccess,
		})
	} else {
		b.logger.Debug("song failed", "song", outcome.SongID, "stage", outcome.Stage, "err", outcome.Err)
		m.progress(ProgressEvent{
			Kind:    EventSongFinished,
			SongID:  outcome.SongID,
			Stage:   Stage(outcome.Stage),
			Status:  model.StatusFailed,
			Message: fmt.Sprintf("Error downloading %s, skipping: %v", label, outcome.Err),
			Level:   LevelError,
		})
	}

	b.report.Record(outcome)
	if m.ledger != nil {
		if err := m.ledger.RecordOutcome(context.WithoutCancel(ctx), b.report.RunID, outcome); err != nil {
			b.logger.Warn("history write failed", "song", outcome.SongID, "err", err)
		}
	}
}

func (m *Manager) beginRun(ctx context.Context, b *batch, playlist string) {
	if m.ledger == nil {
		return
	}
	run := model.Run{
		ID:        b.report.RunID,
		Playlist:  playlist,
		Format:    m.settings.Format,
		OutputDir: m.settings.OutputDir,
		StartedAt: b.report.StartedAt,
	}
	if err := m.ledger.BeginRun(ctx, run); err != nil {
		b.logger.Warn("history write failed", "err", err)
	}
}

func (m *Manager) finishRun(ctx context.Context, b *batch) {
	if m.ledger == nil {
		return
	}
	if err := m.ledger.FinishRun(context.WithoutCancel(ctx), b.report); err != nil {
		b.logger.Warn("history write failed", "err", err)
	}
}

func (m *Manager) writePlaylist(b *batch, name string) {
	base := ioutils.Slugify(name)
	if base == "" {
		base = "playlist"
	}
	path := filepath.Join(m.settings.OutputDir, base+m.playlist.Format().Extension())

	content := m.playlist.CreatePlaylist(name, b.entries)
	if err := ioutils.WriteFile(path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: "Created playlist " + filepath.Base(path), Level: LevelSuccess})
}

// retry runs fn up to DownloadMaxRetries times with an exponential
// cooldown between attempts. It gives up early when ctx is done.
func (m *Manager) retry(ctx context.Context, songID, what string, fn func() error) error {
	attempts := max(m.settings.DownloadMaxRetries, 1)

	var err error
	for tries := 0; tries < attempts; tries++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil || tries+1 == attempts {
			break
		}
		m.progress(ProgressEvent{
			SongID:  songID,
			Message: fmt.Sprintf("Retry %d/%d %s for %s: %v", tries+1, attempts-1, what, songID, err),
			Level:   LevelVerbose,
		})
		m.waitForRetry(ctx, tries)
	}
	return err
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

// stepError wraps a step failure, or returns the context error when the
// step failed because the batch was cancelled.
func (m *Manager) stepError(ctx context.Context, songID string, stage Stage, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &StepError{SongID: songID, Stage: stage, Err: err}
}

func (m *Manager) stage(songID string, stage Stage, message string) {
	m.progress(ProgressEvent{Kind: EventStage, SongID: songID, Stage: stage, Message: message, Level: LevelInfo})
}

func (m *Manager) warn(b *batch, job *songJob, message string) {
	job.outcome.Warnings = append(job.outcome.Warnings, message)
	b.logger.Debug("song warning", "song", job.song.ID, "warning", message)
	m.progress(ProgressEvent{SongID: job.song.ID, Message: message, Level: LevelWarning})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func summary(r *model.Report) string {
	msg := fmt.Sprintf("Finished: %d completed, %d failed", len(r.Completed), len(r.Failed))
	if len(r.Failed) > 0 {
		msg += fmt.Sprintf("\nFailed Songs (%d): %s", len(r.Failed), strings.Join(r.Failed, ", "))
	}
	return msg
}

func summaryLevel(r *model.Report) ProgressLevel {
	switch {
	case len(r.Failed) > 0 || r.SourceErr != nil:
		return LevelError
	case r.Cancelled:
		return LevelWarning
	default:
		return LevelSuccess
	}
}
