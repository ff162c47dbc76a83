package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"iter"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dhowden/tag"
	"github.com/musare/musare-dl/internal/audio"
	"github.com/musare/musare-dl/internal/config"
	"github.com/musare/musare-dl/internal/model"
	"github.com/musare/musare-dl/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name     string
	songs    []model.Song
	countErr error
	// iterErrAt yields iterErr instead of the song at that index.
	iterErrAt int
	iterErr   error
	// unreadable yields a *source.SongError for the songs at these indexes.
	unreadable map[int]bool
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Count(context.Context) (int, error) {
	return len(s.songs), s.countErr
}

func (s *fakeSource) Songs(context.Context) iter.Seq2[model.Song, error] {
	return func(yield func(model.Song, error) bool) {
		for i, song := range s.songs {
			if s.iterErr != nil && i == s.iterErrAt {
				yield(model.Song{}, s.iterErr)
				return
			}
			if s.unreadable[i] {
				err := &source.SongError{SongID: song.ID, Err: errors.New("decode song: bad duration")}
				if !yield(model.Song{ID: song.ID}, err) {
					return
				}
				continue
			}
			if !yield(song, nil) {
				return
			}
		}
	}
}

func (s *fakeSource) Close(context.Context) error { return nil }

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	formats []model.Format
	// failures counts how many times a song fails before succeeding; a
	// negative value fails forever.
	failures map[string]int
	onFetch  func(song model.Song) error
}

func (f *fakeFetcher) Fetch(_ context.Context, song model.Song, format model.Format, dest string) error {
	f.mu.Lock()
	f.calls = append(f.calls, song.ID)
	f.formats = append(f.formats, format)
	f.mu.Unlock()

	if f.onFetch != nil {
		if err := f.onFetch(song); err != nil {
			return err
		}
	}
	if n, ok := f.failures[song.ID]; ok && n != 0 {
		f.failures[song.ID] = n - 1
		return fmt.Errorf("fetch %s failed", song.ID)
	}
	return os.WriteFile(dest, []byte("raw media"), 0644)
}

func (f *fakeFetcher) attempts(id string) int {
	n := 0
	for _, c := range f.calls {
		if c == id {
			n++
		}
	}
	return n
}

type fakeTranscoder struct {
	fail map[string]bool
	trim map[string]*model.Trim
}

func (t *fakeTranscoder) Transcode(_ context.Context, input, output string, trim *model.Trim) error {
	id := trimExt(filepath.Base(input))
	if t.trim != nil {
		t.trim[id] = trim
	}
	if t.fail[id] {
		_ = os.WriteFile(output, []byte("partial"), 0644)
		return errors.New("ffmpeg exited with status 1")
	}
	if _, err := os.Stat(input); err != nil {
		return err
	}
	return os.WriteFile(output, []byte("transcoded media"), 0644)
}

type failingTagger struct{}

func (failingTagger) SaveTags(string, audio.Tags) error {
	return errors.New("tag write failed")
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

type fakeLedger struct {
	runs     []model.Run
	outcomes []model.Outcome
	finished *model.Report
}

func (l *fakeLedger) BeginRun(_ context.Context, run model.Run) error {
	l.runs = append(l.runs, run)
	return nil
}

func (l *fakeLedger) RecordOutcome(_ context.Context, _ string, o model.Outcome) error {
	l.outcomes = append(l.outcomes, o)
	return nil
}

func (l *fakeLedger) FinishRun(_ context.Context, report *model.Report) error {
	l.finished = report
	return nil
}

func artworkServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/cover.png" {
			nethttp.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.OutputDir = t.TempDir()
	s.DownloadMaxRetries = 2
	s.DownloadRetryCooldown = 0
	s.HistoryDB = ""
	return s
}

func song(id, artist, title string) model.Song {
	return model.Song{ID: id, Artists: []string{artist}, Title: title, YouTubeID: "yt-" + id}
}

func songs(n int) []model.Song {
	out := make([]model.Song, n)
	for i := range out {
		out[i] = song(fmt.Sprintf("s%d", i), "Artist", fmt.Sprintf("Title %d", i))
	}
	return out
}

type recorder struct {
	events []ProgressEvent
}

func (r *recorder) handle(e ProgressEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) kind(k EventKind) []ProgressEvent {
	var out []ProgressEvent
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestManager_EndToEnd(t *testing.T) {
	srv := artworkServer(t)
	settings := testSettings(t)
	dir := settings.OutputDir

	a := song("a", "X", "Song1")
	b := song("b", "Y", "Song2")
	b.Thumbnail = srv.URL + "/cover.png"
	b.Album = "Album Two"

	rec := &recorder{}
	manager := NewManager(settings, rec.handle,
		WithFetcher(&fakeFetcher{}),
		WithTranscoder(&fakeTranscoder{}),
	)

	report, err := manager.Run(context.Background(), &fakeSource{name: "Chill", songs: []model.Song{a, b}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, report.Completed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 2, report.Attempted)
	assert.False(t, report.Cancelled)
	assert.NotEmpty(t, report.RunID)

	assert.ElementsMatch(t, []string{"images", "x-song1-a.mp3", "y-song2-b.mp3"}, dirNames(t, dir))
	assert.ElementsMatch(t, []string{"y-song2-b.jpg", "y-song2-b.thumb.jpg"}, dirNames(t, filepath.Join(dir, "images")))

	// Song a has no thumbnail: it completes with a warning.
	require.Len(t, report.Outcomes, 2)
	assert.NotEmpty(t, report.Outcomes[0].Warnings)
	assert.Empty(t, report.Outcomes[1].Warnings)
	assert.Equal(t, "y-song2-b.mp3", report.Outcomes[1].FileName)
	assert.Positive(t, report.Outcomes[1].Size)

	thumb, err := os.Open(filepath.Join(dir, "images", "y-song2-b.thumb.jpg"))
	require.NoError(t, err)
	defer thumb.Close()
	cfg, err := jpeg.DecodeConfig(thumb)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 32, cfg.Height)

	f, err := os.Open(filepath.Join(dir, "y-song2-b.mp3"))
	require.NoError(t, err)
	defer f.Close()
	m, err := tag.ReadFrom(f)
	require.NoError(t, err)
	assert.Equal(t, "Y", m.Artist())
	assert.Equal(t, "Song2", m.Title())
	assert.Equal(t, "Album Two", m.Album())
	assert.NotNil(t, m.Picture())

	require.Len(t, rec.kind(EventBatchStarted), 1)
	assert.Equal(t, 2, rec.kind(EventBatchStarted)[0].Total)
	assert.Len(t, rec.kind(EventSongFinished), 2)
	finished := rec.kind(EventBatchFinished)
	require.Len(t, finished, 1)
	assert.Same(t, report, finished[0].Report)
}

func TestManager_Cap(t *testing.T) {
	tests := []struct {
		name      string
		songs     int
		maxSongs  int
		wantCount int
	}{
		{"cap below count", 5, 3, 3},
		{"no cap", 5, 0, 5},
		{"cap above count", 2, 4, 2},
		{"cap equals count", 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			settings.DownloadImages = false
			settings.MaxSongs = tt.maxSongs

			fetcher := &fakeFetcher{}
			rec := &recorder{}
			manager := NewManager(settings, rec.handle, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{}))

			report, err := manager.Run(context.Background(), &fakeSource{songs: songs(tt.songs)})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCount, report.Attempted)
			assert.Len(t, report.Completed, tt.wantCount)
			assert.Len(t, fetcher.calls, tt.wantCount)
			assert.Equal(t, tt.wantCount, rec.kind(EventBatchStarted)[0].Total)
		})
	}
}

func TestManager_CapCountsFailures(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false
	settings.MaxSongs = 2

	list := songs(4)
	list[0].YouTubeID = ""

	fetcher := &fakeFetcher{}
	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: list})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, []string{"s0"}, report.Failed)
	assert.Equal(t, []string{"s1"}, report.Completed)
}

func TestManager_ArtworkFailure(t *testing.T) {
	srv := artworkServer(t)
	settings := testSettings(t)
	dir := settings.OutputDir

	s := song("a", "X", "Song1")
	s.Thumbnail = srv.URL + "/missing.png"

	report, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: []model.Song{s}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Completed)
	require.Len(t, report.Outcomes, 1)
	assert.NotEmpty(t, report.Outcomes[0].Warnings)
	assert.FileExists(t, filepath.Join(dir, "x-song1-a.mp3"))
	assert.Empty(t, dirNames(t, filepath.Join(dir, "images")))
}

func TestManager_ArtworkUndecodable(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	settings := testSettings(t)
	s := song("a", "X", "Song1")
	s.Thumbnail = srv.URL

	report, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: []model.Song{s}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Completed)
	assert.Empty(t, dirNames(t, filepath.Join(settings.OutputDir, "images")))
}

func TestManager_TranscodeFailure(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false
	dir := settings.OutputDir

	list := []model.Song{song("a", "X", "Song1"), song("b", "Y", "Song2")}
	transcoder := &fakeTranscoder{fail: map[string]bool{"a": true}}

	rec := &recorder{}
	report, err := NewManager(settings, rec.handle, WithFetcher(&fakeFetcher{}), WithTranscoder(transcoder)).
		Run(context.Background(), &fakeSource{songs: list})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Failed)
	assert.Equal(t, []string{"b"}, report.Completed)
	assert.Equal(t, []string{"y-song2-b.mp3"}, dirNames(t, dir))

	require.Len(t, report.Outcomes, 2)
	failure := report.Outcomes[0]
	assert.Equal(t, model.StatusFailed, failure.Status)
	assert.Equal(t, string(StageTranscode), failure.Stage)

	var stepErr *StepError
	require.True(t, errors.As(failure.Err, &stepErr))
	assert.Equal(t, "a", stepErr.SongID)
	assert.Equal(t, StageTranscode, stepErr.Stage)

	finished := rec.kind(EventBatchFinished)
	require.Len(t, finished, 1)
	assert.Contains(t, finished[0].Message, "Failed Songs (1): a")
	assert.Equal(t, LevelError, finished[0].Level)
}

func TestManager_AcquireRetries(t *testing.T) {
	tests := []struct {
		name          string
		failures      int
		wantCompleted bool
		wantAttempts  int
	}{
		{"succeeds first time", 0, true, 1},
		{"succeeds after retry", 1, true, 2},
		{"fails every time", -1, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			settings.DownloadImages = false

			fetcher := &fakeFetcher{failures: map[string]int{"a": tt.failures}}
			report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
				Run(context.Background(), &fakeSource{songs: []model.Song{song("a", "X", "Song1")}})
			require.NoError(t, err)

			assert.Equal(t, tt.wantAttempts, fetcher.attempts("a"))
			if tt.wantCompleted {
				assert.Equal(t, []string{"a"}, report.Completed)
				return
			}
			assert.Equal(t, []string{"a"}, report.Failed)
			assert.Equal(t, string(StageAcquire), report.Outcomes[0].Stage)
			assert.Empty(t, dirNames(t, settings.OutputDir))
		})
	}
}

func TestManager_InvalidSong(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	bad := song("a", "X", "Song1")
	bad.Artists = nil

	fetcher := &fakeFetcher{}
	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: []model.Song{bad, song("b", "Y", "Song2")}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Failed)
	assert.Equal(t, []string{"b"}, report.Completed)
	assert.Equal(t, []string{"b"}, fetcher.calls)
	assert.True(t, errors.Is(report.Outcomes[0].Err, model.ErrMissingArtists))
	assert.Equal(t, string(StageValidate), report.Outcomes[0].Stage)
}

func TestManager_CancelMidBatch(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{onFetch: func(s model.Song) error {
		if s.ID == "s1" {
			cancel()
			return context.Canceled
		}
		return nil
	}}

	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(ctx, &fakeSource{songs: songs(4)})
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Equal(t, []string{"s0"}, report.Completed)
	assert.Empty(t, report.Failed, "the interrupted song is neither completed nor failed")
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, []string{"s0", "s1"}, fetcher.calls, "nothing is attempted after cancellation")
	assert.Equal(t, []string{"artist-title_0-s0.mp3"}, dirNames(t, settings.OutputDir))
}

func TestManager_CancelBetweenSteps(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The fetch succeeds but the batch is cancelled before transcoding.
	fetcher := &fakeFetcher{onFetch: func(model.Song) error {
		cancel()
		return nil
	}}
	transcoder := &fakeTranscoder{trim: map[string]*model.Trim{}}

	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(transcoder)).
		Run(ctx, &fakeSource{songs: songs(2)})
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Empty(t, report.Completed)
	assert.Empty(t, report.Failed)
	assert.Empty(t, transcoder.trim, "transcoding never started")
	assert.Empty(t, dirNames(t, settings.OutputDir), "working files are removed")
}

func TestManager_CancelledBeforeStart(t *testing.T) {
	settings := testSettings(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(ctx, &fakeSource{songs: songs(2)})
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Zero(t, report.Attempted)
	assert.Empty(t, fetcher.calls)
}

func TestManager_UnreadableSong(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	list := []model.Song{song("a", "X", "Song1"), song("b", "Y", "Song2"), song("c", "Z", "Song3")}
	fetcher := &fakeFetcher{}
	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: list, unreadable: map[int]bool{1: true}})
	require.NoError(t, err)

	assert.NoError(t, report.SourceErr)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, []string{"a", "c"}, report.Completed)
	assert.Equal(t, []string{"b"}, report.Failed)
	assert.Equal(t, []string{"a", "c"}, fetcher.calls)

	require.Len(t, report.Outcomes, 3)
	failure := report.Outcomes[1]
	assert.Equal(t, string(StageValidate), failure.Stage)
	var songErr *source.SongError
	assert.True(t, errors.As(failure.Err, &songErr))
}

func TestManager_UnreadableSongCountsTowardsCap(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false
	settings.MaxSongs = 2

	report, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: songs(4), unreadable: map[int]bool{0: true}})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, []string{"s0"}, report.Failed)
	assert.Equal(t, []string{"s1"}, report.Completed)
}

func TestManager_KeepsEarlierImages(t *testing.T) {
	tests := []struct {
		name          string
		failures      int
		thumbnail     string
		wantCompleted bool
	}{
		{"acquire fails", -1, "/cover.png", false},
		{"artwork download fails", 0, "/missing.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := artworkServer(t)
			settings := testSettings(t)
			dir := settings.OutputDir

			// Files of an earlier run of the same playlist.
			full, thumb := filepath.Join(dir, "images", "x-song1-a.jpg"), filepath.Join(dir, "images", "x-song1-a.thumb.jpg")
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "x-song1-a.mp3"), []byte("earlier"), 0644))
			require.NoError(t, os.WriteFile(full, []byte("earlier cover"), 0644))
			require.NoError(t, os.WriteFile(thumb, []byte("earlier icon"), 0644))

			s := song("a", "X", "Song1")
			s.Thumbnail = srv.URL + tt.thumbnail
			fetcher := &fakeFetcher{failures: map[string]int{"a": tt.failures}}

			report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
				Run(context.Background(), &fakeSource{songs: []model.Song{s}})
			require.NoError(t, err)

			if tt.wantCompleted {
				assert.Equal(t, []string{"a"}, report.Completed)
			} else {
				assert.Equal(t, []string{"a"}, report.Failed)
			}
			assert.FileExists(t, filepath.Join(dir, "x-song1-a.mp3"))
			data, err := os.ReadFile(full)
			require.NoError(t, err)
			assert.Equal(t, "earlier cover", string(data))
			assert.FileExists(t, thumb)
		})
	}
}

func TestManager_RemovesImagesOfFailedSong(t *testing.T) {
	srv := artworkServer(t)
	settings := testSettings(t)
	dir := settings.OutputDir

	s := song("a", "X", "Song1")
	s.Thumbnail = srv.URL + "/cover.png"

	report, err := NewManager(settings, nil,
		WithFetcher(&fakeFetcher{}),
		WithTranscoder(&fakeTranscoder{}),
		WithTagger(failingTagger{}),
	).Run(context.Background(), &fakeSource{songs: []model.Song{s}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Failed)
	assert.Equal(t, string(StageTag), report.Outcomes[0].Stage)
	assert.Equal(t, []string{"images"}, dirNames(t, dir))
	assert.Empty(t, dirNames(t, filepath.Join(dir, "images")))
}

func TestManager_SourceErrors(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false
	manager := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(&fakeTranscoder{}))

	t.Run("count", func(t *testing.T) {
		_, err := manager.Run(context.Background(), &fakeSource{countErr: errors.New("db down")})
		assert.Error(t, err)
	})

	t.Run("mid stream", func(t *testing.T) {
		errCursor := errors.New("cursor died")
		report, err := manager.Run(context.Background(), &fakeSource{songs: songs(3), iterErrAt: 2, iterErr: errCursor})
		require.NoError(t, err)
		assert.True(t, errors.Is(report.SourceErr, errCursor))
		assert.Equal(t, []string{"s0", "s1"}, report.Completed)
		assert.False(t, report.Cancelled)
	})
}

func TestManager_TrimPassedToTranscoder(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	s := song("a", "X", "Song1")
	s.Trim = &model.Trim{Offset: 5, Duration: 30}
	transcoder := &fakeTranscoder{trim: map[string]*model.Trim{}}

	_, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(transcoder)).
		Run(context.Background(), &fakeSource{songs: []model.Song{s}})
	require.NoError(t, err)
	assert.Equal(t, s.Trim, transcoder.trim["a"])
}

func TestManager_Video(t *testing.T) {
	srv := artworkServer(t)
	settings := testSettings(t)
	settings.Format = model.FormatVideo
	dir := settings.OutputDir

	s := song("a", "X", "Song1")
	s.Thumbnail = srv.URL + "/cover.png"

	fetcher := &fakeFetcher{}
	report, err := NewManager(settings, nil, WithFetcher(fetcher), WithTranscoder(&fakeTranscoder{})).
		Run(context.Background(), &fakeSource{songs: []model.Song{s}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Completed)
	assert.Equal(t, []model.Format{model.FormatVideo}, fetcher.formats)
	assert.FileExists(t, filepath.Join(dir, "x-song1-a.mp4"))
	assert.Equal(t, []string{"x-song1-a.jpg"}, dirNames(t, filepath.Join(dir, "images")))
}

func TestManager_Playlist(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false
	settings.CreatePlaylist = true
	settings.M3UExtended = false

	transcoder := &fakeTranscoder{fail: map[string]bool{"b": true}}
	list := []model.Song{song("a", "X", "Song1"), song("b", "Y", "Song2"), song("c", "Z", "Song3")}

	_, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(transcoder)).
		Run(context.Background(), &fakeSource{name: "Road Trip", songs: list})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(settings.OutputDir, "road_trip.m3u"))
	require.NoError(t, err)
	assert.Equal(t, "x-song1-a.mp3\nz-song3-c.mp3\n", string(data))
}

func TestManager_Ledger(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadImages = false

	ledger := &fakeLedger{}
	transcoder := &fakeTranscoder{fail: map[string]bool{"b": true}}
	list := []model.Song{song("a", "X", "Song1"), song("b", "Y", "Song2")}

	report, err := NewManager(settings, nil, WithFetcher(&fakeFetcher{}), WithTranscoder(transcoder), WithLedger(ledger)).
		Run(context.Background(), &fakeSource{name: "Chill", songs: list})
	require.NoError(t, err)

	require.Len(t, ledger.runs, 1)
	assert.Equal(t, report.RunID, ledger.runs[0].ID)
	assert.Equal(t, "Chill", ledger.runs[0].Playlist)
	require.Len(t, ledger.outcomes, 2)
	assert.Equal(t, model.StatusSucceeded, ledger.outcomes[0].Status)
	assert.Equal(t, model.StatusFailed, ledger.outcomes[1].Status)
	assert.Same(t, report, ledger.finished)
}

func TestStepError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := error(&StepError{SongID: "a", Stage: StageTag, Err: cause})

	assert.Equal(t, "tag a: exit status 1", err.Error())
	assert.True(t, errors.Is(err, cause))
}
