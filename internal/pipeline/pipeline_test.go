package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/models"
	"github.com/nguyentantai21042004/keymoments/internal/transcript"
)

type fakeVideos struct {
	path string
	err  error
}

func (f *fakeVideos) EnsureVideo(ctx context.Context, videoID string) (string, error) {
	return f.path, f.err
}

type fakeTranscripts struct {
	got transcript.Source
	t   models.Transcript
	err error
}

func (f *fakeTranscripts) EnsureTranscript(ctx context.Context, src transcript.Source) (models.Transcript, error) {
	f.got = src
	return f.t, f.err
}

type fakeExtractor struct {
	moments []models.KeyMomentCandidate
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, t models.Transcript) ([]models.KeyMomentCandidate, error) {
	return f.moments, f.err
}

type memMoments struct {
	mu   sync.Mutex
	rows []models.KeyMoment
	err  error
}

func (s *memMoments) Create(ctx context.Context, m *models.KeyMoment) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = "id"
	s.rows = append(s.rows, *m)
	return nil
}

func (s *memMoments) ListByVideoID(ctx context.Context, videoID string) ([]models.KeyMoment, error) {
	return s.rows, nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeRenderer) Render(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	f.mu.Lock()
	f.calls = append(f.calls, outputPath)
	f.mu.Unlock()
	return f.fail[outputPath]
}

type fakeReport struct {
	moments []models.KeyMoment
	err     error
}

func (f *fakeReport) Write(ctx context.Context, videoID string, moments []models.KeyMoment) (string, error) {
	f.moments = moments
	if f.err != nil {
		return "", f.err
	}
	return "tmp/" + videoID + "_key_moments.docx", nil
}

type fixture struct {
	videos      *fakeVideos
	transcripts *fakeTranscripts
	extractor   *fakeExtractor
	moments     *memMoments
	renderer    *fakeRenderer
	report      *fakeReport
	opts        Options
}

func newFixture() *fixture {
	return &fixture{
		videos:      &fakeVideos{path: "tmp/abc123.mp4"},
		transcripts: &fakeTranscripts{t: models.Transcript{VideoID: "abc123"}},
		extractor: &fakeExtractor{moments: []models.KeyMomentCandidate{
			{Start: 10, End: 190, Description: "first"},
			{Start: 200, End: 380, Description: "second"},
		}},
		moments:  &memMoments{},
		renderer: &fakeRenderer{},
		report:   &fakeReport{},
		opts: Options{
			WorkDir:       "tmp",
			URLTemplate:   "https://www.youtube.com/watch?v=%s",
			ClipExtension: "mp4",
			MaxConcurrent: 1,
		},
	}
}

func (f *fixture) pipeline() Pipeline {
	return New(Deps{
		Videos:      f.videos,
		Transcripts: f.transcripts,
		Extractor:   f.extractor,
		Moments:     f.moments,
		Renderer:    f.renderer,
		Report:      f.report,
	}, f.opts, logger.Nop())
}

func TestRun(t *testing.T) {
	f := newFixture()

	res, err := f.pipeline().Run(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantClips := []string{filepath.Join("tmp", "abc123_10-190.mp4"), filepath.Join("tmp", "abc123_200-380.mp4")}
	if diff := cmp.Diff(wantClips, res.Clips); diff != "" {
		t.Errorf("Clips mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantClips, f.renderer.calls); diff != "" {
		t.Errorf("render calls mismatch (-want +got):\n%s", diff)
	}
	if len(f.moments.rows) != 2 || f.moments.rows[0].ClipPath != wantClips[0] {
		t.Errorf("persisted rows = %+v", f.moments.rows)
	}
	if res.ReportPath == "" || len(f.report.moments) != 2 {
		t.Errorf("report path = %q, moments = %d", res.ReportPath, len(f.report.moments))
	}

	want := transcript.Source{VideoID: "abc123", URL: "https://www.youtube.com/watch?v=abc123", LocalPath: "tmp/abc123.mp4"}
	if f.transcripts.got != want {
		t.Errorf("transcript source = %+v, want %+v", f.transcripts.got, want)
	}
}

func TestRunStageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantStage string
	}{
		{name: "video", setup: func(f *fixture) { f.videos.err = boom }, wantStage: StageVideo},
		{name: "transcript", setup: func(f *fixture) { f.transcripts.err = boom }, wantStage: StageTranscript},
		{name: "extract", setup: func(f *fixture) { f.extractor.err = boom }, wantStage: StageExtract},
		{name: "persist", setup: func(f *fixture) { f.moments.err = boom }, wantStage: StagePersist},
		{name: "render", setup: func(f *fixture) {
			f.renderer.fail = map[string]error{filepath.Join("tmp", "abc123_10-190.mp4"): boom}
		}, wantStage: StageRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			res, err := f.pipeline().Run(context.Background(), "abc123")
			if res != nil {
				t.Errorf("Run() result = %+v, want nil", res)
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("Run() error = %v, want *StageError", err)
			}
			if stageErr.Stage != tt.wantStage || stageErr.VideoID != "abc123" {
				t.Errorf("StageError = %+v, want stage %q", stageErr, tt.wantStage)
			}
			if !errors.Is(err, boom) {
				t.Errorf("Run() error = %v, want wrapped boom", err)
			}
			if !strings.HasPrefix(err.Error(), "video abc123: "+tt.wantStage+": ") {
				t.Errorf("Run() error message = %q", err.Error())
			}
		})
	}
}

func TestRunRenderFailureKeepsPersistedRows(t *testing.T) {
	f := newFixture()
	f.renderer.fail = map[string]error{filepath.Join("tmp", "abc123_10-190.mp4"): errors.New("boom")}

	if _, err := f.pipeline().Run(context.Background(), "abc123"); err == nil {
		t.Fatal("Run() error = nil, want render error")
	}
	if len(f.moments.rows) != 2 {
		t.Errorf("persisted rows = %d, want 2", len(f.moments.rows))
	}
	if len(f.renderer.calls) != 1 {
		t.Errorf("render calls = %v, want fail fast after the first", f.renderer.calls)
	}
	if f.report.moments != nil {
		t.Error("report written after a fatal render failure")
	}
}

func TestRunBestEffortRender(t *testing.T) {
	f := newFixture()
	f.opts.BestEffort = true
	f.opts.MaxConcurrent = 2
	boom := errors.New("boom")
	f.renderer.fail = map[string]error{filepath.Join("tmp", "abc123_10-190.mp4"): boom}

	res, err := f.pipeline().Run(context.Background(), "abc123")
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	if res == nil {
		t.Fatal("Run() result = nil, want partial result")
	}
	if diff := cmp.Diff([]string{filepath.Join("tmp", "abc123_200-380.mp4")}, res.Clips); diff != "" {
		t.Errorf("Clips mismatch (-want +got):\n%s", diff)
	}
	if len(f.renderer.calls) != 2 {
		t.Errorf("render calls = %v, want both attempted", f.renderer.calls)
	}
	if res.ReportPath == "" {
		t.Error("report not written in best-effort mode")
	}
}

func TestRunReportFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.report.err = errors.New("disk full")

	res, err := f.pipeline().Run(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ReportPath != "" {
		t.Errorf("ReportPath = %q, want empty", res.ReportPath)
	}
}

func TestRunNoMoments(t *testing.T) {
	f := newFixture()
	f.extractor.moments = nil

	res, err := f.pipeline().Run(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Moments) != 0 || len(f.renderer.calls) != 0 {
		t.Errorf("moments = %d, renders = %d; want none", len(res.Moments), len(f.renderer.calls))
	}
}

func TestRunRejectsBadVideoID(t *testing.T) {
	f := newFixture()

	_, err := f.pipeline().Run(context.Background(), "../etc")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageVideo {
		t.Errorf("Run() error = %v, want video StageError", err)
	}
}

func TestVideoURL(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{template: "https://www.youtube.com/watch?v=%s", want: "https://www.youtube.com/watch?v=abc123"},
		{template: "https://youtu.be/", want: "https://youtu.be/abc123"},
		{template: "", want: ""},
	}
	for _, tt := range tests {
		p := &implPipeline{opts: Options{URLTemplate: tt.template}}
		if got := p.videoURL("abc123"); got != tt.want {
			t.Errorf("videoURL(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}
