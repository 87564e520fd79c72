package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/keymoments/internal/models"
	"github.com/nguyentantai21042004/keymoments/internal/transcript"
	"golang.org/x/sync/errgroup"
)

func (p *implPipeline) Run(ctx context.Context, videoID string) (*Result, error) {
	started := time.Now()
	if err := models.ValidateVideoID(videoID); err != nil {
		return nil, &StageError{VideoID: videoID, Stage: StageVideo, Err: err}
	}
	p.logger.Info(ctx, "=== Processing %s ===", videoID)

	videoPath, err := p.deps.Videos.EnsureVideo(ctx, videoID)
	if err != nil {
		return nil, &StageError{VideoID: videoID, Stage: StageVideo, Err: err}
	}

	t, err := p.deps.Transcripts.EnsureTranscript(ctx, transcript.Source{
		VideoID:   videoID,
		URL:       p.videoURL(videoID),
		LocalPath: videoPath,
	})
	if err != nil {
		return nil, &StageError{VideoID: videoID, Stage: StageTranscript, Err: err}
	}

	candidates, err := p.deps.Extractor.Extract(ctx, t)
	if err != nil {
		return nil, &StageError{VideoID: videoID, Stage: StageExtract, Err: err}
	}
	p.logger.Info(ctx, "Selected %d key moments for %s", len(candidates), videoID)

	moments, err := p.persist(ctx, videoID, candidates)
	if err != nil {
		return nil, &StageError{VideoID: videoID, Stage: StagePersist, Err: err}
	}

	res := &Result{VideoID: videoID, VideoPath: videoPath, Moments: moments}

	clips, renderErr := p.render(ctx, videoPath, moments)
	res.Clips = clips
	if renderErr != nil && !p.opts.BestEffort {
		return nil, &StageError{VideoID: videoID, Stage: StageRender, Err: renderErr}
	}

	res.ReportPath = p.writeReport(ctx, videoID, moments)

	if renderErr != nil {
		p.logger.Error(ctx, "%s: %d of %d clips rendered", videoID, len(clips), len(moments))
		return res, &StageError{VideoID: videoID, Stage: StageRender, Err: renderErr}
	}

	p.logger.Info(ctx, "=== Completed %s in %v: %d clips ===", videoID, time.Since(started).Round(time.Millisecond), len(clips))
	return res, nil
}

func (p *implPipeline) videoURL(videoID string) string {
	if p.opts.URLTemplate == "" {
		return ""
	}
	if strings.Contains(p.opts.URLTemplate, "%s") {
		return fmt.Sprintf(p.opts.URLTemplate, videoID)
	}
	return p.opts.URLTemplate + videoID
}

// persist stores every moment with its precomputed clip path, independent of
// whether rendering later succeeds.
func (p *implPipeline) persist(ctx context.Context, videoID string, candidates []models.KeyMomentCandidate) ([]models.KeyMoment, error) {
	moments := make([]models.KeyMoment, 0, len(candidates))
	for _, c := range candidates {
		m := models.KeyMoment{
			VideoID:     videoID,
			Start:       c.Start,
			End:         c.End,
			Description: c.Description,
			ClipPath:    models.ClipPath(p.opts.WorkDir, videoID, c.Start, c.End, p.opts.ClipExtension),
		}
		if err := p.deps.Moments.Create(ctx, &m); err != nil {
			return nil, fmt.Errorf("moment %s-%s: %w", models.FormatSeconds(c.Start), models.FormatSeconds(c.End), err)
		}
		moments = append(moments, m)
	}
	return moments, nil
}

// render cuts every clip with at most MaxConcurrent transcoders. Fail-fast
// mode cancels the remaining renders on the first error; best-effort mode
// runs them all and joins the errors.
func (p *implPipeline) render(ctx context.Context, videoPath string, moments []models.KeyMoment) ([]string, error) {
	if len(moments) == 0 {
		return nil, nil
	}

	done := make([]bool, len(moments))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.opts.BestEffort {
		g = &errgroup.Group{}
		gctx = ctx
	}
	g.SetLimit(p.opts.MaxConcurrent)

	for i, m := range moments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.deps.Renderer.Render(gctx, videoPath, m.Start, m.End, m.ClipPath); err != nil {
				if !p.opts.BestEffort {
					return err
				}
				p.logger.Warn(ctx, "Clip %s failed: %v", m.ClipPath, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			done[i] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = errors.Join(errs...)
	}

	var clips []string
	for i, ok := range done {
		if ok {
			clips = append(clips, moments[i].ClipPath)
		}
	}
	return clips, err
}

// writeReport is best-effort; a failure is logged and the run still succeeds.
func (p *implPipeline) writeReport(ctx context.Context, videoID string, moments []models.KeyMoment) string {
	if p.deps.Report == nil {
		return ""
	}
	path, err := p.deps.Report.Write(ctx, videoID, moments)
	if err != nil {
		p.logger.Warn(ctx, "Report for %s not written: %v", videoID, err)
		return ""
	}
	return path
}
