package extractor

import (
	"context"
	"math"
	"sort"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// Overlap is a pair of consecutive moments, by start, whose ranges intersect.
type Overlap struct {
	Previous models.KeyMomentCandidate
	Next     models.KeyMomentCandidate
}

// DetectOverlaps reports every adjacent pair in sorted where Next starts
// before Previous ends. sorted must already be ordered by Start.
func DetectOverlaps(sorted []models.KeyMomentCandidate) []Overlap {
	var out []Overlap
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			out = append(out, Overlap{Previous: sorted[i-1], Next: sorted[i]})
		}
	}
	return out
}

// SnapStart returns the utterance start nearest to v within epsilon.
func SnapStart(utterances []models.Utterance, v, epsilon float64) (float64, bool) {
	return nearest(utterances, v, epsilon, func(u models.Utterance) float64 { return u.Start })
}

// SnapEnd returns the utterance end nearest to v within epsilon.
func SnapEnd(utterances []models.Utterance, v, epsilon float64) (float64, bool) {
	return nearest(utterances, v, epsilon, func(u models.Utterance) float64 { return u.End })
}

func nearest(utterances []models.Utterance, v, epsilon float64, at func(models.Utterance) float64) (float64, bool) {
	best, bestDist, found := v, math.Inf(1), false
	for _, u := range utterances {
		d := math.Abs(at(u) - v)
		if d < epsilon && d < bestDist {
			best, bestDist, found = at(u), d, true
		}
	}
	return best, found
}

// repair snaps, sorts and caps candidates. Overlaps and durations outside
// the target window are logged, never modified.
func (e *implExtractor) repair(ctx context.Context, candidates []models.KeyMomentCandidate, utterances []models.Utterance) []models.KeyMomentCandidate {
	out := make([]models.KeyMomentCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, e.snap(ctx, c, utterances))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	for _, o := range DetectOverlaps(out) {
		e.logger.Warn(ctx, "extractor: overlap between %s-%s and %s-%s",
			models.FormatSeconds(o.Previous.Start), models.FormatSeconds(o.Previous.End),
			models.FormatSeconds(o.Next.Start), models.FormatSeconds(o.Next.End))
	}

	for _, c := range out {
		if msg := e.checkDuration(c.Duration()); msg != "" {
			e.logger.Warn(ctx, "extractor: moment %s-%s: %s",
				models.FormatSeconds(c.Start), models.FormatSeconds(c.End), msg)
		}
	}

	if e.opts.MaxMoments > 0 && len(out) > e.opts.MaxMoments {
		e.logger.Warn(ctx, "extractor: model returned %d moments, keeping the first %d", len(out), e.opts.MaxMoments)
		out = out[:e.opts.MaxMoments]
	}
	return out
}

func (e *implExtractor) snap(ctx context.Context, c models.KeyMomentCandidate, utterances []models.Utterance) models.KeyMomentCandidate {
	start, ok := SnapStart(utterances, c.Start, e.opts.SnapEpsilon)
	if !ok {
		e.logger.Warn(ctx, "extractor: no utterance starts near %ss, keeping it", models.FormatSeconds(c.Start))
	}
	end, ok := SnapEnd(utterances, c.End, e.opts.SnapEpsilon)
	if !ok {
		e.logger.Warn(ctx, "extractor: no utterance ends near %ss, keeping it", models.FormatSeconds(c.End))
	}

	if end <= start {
		e.logger.Warn(ctx, "extractor: snapping %s-%s would empty the range, keeping original bounds",
			models.FormatSeconds(c.Start), models.FormatSeconds(c.End))
		return c
	}

	if start != c.Start || end != c.End {
		e.logger.Debug(ctx, "extractor: snapped %s-%s to %s-%s",
			models.FormatSeconds(c.Start), models.FormatSeconds(c.End),
			models.FormatSeconds(start), models.FormatSeconds(end))
	}
	return models.KeyMomentCandidate{Start: start, End: end, Description: c.Description}
}
