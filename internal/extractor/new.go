package extractor

import (
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/llm"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
)

// Options tune generation and the repair pass.
type Options struct {
	AnalysisModel  string
	StructureModel string
	TargetDuration float64
	Tolerance      float64
	SnapEpsilon    float64
	MaxMoments     int
	MaxToolSteps   int
	// ValidationTool selects the tool shape offered in stage A:
	// config.ToolDuration or config.ToolCandidate.
	ValidationTool string
	HostKeywords   []string
}

// OptionsFromConfig maps the validated configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AnalysisModel:  cfg.LLM.AnalysisModel,
		StructureModel: cfg.LLM.StructureModel,
		TargetDuration: cfg.Extractor.TargetDuration,
		Tolerance:      cfg.ExtractorTolerance(),
		SnapEpsilon:    cfg.Extractor.SnapEpsilon,
		MaxMoments:     cfg.Extractor.MaxMoments,
		MaxToolSteps:   cfg.LLM.MaxToolSteps,
		ValidationTool: cfg.Extractor.ValidationTool,
		HostKeywords:   cfg.Extractor.HostKeywords,
	}
}

func (o Options) minDuration() float64 { return o.TargetDuration - o.Tolerance }
func (o Options) maxDuration() float64 { return o.TargetDuration + o.Tolerance }

type implExtractor struct {
	client llm.Client
	opts   Options
	hostRe *regexp.Regexp
	logger logger.Logger
}

// New creates an Extractor that talks to the model through client
func New(client llm.Client, opts Options, log logger.Logger) Extractor {
	return &implExtractor{
		client: client,
		opts:   opts,
		hostRe: keywordPattern(opts.HostKeywords),
		logger: log,
	}
}

func keywordPattern(keywords []string) *regexp.Regexp {
	var quoted []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}
