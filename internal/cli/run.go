package cli

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/keymoments/internal/models"
	"github.com/nguyentantai21042004/keymoments/internal/store"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

func runJob(ctx context.Context, deps *Dependencies, videoID string) error {
	cfg, log := deps.Config, deps.Logger

	db, err := store.Open(cfg.Paths.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	p, err := buildPipeline(cfg, db, executor.New(), log)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, videoID)
	if res != nil {
		for _, m := range res.Moments {
			log.Info(ctx, "%s-%ss %s", models.FormatSeconds(m.Start), models.FormatSeconds(m.End), m.ClipPath)
		}
		if res.ReportPath != "" {
			log.Info(ctx, "Report: %s", res.ReportPath)
		}
	}
	return err
}
