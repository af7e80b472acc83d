// reparse re-runs the extraction pipeline over resumes whose parse previously
// failed (or never ran) and persists the outcome.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"resume-rank/internal/config"
	"resume-rank/internal/llm"
	"resume-rank/internal/logger"
	"resume-rank/internal/resume"
	"resume-rank/internal/storage"
)

func main() {
	var dryRun bool
	var limit int
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist updates; just print changes")
	flag.IntVar(&limit, "limit", 200, "Max number of resumes to process in one run")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("logger init: ", err)
	}
	defer zl.Sync()

	if cfg.DatabaseURL == "" {
		zl.Fatal("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		zl.Fatal("GEMINI_API_KEY is required")
	}

	db, err := storage.NewDB(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("failed to connect to db", zap.Error(err))
	}
	defer db.Close()

	client := llm.NewClient(llm.Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		Endpoint:   cfg.GeminiEndpoint,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
		BaseDelay:  cfg.LLMBaseDelay,
	}, zl)
	pipeline := resume.NewPipeline(resume.NewExtractor(cfg.UploadsDir, zl), client, zl)

	ctx := context.Background()

	unparsed, err := db.ListUnparsed(ctx, limit)
	if err != nil {
		zl.Fatal("query failed", zap.Error(err))
	}
	zl.Info("found unparsed resumes", zap.Int("count", len(unparsed)), zap.Int("limit", limit))

	var ok, failed int
	for _, rec := range unparsed {
		profile, err := pipeline.ExtractProfile(ctx, *rec)
		if err != nil {
			failed++
			reason := err.Error()
			if f, found := llm.AsFailure(err); found {
				reason = string(f.Kind) + ": " + f.Detail
			}
			zl.Warn("extraction failed",
				zap.Int("resume_id", rec.ID),
				zap.String("filename", rec.Filename),
				zap.String("reason", reason),
			)
			if !dryRun {
				if err := db.MarkParseFailed(ctx, rec.ID, reason); err != nil {
					zl.Error("failed to record parse failure", zap.Int("resume_id", rec.ID), zap.Error(err))
				}
			}
			continue
		}

		ok++
		if dryRun {
			zl.Info("dry-run: would update resume",
				zap.Int("resume_id", rec.ID),
				zap.String("name", profile.Name),
				zap.Int("years_of_experience", profile.YearsOfExperience),
			)
			continue
		}
		if err := db.UpdateProfile(ctx, rec.ID, profile); err != nil {
			zl.Error("failed to persist profile", zap.Int("resume_id", rec.ID), zap.Error(err))
		}
	}

	zl.Info("reparse finished",
		zap.Int("succeeded", ok),
		zap.Int("failed", failed),
		zap.Bool("dry_run", dryRun),
	)
}
