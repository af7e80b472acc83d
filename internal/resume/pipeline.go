package resume

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"resume-rank/internal/llm"
	"resume-rank/internal/storage"
)

type contentGenerator interface {
	Generate(ctx context.Context, req llm.Request) ([]byte, error)
}

// Pipeline orchestrates text extraction, prompt building, the Gemini call and
// normalization for both the single-resume and the batch ranking paths. It is
// stateless between invocations and persists nothing; callers own storage
// side effects.
type Pipeline struct {
	extractor *Extractor
	generator contentGenerator
	logger    *zap.Logger
}

func NewPipeline(extractor *Extractor, generator contentGenerator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{extractor: extractor, generator: generator, logger: logger}
}

// ExtractProfile runs the full extraction pipeline for one stored resume.
// Both this path and Rank share the client's retry policy; an empty extraction
// fails before any network call is attempted.
func (p *Pipeline) ExtractProfile(ctx context.Context, rec storage.Resume) (*llm.Profile, error) {
	text := p.extractor.ExtractText(rec.FilePath)
	if strings.TrimSpace(text) == "" {
		return nil, llm.NewFailure(llm.KindNoExtractableText,
			"no text could be extracted from %s", rec.Filename)
	}

	raw, err := p.generator.Generate(ctx, llm.BuildExtractionPrompt(text))
	if err != nil {
		return nil, err
	}

	profile, err := llm.NormalizeProfile(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Info("resume profile extracted",
		zap.Int("resume_id", rec.ID),
		zap.String("filename", rec.Filename),
		zap.String("name", profile.Name),
		zap.Int("years_of_experience", profile.YearsOfExperience),
	)
	return profile, nil
}

// Rank aggregates every readable resume into one combined request and returns
// the model's ordering. Unreadable resumes are skipped, not fatal; the batch
// fails only when nothing at all is readable.
func (p *Pipeline) Rank(ctx context.Context, role string, recs []*storage.Resume) (*llm.Ranking, error) {
	docs := make([]llm.Document, 0, len(recs))
	knownIDs := make([]int, 0, len(recs))
	filenames := make(map[int]string, len(recs))

	for _, rec := range recs {
		text := p.extractor.ExtractText(rec.FilePath)
		if strings.TrimSpace(text) == "" {
			p.logger.Warn("skipping unreadable resume in ranking batch",
				zap.Int("resume_id", rec.ID), zap.String("filename", rec.Filename))
			continue
		}
		docs = append(docs, llm.Document{ID: rec.ID, Name: rec.Filename, Text: text})
		knownIDs = append(knownIDs, rec.ID)
		filenames[rec.ID] = rec.Filename
	}

	if len(docs) == 0 {
		return nil, llm.NewFailure(llm.KindNoRankableDocuments,
			"could not extract text from any of %d resumes", len(recs))
	}

	raw, err := p.generator.Generate(ctx, llm.BuildRankingPrompt(role, docs))
	if err != nil {
		return nil, err
	}

	ranking, err := llm.NormalizeRanking(raw, knownIDs)
	if err != nil {
		return nil, err
	}
	if len(ranking.Unknown) > 0 {
		p.logger.Warn("ranking reply referenced unknown resume ids",
			zap.Ints("unknown_ids", ranking.Unknown))
	}

	ranking.JobRole = role
	for i := range ranking.Entries {
		ranking.Entries[i].ResumeFilename = filenames[ranking.Entries[i].ResumeID]
	}

	p.logger.Info("resumes ranked",
		zap.String("job_role", role),
		zap.Int("requested", len(recs)),
		zap.Int("ranked", len(ranking.Entries)),
	)
	return ranking, nil
}
