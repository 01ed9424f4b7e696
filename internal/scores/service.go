// Package scores watches each user's stream of resolved responses and turns
// full batch windows into stored calibration verdicts, plus the read APIs the
// presentation layer charts from.
package scores

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/steinarvk/brator/internal/calibration"
	"github.com/steinarvk/brator/internal/models"
	"github.com/steinarvk/brator/pkg/cache"
)

// DefaultBatchSizes are the standard summarization window sizes.
var DefaultBatchSizes = []int{20, 50}

// ErrWindowAlreadySummarized reports that a concurrent request summarized the
// same window first. Benign; the work is done.
var ErrWindowAlreadySummarized = errors.New("window already summarized")

type Store interface {
	// SummarizableResponses returns up to limit of the user's responses that
	// are not yet linked to any summary of this batch size, oldest first.
	SummarizableResponses(ctx context.Context, userID int64, batchSize, limit int) ([]models.Response, error)
	// CreateSummary persists the summary and its frozen response links in one
	// transaction; ErrWindowAlreadySummarized when any response is already
	// claimed for this batch size.
	CreateSummary(ctx context.Context, summary *models.SummaryScore, responseIDs []int64) (*models.SummaryScore, error)
	RecentResponses(ctx context.Context, userID int64, limit int) ([]models.ScoreEntry, error)
	// LargestSummarizedBatchSize returns the largest of the given sizes for
	// which the user has a stored summary, or nil.
	LargestSummarizedBatchSize(ctx context.Context, userID int64, sizes []int) (*int, error)
	ListSummaries(ctx context.Context, userID int64, batchSize int) ([]models.SummaryScore, error)
}

type Service struct {
	store      Store
	cache      *cache.Cache
	batchSizes []int
}

// NewService configures the summarizer. Sizes outside what the calibration
// engine computes exactly are rejected outright rather than silently skipped
// at summarization time.
func NewService(store Store, c *cache.Cache, batchSizes []int) (*Service, error) {
	if len(batchSizes) == 0 {
		batchSizes = DefaultBatchSizes
	}
	sizes := make([]int, len(batchSizes))
	copy(sizes, batchSizes)
	sort.Ints(sizes)
	for _, size := range sizes {
		if size < calibration.MinDataPoints || size > calibration.MaxDataPointsExact {
			return nil, fmt.Errorf("batch size %d outside exact-computation range [%d, %d]",
				size, calibration.MinDataPoints, calibration.MaxDataPointsExact)
		}
	}
	return &Service{store: store, cache: c, batchSizes: sizes}, nil
}

// BatchSizes returns the configured window sizes, ascending.
func (s *Service) BatchSizes() []int {
	return s.batchSizes
}

// MaybeSummarize closes out every batch window that has filled up for the
// user, across all configured sizes. Windows of different sizes are
// independent: a response claimed for size 20 remains eligible for size 50.
func (s *Service) MaybeSummarize(ctx context.Context, userID int64) error {
	for _, size := range s.batchSizes {
		if err := s.maybeSummarizeSize(ctx, userID, size); err != nil {
			return fmt.Errorf("summarize batch size %d: %w", size, err)
		}
	}
	return nil
}

func (s *Service) maybeSummarizeSize(ctx context.Context, userID int64, batchSize int) error {
	// Loop: more than one window may be pending if summarization previously
	// failed. Selection always takes the oldest eligible window, so batches
	// stay disjoint and chronologically contiguous.
	for {
		batch, err := s.store.SummarizableResponses(ctx, userID, batchSize, batchSize)
		if err != nil {
			return err
		}
		if len(batch) < batchSize {
			// Never summarize a partial batch.
			return nil
		}

		summary, responseIDs, err := buildSummary(userID, batchSize, batch)
		if err != nil {
			return err
		}

		created, err := s.store.CreateSummary(ctx, summary, responseIDs)
		if errors.Is(err, ErrWindowAlreadySummarized) {
			return nil
		}
		if err != nil {
			return err
		}
		log.Printf("[scores] user %d: summarized batch of %d (actual=%d expected=%.2f)",
			userID, batchSize, created.ActualCorrect, created.ExpectedCorrect)
		s.cache.InvalidateSummaries(ctx, userID, s.batchSizes)
	}
}

// buildSummary computes the verdict for one full window. The window arrives
// oldest first; its order is frozen into the summary links.
func buildSummary(userID int64, batchSize int, batch []models.Response) (*models.SummaryScore, []int64, error) {
	trials := make([]calibration.Trial, len(batch))
	responseIDs := make([]int64, len(batch))
	actual := 0
	expected := 0.0
	for i, resp := range batch {
		trials[i] = calibration.Trial{
			Confidence: resp.ConfidencePercent / 100,
			Correct:    resp.Correct,
		}
		responseIDs[i] = resp.ID
		if resp.Correct {
			actual++
		}
		expected += resp.ConfidencePercent / 100
	}

	verdict, err := calibration.Plausibility(trials)
	if err != nil {
		return nil, nil, err
	}
	if verdict == nil {
		// Sizes are validated at construction, so this is a defect.
		return nil, nil, fmt.Errorf("calibration engine declined batch of %d", len(trials))
	}

	return &models.SummaryScore{
		UserID:          userID,
		BatchSize:       batchSize,
		ActualCorrect:   actual,
		ExpectedCorrect: expected,
		ProbFewer:       verdict.ProbFewer,
		ProbSame:        verdict.ProbSame,
		ProbMore:        verdict.ProbMore,
	}, responseIDs, nil
}

func (s *Service) RecentScores(ctx context.Context, userID int64, limit int) ([]models.ScoreEntry, error) {
	return s.store.RecentResponses(ctx, userID, limit)
}

// LargestSummarizedBatchSize reports the largest standard batch size the user
// has a summary for, or nil before their first summary.
func (s *Service) LargestSummarizedBatchSize(ctx context.Context, userID int64) (*int, error) {
	return s.store.LargestSummarizedBatchSize(ctx, userID, s.batchSizes)
}

// SummarySeries returns the chart-ready summary sequence for one batch size,
// oldest first, served from cache when possible.
func (s *Service) SummarySeries(ctx context.Context, userID int64, batchSize int) (*models.SummarySeries, error) {
	if cached, ok := s.cache.GetSummarySeries(ctx, userID, batchSize); ok {
		return cached, nil
	}

	summaries, err := s.store.ListSummaries(ctx, userID, batchSize)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.SummaryScore{}
	}
	series := &models.SummarySeries{BatchSize: batchSize, Summaries: summaries}
	s.cache.SetSummarySeries(ctx, userID, series)
	return series, nil
}
