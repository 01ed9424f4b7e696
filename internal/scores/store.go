package scores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/steinarvk/brator/internal/models"
)

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SummarizableResponses(ctx context.Context, userID int64, batchSize, limit int) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.challenge_id, r.user_id, r.confidence, r.correct, r.response_type,
		        r.boolean_answer, r.ci_low, r.ci_high, r.created_at
		 FROM responses r
		 WHERE r.user_id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM summary_score_responses l
		       WHERE l.response_id = r.id AND l.batch_size = $2)
		 ORDER BY r.created_at, r.id
		 LIMIT $3`,
		userID, batchSize, limit)
	if err != nil {
		return nil, fmt.Errorf("summarizable responses: %w", err)
	}
	defer rows.Close()

	var out []models.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, *resp)
	}
	return out, rows.Err()
}

func scanResponse(rows *sql.Rows) (*models.Response, error) {
	var r models.Response
	var boolAnswer sql.NullBool
	var ciLow, ciHigh sql.NullFloat64
	err := rows.Scan(&r.ID, &r.ChallengeID, &r.UserID, &r.ConfidencePercent, &r.Correct,
		&r.Type, &boolAnswer, &ciLow, &ciHigh, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	switch r.Type {
	case models.AnswerBoolean:
		if !boolAnswer.Valid {
			return nil, fmt.Errorf("response %d: boolean payload missing", r.ID)
		}
		r.Boolean = &models.BooleanAnswer{
			Answer:            boolAnswer.Bool,
			ConfidencePercent: r.ConfidencePercent,
		}
	case models.AnswerNumeric:
		if !ciLow.Valid || !ciHigh.Valid {
			return nil, fmt.Errorf("response %d: numeric payload missing", r.ID)
		}
		r.Numeric = &models.NumericAnswer{CiLow: ciLow.Float64, CiHigh: ciHigh.Float64}
	default:
		return nil, fmt.Errorf("response %d: illegal response type %q", r.ID, r.Type)
	}
	return &r, nil
}

func (s *SQLStore) CreateSummary(ctx context.Context, summary *models.SummaryScore, responseIDs []int64) (*models.SummaryScore, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := *summary
	err = tx.QueryRowContext(ctx,
		`INSERT INTO summary_scores (user_id, batch_size, actual_correct, expected_correct,
		                             prob_fewer, prob_same, prob_more)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		summary.UserID, summary.BatchSize, summary.ActualCorrect, summary.ExpectedCorrect,
		summary.ProbFewer, summary.ProbSame, summary.ProbMore,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}

	for i, responseID := range responseIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO summary_score_responses (summary_id, response_id, batch_size, position)
			 VALUES ($1, $2, $3, $4)`,
			created.ID, responseID, summary.BatchSize, i)
		if err != nil {
			// UNIQUE(response_id, batch_size): a concurrent request already
			// consumed part of this window.
			if strings.Contains(err.Error(), "duplicate key") {
				return nil, ErrWindowAlreadySummarized
			}
			return nil, fmt.Errorf("link response %d: %w", responseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit summary: %w", err)
	}
	return &created, nil
}

func (s *SQLStore) RecentResponses(ctx context.Context, userID int64, limit int) ([]models.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, correct, confidence
		 FROM responses
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent responses: %w", err)
	}
	defer rows.Close()

	var out []models.ScoreEntry
	for rows.Next() {
		var e models.ScoreEntry
		if err := rows.Scan(&e.CreatedAt, &e.Correct, &e.ConfidencePercent); err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) LargestSummarizedBatchSize(ctx context.Context, userID int64, sizes []int) (*int, error) {
	var largest sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(batch_size) FROM summary_scores
		 WHERE user_id = $1 AND batch_size = ANY($2)`,
		userID, pq.Array(sizes),
	).Scan(&largest)
	if err != nil {
		return nil, fmt.Errorf("largest summarized batch size: %w", err)
	}
	if !largest.Valid {
		return nil, nil
	}
	size := int(largest.Int64)
	return &size, nil
}

func (s *SQLStore) ListSummaries(ctx context.Context, userID int64, batchSize int) ([]models.SummaryScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, batch_size, actual_correct, expected_correct,
		        prob_fewer, prob_same, prob_more, created_at
		 FROM summary_scores
		 WHERE user_id = $1 AND batch_size = $2
		 ORDER BY created_at, id`,
		userID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []models.SummaryScore
	for rows.Next() {
		var sc models.SummaryScore
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.BatchSize, &sc.ActualCorrect,
			&sc.ExpectedCorrect, &sc.ProbFewer, &sc.ProbSame, &sc.ProbMore, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
