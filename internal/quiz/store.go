package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/steinarvk/brator/internal/models"
)

// SQLStore is the Postgres-backed Store. The schema carries the invariants:
// a partial unique index allows one active challenge per user, and a unique
// constraint on responses.challenge_id allows one response per challenge.
type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const challengeColumns = `id, uid, user_id, fact_id, active, challenge_type, created_at`

func scanChallenge(row *sql.Row) (*models.Challenge, error) {
	var c models.Challenge
	err := row.Scan(&c.ID, &c.UID, &c.UserID, &c.FactID, &c.Active, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) CurrentChallenge(ctx context.Context, userID int64) (*models.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM challenges
		 WHERE user_id = $1 AND active
		 ORDER BY created_at DESC LIMIT 1`, challengeColumns),
		userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current challenge: %w", err)
	}
	return c, nil
}

func (s *SQLStore) CreateChallenge(ctx context.Context, c *models.Challenge) (*models.Challenge, error) {
	created, err := scanChallenge(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO challenges (uid, user_id, fact_id, active, challenge_type)
		 VALUES ($1, $2, $3, TRUE, $4)
		 ON CONFLICT (user_id) WHERE active DO NOTHING
		 RETURNING %s`, challengeColumns),
		c.UID, c.UserID, c.FactID, c.Type))
	if err == sql.ErrNoRows {
		// A concurrent request created the active challenge first; serve that
		// one rather than fail.
		winner, err := s.CurrentChallenge(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("create challenge: lost insert race but no active challenge found")
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return created, nil
}

func (s *SQLStore) DiscardActiveChallenges(ctx context.Context, userID int64, uid string) (int, error) {
	var res sql.Result
	var err error
	if uid != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE challenges SET active = FALSE WHERE user_id = $1 AND active AND uid = $2`,
			userID, uid)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE challenges SET active = FALSE WHERE user_id = $1 AND active`,
			userID)
	}
	if err != nil {
		return 0, fmt.Errorf("discard challenges: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) ChallengeByUID(ctx context.Context, userID int64, uid string) (*models.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM challenges WHERE user_id = $1 AND uid = $2`, challengeColumns),
		userID, uid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrChallengeNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("challenge by uid: %w", err)
	}
	return c, nil
}

func (s *SQLStore) HasResponse(ctx context.Context, challengeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE challenge_id = $1)`,
		challengeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has response: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) CreateResponse(ctx context.Context, resp *models.Response) (*models.Response, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Responding resolves the challenge.
	if _, err := tx.ExecContext(ctx,
		`UPDATE challenges SET active = FALSE WHERE id = $1`,
		resp.ChallengeID,
	); err != nil {
		return nil, fmt.Errorf("resolve challenge: %w", err)
	}

	var boolAnswer interface{}
	var ciLow, ciHigh interface{}
	switch resp.Type {
	case models.AnswerBoolean:
		boolAnswer = resp.Boolean.Answer
	case models.AnswerNumeric:
		ciLow = resp.Numeric.CiLow
		ciHigh = resp.Numeric.CiHigh
	}

	created := *resp
	err = tx.QueryRowContext(ctx,
		`INSERT INTO responses (challenge_id, user_id, confidence, correct, response_type,
		                        boolean_answer, ci_low, ci_high)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		resp.ChallengeID, resp.UserID, resp.ConfidencePercent, resp.Correct, resp.Type,
		boolAnswer, ciLow, ciHigh,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		// The unique constraint on challenge_id is the authoritative guard
		// against a double response slipping past the existence check.
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("%w: challenge %d", ErrAlreadyResponded, resp.ChallengeID)
		}
		return nil, fmt.Errorf("insert response: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit response: %w", err)
	}
	return &created, nil
}
