// Package quiz implements the challenge/response lifecycle: one open challenge
// per user, at most one response per challenge, and the correctness judgment
// that turns an answer into a resolved response.
package quiz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/steinarvk/brator/internal/models"
)

// Store is the persistence the lifecycle needs. The SQL implementation backs
// the one-active-challenge and one-response-per-challenge invariants with
// database constraints, not just the existence checks here.
type Store interface {
	// CurrentChallenge returns the user's active challenge, or nil.
	CurrentChallenge(ctx context.Context, userID int64) (*models.Challenge, error)
	// CreateChallenge inserts a new active challenge. When a concurrent
	// request wins the one-active-per-user race, the winner's challenge is
	// returned instead of the loser's.
	CreateChallenge(ctx context.Context, c *models.Challenge) (*models.Challenge, error)
	// DiscardActiveChallenges deactivates the user's active challenges,
	// optionally restricted to one uid. Returns how many were discarded.
	DiscardActiveChallenges(ctx context.Context, userID int64, uid string) (int, error)
	// ChallengeByUID looks up a challenge by (user, uid); ErrChallengeNotFound
	// when absent.
	ChallengeByUID(ctx context.Context, userID int64, uid string) (*models.Challenge, error)
	// HasResponse reports whether a response row exists for the challenge.
	HasResponse(ctx context.Context, challengeID int64) (bool, error)
	// CreateResponse persists the response and resolves its challenge in one
	// transaction; ErrAlreadyResponded when the challenge already has one.
	CreateResponse(ctx context.Context, resp *models.Response) (*models.Response, error)
}

// FactSource supplies fact content; selection weighting lives behind it.
type FactSource interface {
	// SelectActiveFact returns a random active fact, or nil when none exist.
	SelectActiveFact(ctx context.Context) (*models.Fact, error)
	GetFact(ctx context.Context, id int64) (*models.Fact, error)
}

// Summarizer is notified after every resolved response so it can close out
// any batch windows that just filled up.
type Summarizer interface {
	MaybeSummarize(ctx context.Context, userID int64) error
}

type Service struct {
	store      Store
	facts      FactSource
	summarizer Summarizer
}

func NewService(store Store, facts FactSource, summarizer Summarizer) *Service {
	return &Service{store: store, facts: facts, summarizer: summarizer}
}

// generateUID returns a 32-char hex identifier for addressing a challenge.
func generateUID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate uid: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// GetOrCreateCurrentChallenge returns the user's open challenge, creating one
// from a freshly selected fact if none is open. Idempotent while the challenge
// is unresponded.
func (s *Service) GetOrCreateCurrentChallenge(ctx context.Context, userID int64) (*models.ChallengeView, error) {
	challenge, err := s.store.CurrentChallenge(ctx, userID)
	if err != nil {
		return nil, err
	}

	if challenge == nil {
		fact, err := s.facts.SelectActiveFact(ctx)
		if err != nil {
			return nil, err
		}
		if fact == nil {
			return nil, ErrNoFactsAvailable
		}

		uid, err := generateUID()
		if err != nil {
			return nil, err
		}
		fresh := &models.Challenge{
			UID:    uid,
			UserID: userID,
			FactID: fact.ID,
			Active: true,
			Type:   fact.Type,
		}
		if err := fresh.Validate(); err != nil {
			return nil, err
		}
		challenge, err = s.store.CreateChallenge(ctx, fresh)
		if err != nil {
			return nil, err
		}
	}

	fact, err := s.facts.GetFact(ctx, challenge.FactID)
	if err != nil {
		return nil, err
	}
	return models.NewChallengeView(challenge, fact)
}

// DiscardCurrentChallenge deactivates the user's open challenge without
// recording a response. uid, when non-empty, restricts the discard to that
// challenge. No-op if nothing is open; the next get-or-create makes a new one.
func (s *Service) DiscardCurrentChallenge(ctx context.Context, userID int64, uid string) error {
	n, err := s.store.DiscardActiveChallenges(ctx, userID, uid)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[quiz] user %d discarded %d challenge(s)", userID, n)
	}
	return nil
}

// RespondToChallenge records the user's single answer to the challenge with
// the given uid: it validates the submission, judges correctness against the
// fact, persists the response, and pokes the summarizer.
func (s *Service) RespondToChallenge(ctx context.Context, userID int64, uid string, req *models.SubmitResponseRequest) (*models.Response, error) {
	challenge, err := s.store.ChallengeByUID(ctx, userID, uid)
	if err != nil {
		return nil, err
	}

	hasResponse, err := s.store.HasResponse(ctx, challenge.ID)
	if err != nil {
		return nil, err
	}
	if hasResponse {
		return nil, fmt.Errorf("%w: challenge %s has already gotten a response", ErrAlreadyResponded, uid)
	}

	if got := req.Type(); got != challenge.Type {
		if got == "" {
			return nil, fmt.Errorf("%w: exactly one answer branch must be set", ErrBadRequest)
		}
		return nil, fmt.Errorf("%w: challenge is of type %s; got response of type %s", ErrBadRequest, challenge.Type, got)
	}
	if err := ValidateAnswer(req); err != nil {
		return nil, err
	}

	fact, err := s.facts.GetFact(ctx, challenge.FactID)
	if err != nil {
		return nil, err
	}

	correct, err := Correctness(fact, req)
	if err != nil {
		return nil, err
	}

	resp := &models.Response{
		ChallengeID:       challenge.ID,
		UserID:            userID,
		ConfidencePercent: ConfidencePercent(req),
		Correct:           correct,
		Type:              challenge.Type,
		Boolean:           req.Boolean,
		Numeric:           req.Numeric,
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	// The response is already durable; a summarization failure must not fail
	// the submission. The next response retries the same window.
	if err := s.summarizer.MaybeSummarize(ctx, userID); err != nil {
		log.Printf("[quiz] summarize after response %d failed: %v", created.ID, err)
	}

	return created, nil
}
