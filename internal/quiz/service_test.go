package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/steinarvk/brator/internal/models"
)

type memStore struct {
	challenges []*models.Challenge
	responses  []*models.Response
	nextID     int64
}

func (m *memStore) CurrentChallenge(ctx context.Context, userID int64) (*models.Challenge, error) {
	for i := len(m.challenges) - 1; i >= 0; i-- {
		c := m.challenges[i]
		if c.UserID == userID && c.Active {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateChallenge(ctx context.Context, c *models.Challenge) (*models.Challenge, error) {
	if existing, _ := m.CurrentChallenge(ctx, c.UserID); existing != nil {
		return existing, nil
	}
	m.nextID++
	created := *c
	created.ID = m.nextID
	m.challenges = append(m.challenges, &created)
	copied := created
	return &copied, nil
}

func (m *memStore) DiscardActiveChallenges(ctx context.Context, userID int64, uid string) (int, error) {
	n := 0
	for _, c := range m.challenges {
		if c.UserID == userID && c.Active && (uid == "" || c.UID == uid) {
			c.Active = false
			n++
		}
	}
	return n, nil
}

func (m *memStore) ChallengeByUID(ctx context.Context, userID int64, uid string) (*models.Challenge, error) {
	for _, c := range m.challenges {
		if c.UserID == userID && c.UID == uid {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrChallengeNotFound
}

func (m *memStore) HasResponse(ctx context.Context, challengeID int64) (bool, error) {
	for _, r := range m.responses {
		if r.ChallengeID == challengeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateResponse(ctx context.Context, resp *models.Response) (*models.Response, error) {
	for _, r := range m.responses {
		if r.ChallengeID == resp.ChallengeID {
			return nil, ErrAlreadyResponded
		}
	}
	m.nextID++
	created := *resp
	created.ID = m.nextID
	m.responses = append(m.responses, &created)
	for _, c := range m.challenges {
		if c.ID == resp.ChallengeID {
			c.Active = false
		}
	}
	copied := created
	return &copied, nil
}

type memFacts struct {
	facts []*models.Fact
	// next indexes the fact served by the next SelectActiveFact call.
	next int
}

func (m *memFacts) SelectActiveFact(ctx context.Context) (*models.Fact, error) {
	if len(m.facts) == 0 {
		return nil, nil
	}
	f := m.facts[m.next%len(m.facts)]
	m.next++
	return f, nil
}

func (m *memFacts) GetFact(ctx context.Context, id int64) (*models.Fact, error) {
	for _, f := range m.facts {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, errors.New("fact not found")
}

type nopSummarizer struct{ calls int }

func (n *nopSummarizer) MaybeSummarize(ctx context.Context, userID int64) error {
	n.calls++
	return nil
}

func booleanFact(id int64, answer bool) *models.Fact {
	return &models.Fact{
		ID:     id,
		Key:    "test-bool",
		Active: true,
		Type:   models.AnswerBoolean,
		Boolean: &models.BooleanFact{
			QuestionText:  "Is the sky blue?",
			CorrectAnswer: answer,
		},
	}
}

func numericFact(id int64, answer float64) *models.Fact {
	return &models.Fact{
		ID:     id,
		Key:    "test-num",
		Active: true,
		Type:   models.AnswerNumeric,
		Numeric: &models.NumericFact{
			QuestionText:  "How many moons does Mars have?",
			Unit:          models.UnitNone,
			CorrectAnswer: answer,
		},
	}
}

func newTestService(facts ...*models.Fact) (*Service, *memStore, *nopSummarizer) {
	store := &memStore{}
	summarizer := &nopSummarizer{}
	svc := NewService(store, &memFacts{facts: facts}, summarizer)
	return svc, store, summarizer
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	ctx := context.Background()

	first, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.UID == "" {
		t.Fatal("challenge has no uid")
	}

	second, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second.UID != first.UID {
		t.Errorf("repeated get changed the challenge: %s != %s", second.UID, first.UID)
	}
}

func TestGetOrCreateNoFacts(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.GetOrCreateCurrentChallenge(context.Background(), 1); !errors.Is(err, ErrNoFactsAvailable) {
		t.Errorf("got %v, want ErrNoFactsAvailable", err)
	}
}

func TestChallengeViewHidesAnswer(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	view, err := svc.GetOrCreateCurrentChallenge(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if view.Boolean == nil {
		t.Fatal("boolean prompt missing")
	}
	if view.Boolean.QuestionText == "" {
		t.Error("prompt has no question text")
	}
}

func TestDiscardMakesRoomForNewChallenge(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true), numericFact(2, 2))
	ctx := context.Background()

	first, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DiscardCurrentChallenge(ctx, 1, ""); err != nil {
		t.Fatalf("discard: %v", err)
	}
	second, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.UID == first.UID {
		t.Error("discard did not retire the challenge")
	}
}

func TestDiscardWithWrongUIDIsNoOp(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	ctx := context.Background()

	first, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DiscardCurrentChallenge(ctx, 1, "deadbeef"); err != nil {
		t.Fatalf("discard: %v", err)
	}
	second, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.UID != first.UID {
		t.Error("discard with a non-matching uid retired the challenge")
	}
}

func TestRespondResolvesChallenge(t *testing.T) {
	svc, _, summarizer := newTestService(booleanFact(1, true))
	ctx := context.Background()

	view, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.RespondToChallenge(ctx, 1, view.UID, &models.SubmitResponseRequest{
		Boolean: &models.BooleanAnswer{Answer: true, ConfidencePercent: 80},
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !resp.Correct {
		t.Error("matching boolean answer judged incorrect")
	}
	if resp.ConfidencePercent != 80 {
		t.Errorf("confidence = %v, want 80", resp.ConfidencePercent)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", summarizer.calls)
	}

	// The challenge is resolved; the next get starts a fresh one.
	next, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if next.UID == view.UID {
		t.Error("responding did not retire the challenge")
	}
}

func TestSecondResponseRejected(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	ctx := context.Background()

	view, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	req := &models.SubmitResponseRequest{
		Boolean: &models.BooleanAnswer{Answer: true, ConfidencePercent: 80},
	}
	if _, err := svc.RespondToChallenge(ctx, 1, view.UID, req); err != nil {
		t.Fatalf("first respond: %v", err)
	}
	if _, err := svc.RespondToChallenge(ctx, 1, view.UID, req); !errors.Is(err, ErrAlreadyResponded) {
		t.Errorf("second respond: got %v, want ErrAlreadyResponded", err)
	}
}

func TestRespondTypeMismatch(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	ctx := context.Background()

	view, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.RespondToChallenge(ctx, 1, view.UID, &models.SubmitResponseRequest{
		Numeric: &models.NumericAnswer{CiLow: 1, CiHigh: 2},
	})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("got %v, want ErrBadRequest", err)
	}
}

func TestRespondUnknownChallenge(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true))
	_, err := svc.RespondToChallenge(context.Background(), 1, "deadbeef", &models.SubmitResponseRequest{
		Boolean: &models.BooleanAnswer{Answer: true, ConfidencePercent: 80},
	})
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("got %v, want ErrChallengeNotFound", err)
	}
}

func TestNumericRespondEndToEnd(t *testing.T) {
	cases := []struct {
		name      string
		low, high float64
		want      bool
	}{
		{"interval contains answer", 1, 4, true},
		{"interval misses answer", 5, 8, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(numericFact(1, 2))
			ctx := context.Background()

			view, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := svc.RespondToChallenge(ctx, 1, view.UID, &models.SubmitResponseRequest{
				Numeric: &models.NumericAnswer{CiLow: tc.low, CiHigh: tc.high},
			})
			if err != nil {
				t.Fatalf("respond: %v", err)
			}
			if resp.Correct != tc.want {
				t.Errorf("correct = %v, want %v", resp.Correct, tc.want)
			}
			if resp.ConfidencePercent != models.NumericConfidencePercent {
				t.Errorf("confidence = %v, want %v", resp.ConfidencePercent, models.NumericConfidencePercent)
			}
		})
	}
}

func TestUsersIsolated(t *testing.T) {
	svc, _, _ := newTestService(booleanFact(1, true), numericFact(2, 2))
	ctx := context.Background()

	a, err := svc.GetOrCreateCurrentChallenge(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.GetOrCreateCurrentChallenge(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.UID == b.UID {
		t.Fatal("users share a challenge")
	}
	// User 2 cannot answer user 1's challenge.
	if _, err := svc.RespondToChallenge(ctx, 2, a.UID, &models.SubmitResponseRequest{
		Boolean: &models.BooleanAnswer{Answer: true, ConfidencePercent: 80},
	}); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("cross-user respond: got %v, want ErrChallengeNotFound", err)
	}
}
