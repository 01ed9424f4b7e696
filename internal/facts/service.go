// Package facts is the fact provider: it stores versioned fact content and
// hands out a weighted-random active fact when the quiz needs a new challenge.
package facts

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/steinarvk/brator/internal/models"
)

type Service struct {
	store *Store

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) randomFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// SelectActiveFact picks a random active fact: first a selection bucket by
// category weight, then a uniform draw within the bucket. Returns nil when no
// active facts exist anywhere.
func (s *Service) SelectActiveFact(ctx context.Context) (*models.Fact, error) {
	buckets, err := s.store.ActiveBuckets(ctx)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}
	weights := make([]float64, len(buckets))
	for i, b := range buckets {
		weights[i] = b.Weight
	}
	idx := PickWeighted(weights, s.randomFloat())
	if idx < 0 {
		return nil, nil
	}
	return s.store.RandomActiveFact(ctx, buckets[idx].CategoryID)
}

// GetFact returns one fact version by row id, active or not.
func (s *Service) GetFact(ctx context.Context, id int64) (*models.Fact, error) {
	return s.store.GetFactByID(ctx, id)
}

// ImportFact stores one fact version, deactivating any previous version of the
// same key with different content. Malformed payloads are rejected before
// anything is persisted.
func (s *Service) ImportFact(ctx context.Context, up models.FactUpsert) (*models.Fact, error) {
	fact := &models.Fact{
		Key:      up.Key,
		Active:   true,
		Category: up.Category,
		Boolean:  up.Boolean,
		Numeric:  up.Numeric,
	}
	switch {
	case up.Boolean != nil && up.Numeric == nil:
		fact.Type = models.AnswerBoolean
	case up.Numeric != nil && up.Boolean == nil:
		fact.Type = models.AnswerNumeric
	default:
		return nil, fmt.Errorf("invalid fact data for key %q: exactly one payload branch required", up.Key)
	}
	if err := fact.Validate(); err != nil {
		return nil, err
	}
	hash, err := ContentHash(fact)
	if err != nil {
		return nil, err
	}
	fact.ContentHash = hash
	return s.store.UpsertFactVersion(ctx, fact)
}

// ImportFacts imports a batch, stopping at the first failure.
func (s *Service) ImportFacts(ctx context.Context, ups []models.FactUpsert) (int, error) {
	for i, up := range ups {
		if _, err := s.ImportFact(ctx, up); err != nil {
			return i, fmt.Errorf("fact %d (%q): %w", i, up.Key, err)
		}
	}
	return len(ups), nil
}

// ExportFacts returns every stored fact version, including deactivated ones.
func (s *Service) ExportFacts(ctx context.Context) ([]models.Fact, error) {
	return s.store.ListFacts(ctx)
}

func (s *Service) ImportCategories(ctx context.Context, ups []models.CategoryUpsert) (int, error) {
	for i, up := range ups {
		if up.Name == "" {
			return i, fmt.Errorf("category %d: name required", i)
		}
		if up.Weight < 0 {
			return i, fmt.Errorf("category %q: negative weight", up.Name)
		}
		weight := up.Weight
		if weight == 0 {
			weight = 1
		}
		if _, err := s.store.UpsertCategory(ctx, up.Name, weight); err != nil {
			return i, err
		}
	}
	return len(ups), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.FactCategory, error) {
	return s.store.ListCategories(ctx)
}
