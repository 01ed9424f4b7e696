package facts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/steinarvk/brator/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const factColumns = `f.id, f.key, f.active, c.name, f.fact_type, f.content_hash,
	        f.boolean_question, f.boolean_answer,
	        f.numeric_question, f.numeric_unit, f.numeric_answer, f.created_at`

type factScanner interface {
	Scan(dest ...interface{}) error
}

// scanFact reads one fact row and rebuilds the payload branch named by the
// type tag. Columns of the other branch are ignored; a row whose tagged
// columns are NULL is corrupt and returns an error.
func scanFact(row factScanner) (*models.Fact, error) {
	var f models.Fact
	var category sql.NullString
	var boolQuestion sql.NullString
	var boolAnswer sql.NullBool
	var numQuestion, numUnit sql.NullString
	var numAnswer sql.NullFloat64

	err := row.Scan(&f.ID, &f.Key, &f.Active, &category, &f.Type, &f.ContentHash,
		&boolQuestion, &boolAnswer, &numQuestion, &numUnit, &numAnswer, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		f.Category = &category.String
	}
	switch f.Type {
	case models.AnswerBoolean:
		if !boolQuestion.Valid || !boolAnswer.Valid {
			return nil, fmt.Errorf("fact %d: boolean payload missing", f.ID)
		}
		f.Boolean = &models.BooleanFact{
			QuestionText:  boolQuestion.String,
			CorrectAnswer: boolAnswer.Bool,
		}
	case models.AnswerNumeric:
		if !numQuestion.Valid || !numUnit.Valid || !numAnswer.Valid {
			return nil, fmt.Errorf("fact %d: numeric payload missing", f.ID)
		}
		f.Numeric = &models.NumericFact{
			QuestionText:  numQuestion.String,
			Unit:          models.Unit(numUnit.String),
			CorrectAnswer: numAnswer.Float64,
		}
	default:
		return nil, fmt.Errorf("fact %d: illegal fact type %q", f.ID, f.Type)
	}
	return &f, nil
}

// CategoryBucket is one weighted selection bucket: a category, or the pool of
// uncategorized facts when CategoryID is nil.
type CategoryBucket struct {
	CategoryID *int64
	Weight     float64
}

// ActiveBuckets returns the selection buckets that currently contain at least
// one active fact. Uncategorized facts form a bucket of weight 1.
func (s *Store) ActiveBuckets(ctx context.Context) ([]CategoryBucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.weight FROM fact_categories c
		 WHERE c.weight > 0
		   AND EXISTS (SELECT 1 FROM facts f WHERE f.category_id = c.id AND f.active)
		 ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("list category buckets: %w", err)
	}
	defer rows.Close()

	var buckets []CategoryBucket
	for rows.Next() {
		var id int64
		var b CategoryBucket
		if err := rows.Scan(&id, &b.Weight); err != nil {
			return nil, fmt.Errorf("scan category bucket: %w", err)
		}
		b.CategoryID = &id
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var hasUncategorized bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM facts WHERE active AND category_id IS NULL)`,
	).Scan(&hasUncategorized)
	if err != nil {
		return nil, fmt.Errorf("check uncategorized facts: %w", err)
	}
	if hasUncategorized {
		buckets = append(buckets, CategoryBucket{Weight: 1})
	}
	return buckets, nil
}

// RandomActiveFact draws uniformly from the active facts of one bucket.
// Returns nil when the bucket is empty.
func (s *Store) RandomActiveFact(ctx context.Context, categoryID *int64) (*models.Fact, error) {
	var row *sql.Row
	if categoryID != nil {
		row = s.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT %s FROM facts f
			 LEFT JOIN fact_categories c ON c.id = f.category_id
			 WHERE f.active AND f.category_id = $1
			 ORDER BY random() LIMIT 1`, factColumns),
			*categoryID)
	} else {
		row = s.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT %s FROM facts f
			 LEFT JOIN fact_categories c ON c.id = f.category_id
			 WHERE f.active AND f.category_id IS NULL
			 ORDER BY random() LIMIT 1`, factColumns))
	}
	fact, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random active fact: %w", err)
	}
	return fact, nil
}

func (s *Store) GetFactByID(ctx context.Context, id int64) (*models.Fact, error) {
	fact, err := scanFact(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM facts f
		 LEFT JOIN fact_categories c ON c.id = f.category_id
		 WHERE f.id = $1`, factColumns),
		id))
	if err != nil {
		return nil, fmt.Errorf("get fact %d: %w", id, err)
	}
	return fact, nil
}

// UpsertFactVersion imports one fact version. If the active version of the key
// already has the same content hash this is a no-op returning the existing
// row; otherwise any active version of the key is deactivated (never deleted)
// and the new version inserted as the active one. The whole step runs in a
// transaction so concurrent imports cannot leave two active versions.
func (s *Store) UpsertFactVersion(ctx context.Context, f *models.Fact) (*models.Fact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	var existingHash string
	err = tx.QueryRowContext(ctx,
		`SELECT id, content_hash FROM facts WHERE key = $1 AND active FOR UPDATE`,
		f.Key,
	).Scan(&existingID, &existingHash)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup active fact %q: %w", f.Key, err)
	}
	if err == nil && existingHash == f.ContentHash {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return s.GetFactByID(ctx, existingID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE facts SET active = FALSE WHERE key = $1 AND active`, f.Key,
	); err != nil {
		return nil, fmt.Errorf("deactivate fact %q: %w", f.Key, err)
	}

	var categoryID *int64
	if f.Category != nil {
		id, err := getOrCreateCategory(ctx, tx, *f.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}

	var boolQuestion interface{}
	var boolAnswer interface{}
	var numQuestion, numUnit, numAnswer interface{}
	switch f.Type {
	case models.AnswerBoolean:
		boolQuestion = f.Boolean.QuestionText
		boolAnswer = f.Boolean.CorrectAnswer
	case models.AnswerNumeric:
		numQuestion = f.Numeric.QuestionText
		numUnit = string(f.Numeric.Unit)
		numAnswer = f.Numeric.CorrectAnswer
	}

	var newID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO facts (key, active, category_id, fact_type, content_hash,
		                    boolean_question, boolean_answer,
		                    numeric_question, numeric_unit, numeric_answer)
		 VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		f.Key, categoryID, f.Type, f.ContentHash,
		boolQuestion, boolAnswer, numQuestion, numUnit, numAnswer,
	).Scan(&newID)
	if err != nil {
		return nil, fmt.Errorf("insert fact %q: %w", f.Key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit fact import: %w", err)
	}
	return s.GetFactByID(ctx, newID)
}

func getOrCreateCategory(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fact_categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		name,
	); err != nil {
		return 0, fmt.Errorf("ensure category %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM fact_categories WHERE name = $1`, name,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("get category %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) ListFacts(ctx context.Context) ([]models.Fact, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM facts f
		 LEFT JOIN fact_categories c ON c.id = f.category_id
		 ORDER BY f.key, f.created_at`, factColumns))
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	var out []models.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		out = append(out, *fact)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCategory(ctx context.Context, name string, weight float64) (*models.FactCategory, error) {
	var cat models.FactCategory
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO fact_categories (name, weight) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET weight = EXCLUDED.weight
		 RETURNING id, name, weight, created_at`,
		name, weight,
	).Scan(&cat.ID, &cat.Name, &cat.Weight, &cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert category %q: %w", name, err)
	}
	return &cat, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.FactCategory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, weight, created_at FROM fact_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.FactCategory
	for rows.Next() {
		var cat models.FactCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Weight, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}
