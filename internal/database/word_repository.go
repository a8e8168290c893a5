package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/flashvocab/pkg/models"
)

// WordRepository handles database operations for vocabulary entries.
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new vocabulary entry, generating its ID when absent.
// Entries are immutable once created; there is no update counterpart.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.ID == "" {
		word.ID = uuid.NewString()
	}
	query := r.db.Rebind(`
		INSERT INTO words (id, term, translation, example)
		VALUES (?, ?, ?, ?)
	`)
	if _, err := r.db.ExecContext(ctx, query, word.ID, word.Term, word.Translation, word.Example); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("word %q already exists: %w", word.Term, err)
		}
		return fmt.Errorf("failed to create word: %v", err)
	}
	query = r.db.Rebind("SELECT created_at FROM words WHERE id = ?")
	if err := r.db.GetContext(ctx, &word.CreatedAt, query, word.ID); err != nil {
		return fmt.Errorf("failed to get created_at: %v", err)
	}
	return nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id string) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE id = ?")
	if err := r.db.GetContext(ctx, &word, query, id); err != nil {
		return nil, err
	}
	return &word, nil
}

// GetByTerm returns a word by its lowercased source term, or sql.ErrNoRows.
func (r *WordRepository) GetByTerm(ctx context.Context, term string) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE term = ?")
	if err := r.db.GetContext(ctx, &word, query, term); err != nil {
		return nil, err
	}
	return &word, nil
}

// Count returns the total number of vocabulary entries.
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %v", err)
	}
	return n, nil
}

// Random returns one uniformly random entry from the whole vocabulary, with
// no progress attached (guest policy). Returns sql.ErrNoRows when the
// vocabulary is empty.
func (r *WordRepository) Random(ctx context.Context) (*models.WordWithStatus, error) {
	var word models.Word
	err := r.db.GetContext(ctx, &word, "SELECT * FROM words ORDER BY RANDOM() LIMIT 1")
	if err != nil {
		return nil, err
	}
	return &models.WordWithStatus{Word: word, Status: models.StatusNew}, nil
}

// Prioritized returns the next entry the given user should review: any
// new/unknown word before any known word, least-recently-reviewed first
// (never-reviewed entries sort before everything via the epoch sentinel),
// random among ties. Returns sql.ErrNoRows when the vocabulary is empty.
func (r *WordRepository) Prioritized(ctx context.Context, userID string) (*models.WordWithStatus, error) {
	var word models.WordWithStatus
	query := r.db.Rebind(`
		SELECT w.id, w.term, w.translation, w.example, w.created_at,
		       COALESCE(p.status, 'new') AS status,
		       p.last_reviewed_at AS last_reviewed_at
		FROM words w
		LEFT JOIN progress p ON p.word_id = w.id AND p.user_id = ?
		ORDER BY CASE WHEN COALESCE(p.status, 'new') = 'known' THEN 2 ELSE 1 END ASC,
		         COALESCE(p.last_reviewed_at, '1970-01-01 00:00:00') ASC,
		         RANDOM()
		LIMIT 1
	`)
	if err := r.db.GetContext(ctx, &word, query, userID); err != nil {
		return nil, err
	}
	return &word, nil
}

// Delete removes a word; progress rows referencing it go with it via the
// ON DELETE CASCADE constraint.
func (r *WordRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind("DELETE FROM words WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}
