package review

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashvocab/pkg/models"
)

// fakeVocabulary serves canned answers and records which policy was used.
type fakeVocabulary struct {
	word            *models.WordWithStatus
	err             error
	randomCalls     int
	prioritizedFor  []string
	prioritizedWord func(userID string) *models.WordWithStatus
}

func (f *fakeVocabulary) Random(ctx context.Context) (*models.WordWithStatus, error) {
	f.randomCalls++
	return f.word, f.err
}

func (f *fakeVocabulary) Prioritized(ctx context.Context, userID string) (*models.WordWithStatus, error) {
	f.prioritizedFor = append(f.prioritizedFor, userID)
	if f.prioritizedWord != nil {
		return f.prioritizedWord(userID), f.err
	}
	return f.word, f.err
}

func testWord(id, term string, status models.Status) *models.WordWithStatus {
	return &models.WordWithStatus{
		Word:   models.Word{ID: id, Term: term, Translation: term + "-translated"},
		Status: status,
	}
}

func TestSelectorGuestUsesRandomPolicy(t *testing.T) {
	vocab := &fakeVocabulary{word: testWord("w1", "hund", models.StatusNew)}
	selector := NewSelector(vocab)

	got, err := selector.Next(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
	assert.Equal(t, 1, vocab.randomCalls)
	assert.Empty(t, vocab.prioritizedFor)
}

func TestSelectorAuthenticatedUsesPriorityPolicy(t *testing.T) {
	vocab := &fakeVocabulary{word: testWord("w2", "katze", models.StatusUnknown)}
	selector := NewSelector(vocab)

	got, err := selector.Next(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "w2", got.ID)
	assert.Equal(t, 0, vocab.randomCalls)
	assert.Equal(t, []string{"user-1"}, vocab.prioritizedFor)
}

func TestSelectorEmptyVocabulary(t *testing.T) {
	vocab := &fakeVocabulary{err: sql.ErrNoRows}
	selector := NewSelector(vocab)

	_, err := selector.Next(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoWordsAvailable)

	_, err = selector.Next(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoWordsAvailable)
}

func TestSelectorStoreFailure(t *testing.T) {
	vocab := &fakeVocabulary{err: errors.New("connection refused")}
	selector := NewSelector(vocab)

	_, err := selector.Next(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.NotErrorIs(t, err, ErrNoWordsAvailable)
}
