package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/chaperone-app/chaperone-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Vocabulary{}, &models.Association{}, &models.Option{}))
	return New(db)
}

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash", IsActive: true}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedVocabulary(t *testing.T, s *Store, word, meaning string) *models.Vocabulary {
	t.Helper()
	vocab := &models.Vocabulary{Word: word, Meaning: meaning}
	require.NoError(t, s.CreateVocabulary(context.Background(), vocab))
	return vocab
}

func seedAssociation(t *testing.T, s *Store, userID, vocabID uint) *models.Association {
	t.Helper()
	association := &models.Association{Status: models.StatusPending, UserID: userID, VocabularyID: vocabID}
	options := []models.Option{
		{Option: "TRANSIENT", Meaning: "fleeting", IsCorrect: true},
		{Option: "permanent", Meaning: "lasting forever"},
		{Option: "static", Meaning: "unchanging"},
	}
	require.NoError(t, s.CreateAssociation(context.Background(), association, options))
	return association
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "ada@example.com")

	dup := &models.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "hash"}
	assert.ErrorIs(t, s.CreateUser(context.Background(), dup), ErrDuplicateEmail)
}

func TestPendingAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "ada@example.com")
	other := seedUser(t, s, "bob@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")

	first := seedAssociation(t, s, user.ID, vocab.ID)
	second := seedAssociation(t, s, user.ID, vocab.ID)
	seedAssociation(t, s, other.ID, vocab.ID)

	answered := seedAssociation(t, s, user.ID, vocab.ID)
	require.NoError(t, answered.MarkCorrect())
	require.NoError(t, s.SaveAssociation(ctx, answered))

	pending, err := s.PendingAssociations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Most recent first, answered and foreign associations excluded.
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)
	assert.Equal(t, "ephemeral", pending[0].Vocabulary.Word)
	assert.Len(t, pending[0].Options, 3)
}

func TestPendingAssociationsEmpty(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "ada@example.com")

	pending, err := s.PendingAssociations(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Len(t, pending, 0)
}

func TestAssociationByIDScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "ada@example.com")
	intruder := seedUser(t, s, "bob@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")
	association := seedAssociation(t, s, owner.ID, vocab.ID)

	found, err := s.AssociationByID(ctx, owner.ID, association.ID)
	require.NoError(t, err)
	assert.Equal(t, association.ID, found.ID)
	assert.Len(t, found.Options, 3)

	_, err = s.AssociationByID(ctx, intruder.ID, association.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAssociationPersistsOptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "ada@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")

	association := seedAssociation(t, s, user.ID, vocab.ID)

	found, err := s.AssociationByID(ctx, user.ID, association.ID)
	require.NoError(t, err)
	require.Len(t, found.Options, 3)

	correct := 0
	for _, opt := range found.Options {
		assert.Equal(t, association.ID, opt.AssociationID)
		if opt.IsCorrect {
			correct++
		}
	}
	assert.Equal(t, 1, correct)
}

func TestSaveAssociationCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "ada@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")
	association := seedAssociation(t, s, user.ID, vocab.ID)

	require.NoError(t, association.MarkIncorrect())
	require.NoError(t, s.SaveAssociation(ctx, association))

	found, err := s.AssociationByID(ctx, user.ID, association.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncorrect, found.Status)
	assert.Equal(t, 1, found.TimesPlayed)
	assert.Equal(t, 1, found.TimesIncorrect)
	assert.Equal(t, 0, found.TimesCorrect)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "ada@example.com")
	survivor := seedUser(t, s, "bob@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")
	seedAssociation(t, s, user.ID, vocab.ID)
	kept := seedAssociation(t, s, survivor.ID, vocab.ID)

	require.NoError(t, s.DeleteUser(ctx, user.ID))

	_, err := s.UserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := s.PendingAssociations(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 0)

	// The other user's association and its options survive.
	found, err := s.AssociationByID(ctx, survivor.ID, kept.ID)
	require.NoError(t, err)
	assert.Len(t, found.Options, 3)

	// The shared vocabulary is untouched.
	_, err = s.VocabularyByID(ctx, vocab.ID)
	assert.NoError(t, err)
}

func TestDeleteUserNotFound(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.DeleteUser(context.Background(), 999), ErrNotFound)
}

func TestDeleteVocabularyCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "ada@example.com")
	vocab := seedVocabulary(t, s, "ephemeral", "lasting a short time")
	kept := seedVocabulary(t, s, "static", "unchanging")
	association := seedAssociation(t, s, user.ID, vocab.ID)
	other := seedAssociation(t, s, user.ID, kept.ID)

	require.NoError(t, s.DeleteVocabulary(ctx, vocab.ID))

	_, err := s.VocabularyByID(ctx, vocab.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AssociationByID(ctx, user.ID, association.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := s.AssociationByID(ctx, user.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, found.Options, 3)
}
