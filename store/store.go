// Package store is the single source of truth for users, vocabularies,
// associations and options. Every cache entry is a derived projection of
// data that first landed here.
package store

import (
	"context"
	"errors"

	"github.com/chaperone-app/chaperone-api/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser persists a new user. The email must be unique.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.db.WithContext(ctx).Find(&users).Error
	return users, err
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// DeleteUser removes a user together with all associations they own and the
// options under those associations, in one transaction. The cascade is part
// of the store contract rather than a schema side effect.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var associationIDs []uint
	if err := tx.Model(&models.Association{}).Where("user_id = ?", id).Pluck("id", &associationIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(associationIDs) > 0 {
		if err := tx.Where("association_id IN ?", associationIDs).Delete(&models.Option{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Where("id IN ?", associationIDs).Delete(&models.Association{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	result := tx.Delete(&models.User{}, id)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	return tx.Commit().Error
}

func (s *Store) CreateVocabulary(ctx context.Context, vocab *models.Vocabulary) error {
	return s.db.WithContext(ctx).Create(vocab).Error
}

func (s *Store) Vocabularies(ctx context.Context) ([]models.Vocabulary, error) {
	vocabularies := make([]models.Vocabulary, 0)
	err := s.db.WithContext(ctx).Find(&vocabularies).Error
	return vocabularies, err
}

func (s *Store) VocabularyByID(ctx context.Context, id uint) (*models.Vocabulary, error) {
	var vocab models.Vocabulary
	if err := s.db.WithContext(ctx).First(&vocab, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &vocab, nil
}

// DeleteVocabulary removes a vocabulary and cascades to its associations and
// their options, mirroring DeleteUser.
func (s *Store) DeleteVocabulary(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var associationIDs []uint
	if err := tx.Model(&models.Association{}).Where("vocabulary_id = ?", id).Pluck("id", &associationIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(associationIDs) > 0 {
		if err := tx.Where("association_id IN ?", associationIDs).Delete(&models.Option{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Where("id IN ?", associationIDs).Delete(&models.Association{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	result := tx.Delete(&models.Vocabulary{}, id)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	return tx.Commit().Error
}

// PendingAssociations returns the user's unanswered associations, most recent
// first, with vocabulary and options attached.
func (s *Store) PendingAssociations(ctx context.Context, userID uint) ([]models.Association, error) {
	associations := make([]models.Association, 0)
	err := s.db.WithContext(ctx).
		Preload("Vocabulary").
		Preload("Options").
		Where("user_id = ? AND status = ?", userID, models.StatusPending).
		Order("id desc").
		Find(&associations).Error
	return associations, err
}

// AssociationByID fetches one association scoped to its owner. An existing
// association owned by a different user is reported as not found.
func (s *Store) AssociationByID(ctx context.Context, userID, id uint) (*models.Association, error) {
	var association models.Association
	err := s.db.WithContext(ctx).
		Preload("Vocabulary").
		Preload("Options").
		Where("id = ? AND user_id = ?", id, userID).
		First(&association).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &association, nil
}

// CreateAssociation persists an association and its generated options in one
// transaction, so a failure leaves no partial rows behind.
func (s *Store) CreateAssociation(ctx context.Context, association *models.Association, options []models.Option) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(association).Error; err != nil {
		tx.Rollback()
		return err
	}

	for i := range options {
		options[i].AssociationID = association.ID
		if err := tx.Create(&options[i]).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	association.Options = options
	return nil
}

// SaveAssociation writes back the status and counters of an answered
// association. Options are immutable and never touched here.
func (s *Store) SaveAssociation(ctx context.Context, association *models.Association) error {
	return s.db.WithContext(ctx).
		Model(&models.Association{}).
		Where("id = ?", association.ID).
		Updates(map[string]interface{}{
			"status":          association.Status,
			"times_played":    association.TimesPlayed,
			"times_correct":   association.TimesCorrect,
			"times_incorrect": association.TimesIncorrect,
		}).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
