package models

import "errors"

// AssociationStatus is the lifecycle state of an association. The only legal
// transitions are pending -> correct and pending -> incorrect.
type AssociationStatus string

const (
	StatusPending   AssociationStatus = "pending"
	StatusCorrect   AssociationStatus = "correct"
	StatusIncorrect AssociationStatus = "incorrect"
)

// ErrAlreadyAnswered is returned when answering an association whose status
// is already terminal.
var ErrAlreadyAnswered = errors.New("association already answered")

// Association is one quiz instance pairing a user with a vocabulary word.
type Association struct {
	ID     uint              `gorm:"primaryKey" json:"id"`
	Status AssociationStatus `gorm:"type:varchar(10);not null;default:pending" json:"status"`

	TimesPlayed    int `gorm:"not null;default:0" json:"number_of_times_played"`
	TimesCorrect   int `gorm:"not null;default:0" json:"number_of_times_correct"`
	TimesIncorrect int `gorm:"not null;default:0" json:"number_of_times_incorrect"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	VocabularyID uint       `gorm:"not null;index" json:"vocabulary_id"`
	Vocabulary   Vocabulary `gorm:"foreignKey:VocabularyID" json:"vocabulary"`

	Options []Option `gorm:"foreignKey:AssociationID" json:"options"`
}

// MarkCorrect records a correct answer. Counters only ever increase.
func (a *Association) MarkCorrect() error {
	if a.Status != StatusPending {
		return ErrAlreadyAnswered
	}
	a.Status = StatusCorrect
	a.TimesPlayed++
	a.TimesCorrect++
	return nil
}

// MarkIncorrect records an incorrect answer.
func (a *Association) MarkIncorrect() error {
	if a.Status != StatusPending {
		return ErrAlreadyAnswered
	}
	a.Status = StatusIncorrect
	a.TimesPlayed++
	a.TimesIncorrect++
	return nil
}
