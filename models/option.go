package models

// Option is one candidate answer within an association's quiz. Options are
// immutable after creation; exactly one option per association is correct.
type Option struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Option    string `gorm:"not null;size:255" json:"option"`
	Meaning   string `gorm:"not null;size:255" json:"meaning"`
	IsCorrect bool   `gorm:"not null;default:false" json:"is_correct"`

	AssociationID uint `gorm:"not null;index" json:"association_id"`
}
