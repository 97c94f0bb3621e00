package models

// Vocabulary is a word plus its canonical meaning. Vocabularies are shared
// across users; only associations are user-scoped.
type Vocabulary struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Word    string `gorm:"not null;size:50" json:"word"`
	Meaning string `gorm:"not null;size:50" json:"meaning"`

	Associations []Association `gorm:"foreignKey:VocabularyID" json:"-"`
}
