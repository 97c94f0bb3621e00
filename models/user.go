package models

// User represents a registered learner. Password always holds a bcrypt hash,
// never the raw credential.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FirstName   string `gorm:"not null;size:50" json:"first_name"`
	LastName    string `gorm:"not null;size:50" json:"last_name"`
	Email       string `gorm:"not null;size:100;uniqueIndex" json:"email"`
	Password    string `gorm:"not null;size:100" json:"-"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser bool   `gorm:"not null;default:false" json:"is_superuser"`

	Associations []Association `gorm:"foreignKey:UserID" json:"-"`
}
