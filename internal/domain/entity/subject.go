package entity

// Subject is the reason for a visit, picked from an admin-managed list
type Subject struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
}

func (Subject) TableName() string {
	return "appointment_subjects"
}

// DefaultSubjects are seeded into an empty catalog
var DefaultSubjects = []string{
	"General check-up",
	"Skin consultation",
	"Treatment follow-up",
	"Wound dressing",
}
