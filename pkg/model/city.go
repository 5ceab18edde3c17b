package model

type City struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"size:150;not null"`
	State string `gorm:"size:2;not null"`
}

func (City) TableName() string {
	return "cities"
}
