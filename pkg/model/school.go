package model

type School struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:300;not null"`
	City int64  `gorm:"column:city;index;not null"`
}

func (School) TableName() string {
	return "schools"
}
