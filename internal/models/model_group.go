package models

// Group is an access-control group of the auth system.
type Group struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name string `gorm:"column:name;type:varchar(150);not null;uniqueIndex" json:"name"`
}

func (Group) TableName() string { return "auth_group" }

// UserGroup is a user's membership of a group.
type UserGroup struct {
	UserID  string `gorm:"column:user_id;type:varchar(64);primaryKey"`
	GroupID string `gorm:"column:group_id;type:uuid;primaryKey;index"`
}

func (UserGroup) TableName() string { return "auth_user_groups" }
