package models

import "time"

// Gift 礼物定义表
type Gift struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Icon        string `gorm:"size:255" json:"icon"`
	Rarity      string `gorm:"size:20;default:'common'" json:"rarity"` // common, rare, epic, legendary
}

// TableName 指定表名
func (Gift) TableName() string {
	return "gifts"
}

// Inventory 用户礼物库存表
// 每个 (user_id, gift_id) 至多一条记录，重复获得只累加数量
type Inventory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_gift;not null" json:"user_id"`
	GiftID     uint      `gorm:"uniqueIndex:idx_user_gift;not null" json:"gift_id"`
	Quantity   int       `gorm:"default:1" json:"quantity"`
	ObtainedAt time.Time `json:"obtained_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 关联
	Gift Gift `gorm:"foreignKey:GiftID" json:"gift,omitempty"`
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventories"
}
