package models

// Level 线索关卡表
// 每条记录对应一个线索编号，答案判定规则由字段组合描述
type Level struct {
	BaseModel
	ClueNumber    int         `gorm:"uniqueIndex;not null" json:"clue_number"`
	Title         string      `gorm:"size:100" json:"title"`
	Question      string      `gorm:"type:text" json:"question"`
	Answer        string      `gorm:"size:255;not null" json:"answer"`
	Aliases       StringArray `gorm:"type:json" json:"aliases,omitempty"`
	CaseSensitive bool        `gorm:"default:false" json:"case_sensitive"`
	Options       JSONArray   `gorm:"type:json" json:"options,omitempty"`
	PassMessage   string      `gorm:"size:255" json:"pass_message"`
	FailMessage   string      `gorm:"size:255" json:"fail_message"`
	RewardGift    string      `gorm:"size:100" json:"reward_gift"` // 为空表示无奖励
	ScoreValue    int         `gorm:"default:100" json:"score_value"`
}

// TableName 指定表名
func (Level) TableName() string {
	return "levels"
}
