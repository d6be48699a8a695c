package database

import (
	"github.com/wfunc/trivia-game/internal/logger"
	"github.com/wfunc/trivia-game/internal/models"
	"go.uber.org/zap"
)

// seedDefaultData 初始化默认数据（仅在空表时写入）
func seedDefaultData() error {
	if err := seedGifts(); err != nil {
		return err
	}
	if err := seedLevels(); err != nil {
		return err
	}
	return nil
}

// seedGifts 初始化默认礼物
func seedGifts() error {
	var count int64
	DB.Model(&models.Gift{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaultGifts := []models.Gift{
		{
			Name:        "Golden Key",
			Description: "解开第二条线索的奖励",
			Icon:        "golden-key.png",
			Rarity:      "rare",
		},
		{
			Name:        "Silver Coin",
			Description: "参与奖励",
			Icon:        "silver-coin.png",
			Rarity:      "common",
		},
		{
			Name:        "Mystery Box",
			Description: "神秘宝箱",
			Icon:        "mystery-box.png",
			Rarity:      "epic",
		},
	}

	for _, gift := range defaultGifts {
		if err := DB.Create(&gift).Error; err != nil {
			logger.Error("创建默认礼物失败",
				zap.String("name", gift.Name),
				zap.Error(err),
			)
			return err
		}
	}

	logger.Info("默认礼物初始化完成", zap.Int("count", len(defaultGifts)))
	return nil
}

// seedLevels 初始化默认线索关卡
func seedLevels() error {
	var count int64
	DB.Model(&models.Level{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaultLevels := []models.Level{
		{
			ClueNumber:    1,
			Title:         "第一条线索",
			Question:      "四个选项中只有一个是正确答案，仔细看字母。",
			Answer:        "D",
			CaseSensitive: true,
			Options:       models.JSONArray{"A", "B", "C", "D"},
			PassMessage:   "答对了！第一条线索解开，继续下一题。",
			FailMessage:   "不对哦，再想想第一条线索。",
			ScoreValue:    100,
		},
		{
			ClueNumber:    2,
			Title:         "第二条线索",
			Question:      "把那个词倒过来念念看。",
			Answer:        "bonz",
			Aliases:       models.StringArray{"znob"},
			CaseSensitive: false,
			PassMessage:   "太棒了！你解开了最后一条线索！",
			FailMessage:   "还差一点，换个角度想想。",
			RewardGift:    "Golden Key",
			ScoreValue:    100,
		},
	}

	for _, level := range defaultLevels {
		if err := DB.Create(&level).Error; err != nil {
			logger.Error("创建默认关卡失败",
				zap.Int("clue_number", level.ClueNumber),
				zap.Error(err),
			)
			return err
		}
	}

	logger.Info("默认关卡初始化完成", zap.Int("count", len(defaultLevels)))
	return nil
}
