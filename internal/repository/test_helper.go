package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 游戏系统
		&models.TriviaSession{},
		&models.Level{},

		// 聊天系统
		&models.Message{},

		// 礼物系统
		&models.Gift{},
		&models.Inventory{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestData 创建测试数据
func SeedTestData(t *testing.T, db *gorm.DB) {
	// 创建测试用户
	users := []models.User{
		{
			Username: "testuser1",
			Email:    "test1@example.com",
			Nickname: "测试用户1",
			Status:   "active",
		},
		{
			Username: "testuser2",
			Email:    "test2@example.com",
			Nickname: "测试用户2",
			Status:   "active",
		},
	}
	err := db.Create(&users).Error
	require.NoError(t, err)

	// 创建测试礼物
	gifts := []models.Gift{
		{
			Name:        "Golden Key",
			Description: "稀有奖励",
			Icon:        "golden-key.png",
			Rarity:      "rare",
		},
		{
			Name:        "Silver Coin",
			Description: "普通奖励",
			Icon:        "silver-coin.png",
			Rarity:      "common",
		},
	}
	err = db.Create(&gifts).Error
	require.NoError(t, err)

	// 创建测试关卡
	levels := []models.Level{
		{
			ClueNumber:    1,
			Question:      "第一题",
			Answer:        "D",
			CaseSensitive: true,
			PassMessage:   "答对了",
			FailMessage:   "答错了",
			ScoreValue:    100,
		},
		{
			ClueNumber:    2,
			Question:      "第二题",
			Answer:        "bonz",
			Aliases:       models.StringArray{"znob"},
			CaseSensitive: false,
			PassMessage:   "答对了",
			FailMessage:   "答错了",
			RewardGift:    "Golden Key",
			ScoreValue:    100,
		},
	}
	err = db.Create(&levels).Error
	require.NoError(t, err)
}
