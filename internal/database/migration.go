package database

import (
	"fmt"

	"github.com/wfunc/trivia-game/internal/logger"
	"github.com/wfunc/trivia-game/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 定义需要迁移的模型
	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 游戏相关
		&models.TriviaSession{},
		&models.Level{},

		// 聊天相关
		&models.Message{},

		// 礼物相关
		&models.Gift{},
		&models.Inventory{},
	}

	// 执行迁移
	logger.Info("开始数据库迁移...")

	// 设置 SQLite 专用配置，避免锁定问题
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	// 初始化默认数据
	if err := seedDefaultData(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	// 消息表索引（历史查询按会话+时间倒序）
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages(session_id, created_at)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_messages_session_created"), zap.Error(err))
	}

	// 会话表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_trivia_sessions_status ON trivia_sessions(status)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_trivia_sessions_status"), zap.Error(err))
	}

	// 排行榜索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_clues_solved ON users(clues_solved)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_users_clues_solved"), zap.Error(err))
	}

	logger.Info("数据库索引创建完成")
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 获取所有表名
	var tables []string
	if err := DB.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tables).Error; err != nil {
		return err
	}

	// 删除所有表
	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			logger.Error("删除表失败", zap.String("table", table), zap.Error(err))
			return err
		}
	}

	logger.Info("所有表已删除")
	return nil
}
