package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"FPKProgress/internal/config"
	"FPKProgress/internal/schema"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func init() {
	conf := config.GetConfig()
	dbName := conf.MysqlConfig.DatabaseName
	if dbName == "" {
		dbName = conf.AppName
	}
	// 所有时间按 UTC 存取，进度窗口和逾期判断都依赖这一点
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		conf.MysqlConfig.User, conf.MysqlConfig.Password, conf.MysqlConfig.Host, conf.MysqlConfig.Port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		zlog.Fatal("mysql open failed", zap.String("database", dbName), zap.Error(err))
	}
	if err = GormDB.AutoMigrate(schema.Models()...); err != nil {
		zlog.Fatal("auto migrate failed", zap.Error(err))
	}
}
