/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、全局服务实例构建与调度器启动
 * @architecture 分层架构 - 服务层
 * @stateFlow 数据库连接 -> 迁移与种子数据 -> 服务构建 -> 调度器/订阅器启动
 * @rules Redis/Kafka/MQTT 均为可选依赖，不可用时对应能力降级，核心流水线不受影响
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/pipeline/, service/event/, service/ingestion/
 */

package service

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"logistics-intel-service/service/database"
	"logistics-intel-service/service/distributed_lock"
	"logistics-intel-service/service/event"
	"logistics-intel-service/service/export"
	"logistics-intel-service/service/ingestion"
	"logistics-intel-service/service/pipeline"
)

var (
	DB                      *gorm.DB
	GlobalEventService      *event.EventService
	GlobalKafkaPublisher    *event.KafkaPublisher
	GlobalPipelineService   *pipeline.PipelineService
	GlobalPipelineScheduler *pipeline.PipelineScheduler
	GlobalCSVLoader         *ingestion.CSVLoader
	GlobalTrafficFeed       *ingestion.TrafficFeed
	GlobalExportService     *export.ExportService
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("默认策略数据初始化失败: %v", err)
	}
	log.Println("默认策略数据初始化完成")
}

// initServices 初始化服务
func initServices() {
	// 事件服务与消息总线发布器（发布器可为 nil，表示禁用）
	GlobalEventService = event.NewEventService(DB)
	GlobalKafkaPublisher = event.NewKafkaPublisherFromEnv()

	// 数据装载与流水线编排
	GlobalCSVLoader = ingestion.NewCSVLoader(DB, "")
	GlobalPipelineService = pipeline.NewPipelineService(DB, GlobalKafkaPublisher, GlobalEventService)
	GlobalExportService = export.NewExportService(DB)

	// 分布式锁为可选依赖，Redis不可用时调度器降级为无锁执行
	var lock distributed_lock.DistributedLock
	redisLock, err := distributed_lock.NewRedisLock()
	if err != nil {
		log.Printf("Redis分布式锁不可用，调度器将以无锁模式运行: %v", err)
	} else {
		lock = redisLock
	}

	GlobalPipelineScheduler = pipeline.NewPipelineScheduler(GlobalPipelineService, lock)
	if err := GlobalPipelineScheduler.Start(); err != nil {
		log.Printf("启动流水线调度器失败: %v", err)
	}

	// 实时路况订阅为可选能力
	GlobalTrafficFeed = ingestion.NewTrafficFeedFromEnv(DB)
	if GlobalTrafficFeed != nil {
		if err := GlobalTrafficFeed.Start(); err != nil {
			log.Printf("启动实时路况订阅失败: %v", err)
		}
	}

	log.Println("服务初始化完成")
}
