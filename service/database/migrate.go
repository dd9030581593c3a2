/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建表结构并初始化默认策略数据
 * @architecture 数据访问层 - 迁移管理
 * @stateFlow 应用启动时执行数据库迁移与种子数据写入
 * @rules 种子数据只在对应表为空时写入，不覆盖运营方已有的策略配置
 * @dependencies logistics-intel-service/service/models, logistics-intel-service/service/meta, gorm.io/gorm
 * @refs service/init.go, service/models/
 */

package database

import (
	"log"

	"gorm.io/gorm"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 原始数据集表
	err := db.AutoMigrate(
		&models.Order{},
		&models.DeliveryPerformance{},
		&models.RouteRecord{},
		&models.FleetVehicle{},
		&models.WarehouseInventory{},
		&models.CustomerFeedback{},
		&models.CostRecord{},
	)
	if err != nil {
		return err
	}

	// 主数据集与流水线运行表
	err = db.AutoMigrate(
		&models.MasterRecord{},
		&models.PipelineRun{},
		&models.DatasetStatus{},
	)
	if err != nil {
		return err
	}

	// 策略配置表
	err = db.AutoMigrate(
		&models.CarrierMapping{},
		&models.WeatherSeverity{},
		&models.DecisionPolicy{},
		&models.ScriptRule{},
		&models.EncoderArtifact{},
		&models.ExportApiKey{},
	)
	if err != nil {
		return err
	}

	// 事件管理相关表
	err = db.AutoMigrate(
		&models.SSEEvent{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化默认策略数据
// 仅在对应表为空时写入，避免覆盖运营方已调整的配置
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化默认策略数据...")

	if err := seedWeatherSeverities(db); err != nil {
		return err
	}
	if err := seedCarrierMappings(db); err != nil {
		return err
	}
	if err := seedDecisionPolicy(db); err != nil {
		return err
	}

	log.Println("默认策略数据初始化完成")
	return nil
}

// seedWeatherSeverities 写入默认天气风险映射
func seedWeatherSeverities(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.WeatherSeverity{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for weather, severity := range meta.DefaultWeatherSeverities {
		entry := &models.WeatherSeverity{
			Weather:  weather,
			Severity: severity,
		}
		if err := db.Create(entry).Error; err != nil {
			return err
		}
	}

	log.Printf("已写入 %d 条默认天气风险映射", len(meta.DefaultWeatherSeverities))
	return nil
}

// seedCarrierMappings 写入默认承运商-车型映射
func seedCarrierMappings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CarrierMapping{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for carrier, vehicleType := range meta.DefaultCarrierMappings {
		entry := &models.CarrierMapping{
			Carrier:     carrier,
			VehicleType: vehicleType,
			IsDefault:   vehicleType == meta.DefaultVehicleType,
		}
		if err := db.Create(entry).Error; err != nil {
			return err
		}
	}

	log.Printf("已写入 %d 条默认承运商-车型映射", len(meta.DefaultCarrierMappings))
	return nil
}

// seedDecisionPolicy 写入默认决策阈值策略
func seedDecisionPolicy(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.DecisionPolicy{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	policy := &models.DecisionPolicy{
		Name:                  "default",
		DelayProbEscalate:     0.6,
		RouteRiskThreshold:    70,
		VehicleScoreThreshold: 40,
		DelayProbReassign:     0.4,
		IsActive:              true,
	}
	if err := db.Create(policy).Error; err != nil {
		return err
	}

	log.Println("已写入默认决策阈值策略")
	return nil
}
