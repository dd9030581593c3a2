/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数，提供内存数据库与物流测试数据工厂
 * @architecture 测试基础设施
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"logistics-intel-service/service/models"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Order{},
		&models.DeliveryPerformance{},
		&models.RouteRecord{},
		&models.FleetVehicle{},
		&models.WarehouseInventory{},
		&models.CustomerFeedback{},
		&models.CostRecord{},
		&models.MasterRecord{},
		&models.PipelineRun{},
		&models.DatasetStatus{},
		&models.CarrierMapping{},
		&models.WeatherSeverity{},
		&models.DecisionPolicy{},
		&models.ScriptRule{},
		&models.EncoderArtifact{},
		&models.ExportApiKey{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"orders",
		"delivery_performance",
		"route_records",
		"fleet_vehicles",
		"warehouse_inventory",
		"customer_feedback",
		"cost_records",
		"master_records",
		"pipeline_runs",
		"dataset_statuses",
		"carrier_mappings",
		"weather_severities",
		"decision_policies",
		"script_rules",
		"encoder_artifacts",
		"export_api_keys",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// OrderOption 订单选项函数类型
type OrderOption func(*models.Order)

// CreateOrder 创建测试订单
func (f *TestDataFactory) CreateOrder(orderID string, opts ...OrderOption) *models.Order {
	order := &models.Order{
		OrderID:         orderID,
		Origin:          "Mumbai",
		Destination:     "Delhi",
		Priority:        "Express",
		ProductCategory: "Electronics",
		CustomerSegment: "B2B",
		OrderValueINR:   12500,
		OrderDate:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), // 周一
		CreatedAt:       time.Now(),
	}

	for _, opt := range opts {
		opt(order)
	}

	if err := f.DB.Create(order).Error; err != nil {
		panic(fmt.Sprintf("failed to create test order: %v", err))
	}
	return order
}

// DeliveryOption 配送记录选项函数类型
type DeliveryOption func(*models.DeliveryPerformance)

// CreateDelivery 创建测试配送记录
func (f *TestDataFactory) CreateDelivery(orderID string, opts ...DeliveryOption) *models.DeliveryPerformance {
	delivery := &models.DeliveryPerformance{
		OrderID:              orderID,
		PromisedDeliveryDays: 3,
		ActualDeliveryDays:   5,
		Carrier:              "GlobalTransit",
		CreatedAt:            time.Now(),
	}

	for _, opt := range opts {
		opt(delivery)
	}

	if err := f.DB.Create(delivery).Error; err != nil {
		panic(fmt.Sprintf("failed to create test delivery: %v", err))
	}
	return delivery
}

// RouteOption 路线记录选项函数类型
type RouteOption func(*models.RouteRecord)

// CreateRoute 创建测试路线记录
func (f *TestDataFactory) CreateRoute(orderID string, opts ...RouteOption) *models.RouteRecord {
	route := &models.RouteRecord{
		OrderID:             orderID,
		DistanceKM:          1400,
		TrafficDelayMinutes: 45,
		WeatherImpact:       "Rain",
		CreatedAt:           time.Now(),
	}

	for _, opt := range opts {
		opt(route)
	}

	if err := f.DB.Create(route).Error; err != nil {
		panic(fmt.Sprintf("failed to create test route: %v", err))
	}
	return route
}

// FleetOption 车辆记录选项函数类型
type FleetOption func(*models.FleetVehicle)

// CreateFleetVehicle 创建测试车辆记录
func (f *TestDataFactory) CreateFleetVehicle(vehicleID, vehicleType string, opts ...FleetOption) *models.FleetVehicle {
	vehicle := &models.FleetVehicle{
		VehicleID:            vehicleID,
		VehicleType:          vehicleType,
		AgeYears:             5,
		FuelEfficiencyKMPerL: 8,
		CapacityKG:           5000,
		CO2EmissionsKgPerKM:  0.6,
		CreatedAt:            time.Now(),
	}

	for _, opt := range opts {
		opt(vehicle)
	}

	if err := f.DB.Create(vehicle).Error; err != nil {
		panic(fmt.Sprintf("failed to create test fleet vehicle: %v", err))
	}
	return vehicle
}

// FeedbackOption 反馈记录选项函数类型
type FeedbackOption func(*models.CustomerFeedback)

// CreateFeedback 创建测试反馈记录
func (f *TestDataFactory) CreateFeedback(orderID string, rating float64, opts ...FeedbackOption) *models.CustomerFeedback {
	feedback := &models.CustomerFeedback{
		OrderID:        orderID,
		Rating:         rating,
		WouldRecommend: "Yes",
		CreatedAt:      time.Now(),
	}

	for _, opt := range opts {
		opt(feedback)
	}

	if err := f.DB.Create(feedback).Error; err != nil {
		panic(fmt.Sprintf("failed to create test feedback: %v", err))
	}
	return feedback
}

// CostOption 成本记录选项函数类型
type CostOption func(*models.CostRecord)

// CreateCostRecord 创建测试成本记录
func (f *TestDataFactory) CreateCostRecord(orderID string, components models.JSONB, opts ...CostOption) *models.CostRecord {
	cost := &models.CostRecord{
		OrderID:    orderID,
		Components: components,
		CreatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(cost)
	}

	if err := f.DB.Create(cost).Error; err != nil {
		panic(fmt.Sprintf("failed to create test cost record: %v", err))
	}
	return cost
}

// SeedDefaultPolicies 写入默认策略配置（天气映射、承运商映射、决策阈值）
func (f *TestDataFactory) SeedDefaultPolicies() {
	severities := map[string]float64{
		"Clear": 0, "Cloudy": 0.2, "Rain": 0.5, "Fog": 0.7, "Storm": 1.0,
	}
	for weather, severity := range severities {
		f.DB.Create(&models.WeatherSeverity{Weather: weather, Severity: severity})
	}

	mappings := map[string]string{
		"GlobalTransit":   "Large_Truck",
		"Speedy":          "Express_Bike",
		"EcoDeliver":      "Small_Van",
		"ReliableExpress": "Medium_Truck",
	}
	for carrier, vehicleType := range mappings {
		f.DB.Create(&models.CarrierMapping{
			Carrier:     carrier,
			VehicleType: vehicleType,
			IsDefault:   vehicleType == "Medium_Truck",
		})
	}

	f.DB.Create(&models.DecisionPolicy{
		Name:                  "default",
		DelayProbEscalate:     0.6,
		RouteRiskThreshold:    70,
		VehicleScoreThreshold: 40,
		DelayProbReassign:     0.4,
		IsActive:              true,
	})
}

// FloatPtr 浮点指针辅助函数
func FloatPtr(v float64) *float64 {
	return &v
}

// BoolPtr 布尔指针辅助函数
func BoolPtr(v bool) *bool {
	return &v
}
