/*
 * @module service/feature/vehicle_features_test
 * @description 车辆特征构建器单元测试
 * @architecture 测试层
 * @stateFlow 车队聚合 -> 承运商映射解析 -> 订单级特征验证
 * @rules 验证车龄截断、效率归一化与未收录承运商的默认回退
 * @dependencies testing, testify
 * @refs vehicle_features.go
 */

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

func TestVehicleFeatureBuilder_AggregateFleet(t *testing.T) {
	builder := NewVehicleFeatureBuilder(nil, "")

	fleet := []models.FleetVehicle{
		{VehicleID: "V-001", VehicleType: "Large_Truck", AgeYears: 4, FuelEfficiencyKMPerL: 6, CapacityKG: 10000, CO2EmissionsKgPerKM: 0.9},
		{VehicleID: "V-002", VehicleType: "Large_Truck", AgeYears: 8, FuelEfficiencyKMPerL: 4, CapacityKG: 12000, CO2EmissionsKgPerKM: 1.1},
		{VehicleID: "V-003", VehicleType: "Express_Bike", AgeYears: 2, FuelEfficiencyKMPerL: 40, CapacityKG: 50, CO2EmissionsKgPerKM: 0.05},
	}

	profiles := builder.AggregateFleet(fleet)
	require.Len(t, profiles, 2)

	truck := profiles["Large_Truck"]
	require.NotNil(t, truck)
	assert.InDelta(t, 6.0, truck.MeanAgeYears, 1e-9)
	assert.InDelta(t, 5.0, truck.MeanFuelEfficiency, 1e-9)
	assert.InDelta(t, 11000.0, truck.MeanCapacityKG, 1e-9)

	// 卡车：车龄分量 1-6/15=0.6，效率分量 5/40=0.125 => (0.6+0.125)/2*100
	assert.InDelta(t, 36.25, truck.SuitabilityScore, 1e-9)

	// 快递摩托：车龄分量 1-2/15，效率分量满分 => 评分最高
	bike := profiles["Express_Bike"]
	require.NotNil(t, bike)
	assert.InDelta(t, (1-2.0/15+1)/2*100, bike.SuitabilityScore, 1e-9)
	assert.Greater(t, bike.SuitabilityScore, truck.SuitabilityScore)
}

func TestVehicleFeatureBuilder_AgeCeiling(t *testing.T) {
	builder := NewVehicleFeatureBuilder(nil, "")

	// 超龄车辆：车龄分量截断为 0，不产生负分
	fleet := []models.FleetVehicle{
		{VehicleID: "V-001", VehicleType: "Medium_Truck", AgeYears: 20, FuelEfficiencyKMPerL: 8},
	}

	profiles := builder.AggregateFleet(fleet)
	truck := profiles["Medium_Truck"]
	require.NotNil(t, truck)
	// 车龄分量 0，效率分量为批内最大值归一化后的 1 => 50
	assert.InDelta(t, 50.0, truck.SuitabilityScore, 1e-9)
	assert.GreaterOrEqual(t, truck.SuitabilityScore, 0.0)
	assert.LessOrEqual(t, truck.SuitabilityScore, 100.0)
}

func TestVehicleFeatureBuilder_ResolveVehicleType(t *testing.T) {
	builder := NewVehicleFeatureBuilder(nil, "")

	assert.Equal(t, "Large_Truck", builder.ResolveVehicleType("GlobalTransit"))
	assert.Equal(t, "Express_Bike", builder.ResolveVehicleType("Speedy"))
	assert.Equal(t, "Small_Van", builder.ResolveVehicleType("EcoDeliver"))
	assert.Equal(t, "Medium_Truck", builder.ResolveVehicleType("ReliableExpress"))

	// 未收录承运商回退默认车型，不报错
	assert.Equal(t, meta.DefaultVehicleType, builder.ResolveVehicleType("UnknownCarrier"))
}

func TestVehicleFeatureBuilder_Build(t *testing.T) {
	builder := NewVehicleFeatureBuilder(nil, "")

	fleet := []models.FleetVehicle{
		{VehicleID: "V-001", VehicleType: "Large_Truck", AgeYears: 6, FuelEfficiencyKMPerL: 5},
		{VehicleID: "V-002", VehicleType: "Medium_Truck", AgeYears: 3, FuelEfficiencyKMPerL: 9},
	}
	deliveries := []models.DeliveryPerformance{
		{OrderID: "ORD-001", Carrier: "GlobalTransit"},
		{OrderID: "ORD-002", Carrier: "NoSuchCarrier"},
		{OrderID: "ORD-003", Carrier: "Speedy"},
	}

	features := builder.Build(fleet, deliveries)
	require.Len(t, features, 3)

	assert.Equal(t, "Large_Truck", features["ORD-001"].VehicleType)
	require.NotNil(t, features["ORD-001"].Profile)

	// 未收录承运商落到默认车型，车队中存在该车型时带指标
	assert.Equal(t, "Medium_Truck", features["ORD-002"].VehicleType)
	require.NotNil(t, features["ORD-002"].Profile)

	// 映射车型在车队中不存在：特征保留但指标为空
	assert.Equal(t, "Express_Bike", features["ORD-003"].VehicleType)
	assert.Nil(t, features["ORD-003"].Profile)
}
