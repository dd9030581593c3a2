/*
 * @module service/feature/vehicle_features
 * @description 车辆特征构建器，按车型聚合车队指标并经承运商映射落到订单
 * @architecture 分层架构 - 特征工程层
 * @stateFlow 车队聚合 -> 适配性评分 -> 承运商映射解析 -> 订单级特征
 * @rules 车龄评分以 15 年为上限线性映射并取反，超龄截断为 0；效率按全车型最大值归一化；
 *        未收录承运商必须回退到默认车型，不允许报错或置空订单特征
 * @dependencies logistics-intel-service/service/meta, logistics-intel-service/service/models
 * @refs service/assembler/master_assembler.go, service/models/policy.go
 */

package feature

import (
	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// VehicleTypeProfile 车型级聚合指标与适配性评分
type VehicleTypeProfile struct {
	VehicleType        string  `json:"vehicle_type"`
	MeanAgeYears       float64 `json:"mean_age_years"`
	MeanFuelEfficiency float64 `json:"mean_fuel_efficiency"`
	MeanCapacityKG     float64 `json:"mean_capacity_kg"`
	MeanEmissions      float64 `json:"mean_emissions"`
	SuitabilityScore   float64 `json:"vehicle_suitability_score"` // [0,100]
}

// VehicleFeatures 每订单的车辆特征，车型经承运商映射解析
type VehicleFeatures struct {
	OrderID     string              `json:"Order_ID"`
	VehicleType string              `json:"vehicle_type"`
	Profile     *VehicleTypeProfile `json:"profile,omitempty"` // 车队中不存在该车型时为 nil
}

// VehicleFeatureBuilder 车辆特征构建器
type VehicleFeatureBuilder struct {
	carrierMappings    map[string]string
	defaultVehicleType string
}

// NewVehicleFeatureBuilder 创建车辆特征构建器
// mappings 为空时使用默认承运商映射
func NewVehicleFeatureBuilder(mappings map[string]string, defaultType string) *VehicleFeatureBuilder {
	if len(mappings) == 0 {
		mappings = meta.DefaultCarrierMappings
	}
	if defaultType == "" {
		defaultType = meta.DefaultVehicleType
	}
	return &VehicleFeatureBuilder{
		carrierMappings:    mappings,
		defaultVehicleType: defaultType,
	}
}

// AggregateFleet 按车型聚合车队记录并计算适配性评分
func (b *VehicleFeatureBuilder) AggregateFleet(fleet []models.FleetVehicle) map[string]*VehicleTypeProfile {
	type accumulator struct {
		age, eff, capacity, emissions float64
		count                         int
	}
	acc := make(map[string]*accumulator)

	for _, vehicle := range fleet {
		a, exists := acc[vehicle.VehicleType]
		if !exists {
			a = &accumulator{}
			acc[vehicle.VehicleType] = a
		}
		a.age += vehicle.AgeYears
		a.eff += vehicle.FuelEfficiencyKMPerL
		a.capacity += vehicle.CapacityKG
		a.emissions += vehicle.CO2EmissionsKgPerKM
		a.count++
	}

	profiles := make(map[string]*VehicleTypeProfile, len(acc))
	maxEfficiency := 0.0
	for vehicleType, a := range acc {
		n := float64(a.count)
		profile := &VehicleTypeProfile{
			VehicleType:        vehicleType,
			MeanAgeYears:       a.age / n,
			MeanFuelEfficiency: a.eff / n,
			MeanCapacityKG:     a.capacity / n,
			MeanEmissions:      a.emissions / n,
		}
		profiles[vehicleType] = profile
		if profile.MeanFuelEfficiency > maxEfficiency {
			maxEfficiency = profile.MeanFuelEfficiency
		}
	}

	for _, profile := range profiles {
		// 车龄分量：15 年上限线性映射后取反，超龄截断为 0
		ageRatio := profile.MeanAgeYears / meta.VehicleAgeCeilingYears
		if ageRatio > 1 {
			ageRatio = 1
		}
		ageScore := 1 - ageRatio

		// 效率分量：按全车型最大均值归一化，全零批次按 0 处理
		effScore := 0.0
		if maxEfficiency > 0 {
			effScore = profile.MeanFuelEfficiency / maxEfficiency
		}

		profile.SuitabilityScore = (ageScore + effScore) / 2 * 100
	}

	return profiles
}

// ResolveVehicleType 承运商到车型的实体解析，未收录承运商回退默认车型
func (b *VehicleFeatureBuilder) ResolveVehicleType(carrier string) string {
	if vehicleType, exists := b.carrierMappings[carrier]; exists {
		return vehicleType
	}
	return b.defaultVehicleType
}

// Build 聚合车队并按配送记录的承运商映射出订单级车辆特征
func (b *VehicleFeatureBuilder) Build(fleet []models.FleetVehicle, deliveries []models.DeliveryPerformance) map[string]*VehicleFeatures {
	profiles := b.AggregateFleet(fleet)

	features := make(map[string]*VehicleFeatures, len(deliveries))
	for _, delivery := range deliveries {
		vehicleType := b.ResolveVehicleType(delivery.Carrier)
		features[delivery.OrderID] = &VehicleFeatures{
			OrderID:     delivery.OrderID,
			VehicleType: vehicleType,
			Profile:     profiles[vehicleType],
		}
	}

	return features
}
