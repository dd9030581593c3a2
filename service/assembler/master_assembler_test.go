/*
 * @module service/assembler/master_assembler_test
 * @description 主数据集装配器单元测试
 * @architecture 测试层
 * @stateFlow 构造多源数据 -> 装配 -> 行数/插补/可重现性验证
 * @rules 验证每订单一条主记录、整批插补统计与重复装配一致性
 * @dependencies testing, testify
 * @refs master_assembler.go
 */

package assembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/feature"
	"logistics-intel-service/service/models"
)

func newAssembler() *MasterAssembler {
	return NewMasterAssembler(
		feature.NewRouteFeatureBuilder(nil),
		feature.NewVehicleFeatureBuilder(nil, ""),
	)
}

func sampleBundle() *SourceBundle {
	orderDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // 周一
	return &SourceBundle{
		Orders: []models.Order{
			{OrderID: "ORD-001", Origin: "Mumbai", Destination: "Delhi", Priority: "Express", ProductCategory: "Electronics", CustomerSegment: "B2B", OrderValueINR: 12500, OrderDate: orderDate},
			{OrderID: "ORD-002", Origin: "Pune", Destination: "Chennai", Priority: "Standard", ProductCategory: "Apparel", CustomerSegment: "B2C", OrderValueINR: 3200, OrderDate: orderDate.AddDate(0, 0, 5)},
			{OrderID: "ORD-003", Origin: "Delhi", Destination: "Kolkata", Priority: "Standard", ProductCategory: "FMCG", CustomerSegment: "B2B", OrderValueINR: 7800, OrderDate: orderDate.AddDate(0, 1, 0)},
		},
		Deliveries: []models.DeliveryPerformance{
			{OrderID: "ORD-001", PromisedDeliveryDays: 3, ActualDeliveryDays: 5, Carrier: "GlobalTransit"},
			{OrderID: "ORD-002", PromisedDeliveryDays: 4, ActualDeliveryDays: 4, Carrier: "Speedy"},
		},
		Routes: []models.RouteRecord{
			{OrderID: "ORD-001", DistanceKM: 1400, TrafficDelayMinutes: 90, WeatherImpact: "Rain"},
			{OrderID: "ORD-002", DistanceKM: 1100, TrafficDelayMinutes: 30, WeatherImpact: "Clear"},
		},
		Fleet: []models.FleetVehicle{
			{VehicleID: "V-001", VehicleType: "Large_Truck", AgeYears: 6, FuelEfficiencyKMPerL: 5, CapacityKG: 10000},
			{VehicleID: "V-002", VehicleType: "Express_Bike", AgeYears: 2, FuelEfficiencyKMPerL: 40, CapacityKG: 50},
		},
		Feedback: []models.CustomerFeedback{
			{OrderID: "ORD-001", Rating: 2, WouldRecommend: "No"},
		},
		Costs: []models.CostRecord{
			{OrderID: "ORD-001", Components: models.JSONB{"Fuel_Cost": 100.0, "Handling_Fee": 20.0}},
		},
	}
}

func TestMasterAssembler_RowCountInvariant(t *testing.T) {
	assembler := newAssembler()

	records, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)

	// 订单源中的每个 Order_ID 产出有且仅有一条主记录
	require.Len(t, records, 3)
	seen := map[string]bool{}
	for _, r := range records {
		assert.False(t, seen[r.OrderID])
		seen[r.OrderID] = true
	}
}

func TestMasterAssembler_MissingOrders(t *testing.T) {
	assembler := newAssembler()

	_, err := assembler.Assemble(&SourceBundle{})
	assert.Error(t, err)

	_, err = assembler.Assemble(nil)
	assert.Error(t, err)
}

func TestMasterAssembler_LeftJoinSemantics(t *testing.T) {
	assembler := newAssembler()

	records, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)

	byOrder := map[string]*models.MasterRecord{}
	for i := range records {
		byOrder[records[i].OrderID] = &records[i]
	}

	// ORD-003 无配送/路线/成本来源：订单不丢弃，来源缺失以空值表示
	orphan := byOrder["ORD-003"]
	require.NotNil(t, orphan)
	assert.Nil(t, orphan.DelayDays)
	assert.Nil(t, orphan.IsDelayed)
	assert.Nil(t, orphan.DistanceKM)
	assert.Nil(t, orphan.TotalCost)
	assert.Empty(t, orphan.Carrier)

	// 段级聚合回填到段内全部订单：ORD-003 与 ORD-001 同属 B2B
	require.NotNil(t, orphan.SegmentAvgRating)
	assert.InDelta(t, 2.0, *orphan.SegmentAvgRating, 1e-9)
	// 不满标记仅对有直接反馈的订单可用
	assert.Nil(t, orphan.DissatisfactionRisk)
	require.NotNil(t, byOrder["ORD-001"].DissatisfactionRisk)
	assert.True(t, *byOrder["ORD-001"].DissatisfactionRisk)
}

func TestMasterAssembler_CalendarFeatures(t *testing.T) {
	assembler := newAssembler()

	records, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)

	byOrder := map[string]models.MasterRecord{}
	for _, r := range records {
		byOrder[r.OrderID] = r
	}

	// 周一编码为 0
	assert.Equal(t, 0, byOrder["ORD-001"].OrderDOW)
	assert.Equal(t, 3, byOrder["ORD-001"].OrderMonth)
	// 周六编码为 5
	assert.Equal(t, 5, byOrder["ORD-002"].OrderDOW)
}

func TestMasterAssembler_Imputation(t *testing.T) {
	assembler := newAssembler()

	records, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)

	byOrder := map[string]models.MasterRecord{}
	var routeScores []float64
	for _, r := range records {
		byOrder[r.OrderID] = r
	}

	// ORD-001 / ORD-002 有观测值，ORD-003 插补为两者中位数（均值）
	require.NotNil(t, byOrder["ORD-001"].RouteRiskScore)
	require.NotNil(t, byOrder["ORD-002"].RouteRiskScore)
	routeScores = []float64{*byOrder["ORD-001"].RouteRiskScore, *byOrder["ORD-002"].RouteRiskScore}
	expectedMedian := (routeScores[0] + routeScores[1]) / 2

	require.NotNil(t, byOrder["ORD-003"].RouteRiskScore)
	assert.InDelta(t, expectedMedian, *byOrder["ORD-003"].RouteRiskScore, 1e-9)

	// 车辆评分对缺失订单取批均值
	require.NotNil(t, byOrder["ORD-003"].VehicleSuitabilityScore)
	mean := (*byOrder["ORD-001"].VehicleSuitabilityScore + *byOrder["ORD-002"].VehicleSuitabilityScore) / 2
	assert.InDelta(t, mean, *byOrder["ORD-003"].VehicleSuitabilityScore, 1e-9)
}

func TestMasterAssembler_EmptyScoreBatchSkipsImputation(t *testing.T) {
	assembler := newAssembler()

	// 仅有订单来源：无任何评分观测值，跳过插补而非报错
	bundle := &SourceBundle{
		Orders: []models.Order{
			{OrderID: "ORD-001", CustomerSegment: "B2B", OrderDate: time.Now()},
		},
	}

	records, err := assembler.Assemble(bundle)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].RouteRiskScore)
	assert.Nil(t, records[0].VehicleSuitabilityScore)
}

func TestMasterAssembler_Deterministic(t *testing.T) {
	assembler := newAssembler()

	first, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)
	second, err := assembler.Assemble(sampleBundle())
	require.NoError(t, err)

	// 相同输入重复装配产出完全一致，且保持订单输入顺序
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].OrderID, second[i].OrderID)
		assert.Equal(t, first[i].RouteRiskScore == nil, second[i].RouteRiskScore == nil)
		if first[i].RouteRiskScore != nil {
			assert.InDelta(t, *first[i].RouteRiskScore, *second[i].RouteRiskScore, 1e-9)
		}
		if first[i].VehicleSuitabilityScore != nil {
			assert.InDelta(t, *first[i].VehicleSuitabilityScore, *second[i].VehicleSuitabilityScore, 1e-9)
		}
	}
}

func TestMedianOf(t *testing.T) {
	assert.InDelta(t, 3.0, medianOf([]float64{1, 3, 5}), 1e-9)
	assert.InDelta(t, 2.5, medianOf([]float64{1, 2, 3, 4}), 1e-9)
	assert.InDelta(t, 7.0, medianOf([]float64{7}), 1e-9)
}
