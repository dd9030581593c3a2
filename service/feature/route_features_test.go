/*
 * @module service/feature/route_features_test
 * @description 路线特征构建器单元测试
 * @architecture 测试层
 * @stateFlow 构造路线记录 -> 批量评分 -> 结果验证
 * @rules 验证批相对归一化、天气映射与全零批次的边界行为
 * @dependencies testing, testify
 * @refs route_features.go
 */

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/models"
)

func TestRouteFeatureBuilder_Build(t *testing.T) {
	builder := NewRouteFeatureBuilder(nil)

	records := []models.RouteRecord{
		{OrderID: "ORD-001", DistanceKM: 1400, TrafficDelayMinutes: 120, WeatherImpact: "Storm"},
		{OrderID: "ORD-002", DistanceKM: 800, TrafficDelayMinutes: 60, WeatherImpact: "Clear"},
		{OrderID: "ORD-003", DistanceKM: 500, TrafficDelayMinutes: 0, WeatherImpact: "Rain"},
	}

	features := builder.Build(records)
	require.Len(t, features, 3)

	// 批内最大延迟 + 最严重天气 => 满分 100
	assert.InDelta(t, 100.0, features["ORD-001"].RouteRiskScore, 1e-9)

	// 一半延迟 + 晴天：0.5*0.6*100 = 30
	assert.InDelta(t, 30.0, features["ORD-002"].RouteRiskScore, 1e-9)

	// 无延迟 + 雨天：0.5*0.4*100 = 20
	assert.InDelta(t, 20.0, features["ORD-003"].RouteRiskScore, 1e-9)

	// 所有评分必须落在 [0,100] 区间
	for _, f := range features {
		assert.GreaterOrEqual(t, f.RouteRiskScore, 0.0)
		assert.LessOrEqual(t, f.RouteRiskScore, 100.0)
	}
}

func TestRouteFeatureBuilder_ZeroTrafficBatch(t *testing.T) {
	builder := NewRouteFeatureBuilder(nil)

	// 全零交通延迟的批次：交通分量归一化为 0 而非除零错误
	records := []models.RouteRecord{
		{OrderID: "ORD-001", TrafficDelayMinutes: 0, WeatherImpact: "Clear"},
		{OrderID: "ORD-002", TrafficDelayMinutes: 0, WeatherImpact: "Fog"},
	}

	features := builder.Build(records)
	require.Len(t, features, 2)
	assert.InDelta(t, 0.0, features["ORD-001"].RouteRiskScore, 1e-9)
	assert.InDelta(t, 28.0, features["ORD-002"].RouteRiskScore, 1e-9) // 0.7*0.4*100
}

func TestRouteFeatureBuilder_UnknownWeather(t *testing.T) {
	builder := NewRouteFeatureBuilder(nil)

	// 未收录天气类别的风险权重按 0 处理
	records := []models.RouteRecord{
		{OrderID: "ORD-001", TrafficDelayMinutes: 100, WeatherImpact: "Hail"},
	}

	features := builder.Build(records)
	assert.InDelta(t, 60.0, features["ORD-001"].RouteRiskScore, 1e-9) // 仅交通分量
}

func TestRouteFeatureBuilder_CustomSeverities(t *testing.T) {
	builder := NewRouteFeatureBuilder(map[string]float64{"Sandstorm": 1.0})

	records := []models.RouteRecord{
		{OrderID: "ORD-001", TrafficDelayMinutes: 0, WeatherImpact: "Sandstorm"},
	}

	features := builder.Build(records)
	assert.InDelta(t, 40.0, features["ORD-001"].RouteRiskScore, 1e-9)
}
