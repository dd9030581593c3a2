/*
 * @module service/feature/route_features
 * @description 路线特征构建器，基于交通延迟与天气影响计算路线风险综合评分
 * @architecture 分层架构 - 特征工程层
 * @stateFlow 路线记录 -> 交通归一化 -> 天气映射 -> 综合评分
 * @rules 交通分量按批内最大值归一化（批相对，非固定常量）；全零批次归一化结果为 0 而非报错；
 *        天气按固定序数映射取风险权重，未收录类别按 0 处理
 * @dependencies logistics-intel-service/service/meta, logistics-intel-service/service/models
 * @refs service/assembler/master_assembler.go
 */

package feature

import (
	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// RouteFeatures 每订单的路线派生特征
type RouteFeatures struct {
	OrderID             string  `json:"Order_ID"`
	DistanceKM          float64 `json:"Distance_KM"`
	TrafficDelayMinutes float64 `json:"Traffic_Delay_Minutes"`
	WeatherImpact       string  `json:"Weather_Impact"`
	RouteRiskScore      float64 `json:"route_risk_score"` // [0,100]
}

// RouteFeatureBuilder 路线特征构建器
type RouteFeatureBuilder struct {
	weatherSeverities map[string]float64
}

// NewRouteFeatureBuilder 创建路线特征构建器
// severities 为空时使用默认天气风险映射
func NewRouteFeatureBuilder(severities map[string]float64) *RouteFeatureBuilder {
	if len(severities) == 0 {
		severities = meta.DefaultWeatherSeverities
	}
	return &RouteFeatureBuilder{weatherSeverities: severities}
}

// Build 对整批路线记录计算风险评分，按 Order_ID 索引返回
func (b *RouteFeatureBuilder) Build(records []models.RouteRecord) map[string]*RouteFeatures {
	features := make(map[string]*RouteFeatures, len(records))
	if len(records) == 0 {
		return features
	}

	// 批内最大交通延迟，用于批相对归一化
	maxTraffic := 0.0
	for _, record := range records {
		if record.TrafficDelayMinutes > maxTraffic {
			maxTraffic = record.TrafficDelayMinutes
		}
	}

	for _, record := range records {
		trafficScore := 0.0
		if maxTraffic > 0 {
			trafficScore = record.TrafficDelayMinutes / maxTraffic
		}

		// 未收录的天气类别风险权重为 0
		weatherRisk := b.weatherSeverities[record.WeatherImpact]

		score := (trafficScore*meta.RouteTrafficWeight + weatherRisk*meta.RouteWeatherWeight) * 100

		features[record.OrderID] = &RouteFeatures{
			OrderID:             record.OrderID,
			DistanceKM:          record.DistanceKM,
			TrafficDelayMinutes: record.TrafficDelayMinutes,
			WeatherImpact:       record.WeatherImpact,
			RouteRiskScore:      score,
		}
	}

	return features
}
