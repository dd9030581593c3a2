/*
 * @module service/scoring/features
 * @description 模型输入特征抽取，从主记录构造两个预测目标各自的特征子集矩阵
 * @architecture 分层架构 - 打分适配层
 * @stateFlow 主记录 -> 类别编码 -> 特征矩阵（行序与记录一致）
 * @rules 特征子集即外部打分服务的输入契约，列名与顺序固定；
 *        类别列经编码器转稳定数值；数值缺失按 0 填充
 * @dependencies logistics-intel-service/service/meta, logistics-intel-service/service/models
 * @refs service/scoring/scoring_client.go, service/pipeline/pipeline_service.go
 */

package scoring

import (
	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// FeatureExtractor 特征矩阵抽取器
type FeatureExtractor struct {
	encoder *LabelEncoder
}

// NewFeatureExtractor 创建特征抽取器
func NewFeatureExtractor(encoder *LabelEncoder) *FeatureExtractor {
	return &FeatureExtractor{encoder: encoder}
}

// FitEncoder 在整批记录上拟合类别编码表并返回编码器
func FitEncoder(records []models.MasterRecord) *LabelEncoder {
	valuesByColumn := make(map[string][]string, len(meta.EncodedCategoricalColumns))
	for i := range records {
		r := &records[i]
		valuesByColumn["Priority"] = append(valuesByColumn["Priority"], r.Priority)
		valuesByColumn["Origin"] = append(valuesByColumn["Origin"], r.Origin)
		valuesByColumn["Destination"] = append(valuesByColumn["Destination"], r.Destination)
		valuesByColumn["Product_Category"] = append(valuesByColumn["Product_Category"], r.ProductCategory)
		valuesByColumn["Customer_Segment"] = append(valuesByColumn["Customer_Segment"], r.CustomerSegment)
		valuesByColumn["Weather_Impact"] = append(valuesByColumn["Weather_Impact"], r.WeatherImpact)
	}

	encoder := NewLabelEncoder()
	encoder.Fit(meta.EncodedCategoricalColumns, valuesByColumn)
	return encoder
}

// DelayFeatures 构造延迟预测模型的特征矩阵，行序与记录一致
func (fe *FeatureExtractor) DelayFeatures(records []models.MasterRecord) [][]float64 {
	matrix := make([][]float64, len(records))
	for i := range records {
		r := &records[i]
		matrix[i] = []float64{
			floatOrZero(r.DistanceKM),
			floatOrZero(r.RouteRiskScore),
			floatOrZero(r.VehicleSuitabilityScore),
			floatOrZero(r.TrafficDelayMinutes),
			fe.encoder.Transform("Priority", r.Priority),
			fe.encoder.Transform("Origin", r.Origin),
			fe.encoder.Transform("Product_Category", r.ProductCategory),
		}
	}
	return matrix
}

// CustomerRiskFeatures 构造客户风险模型的特征矩阵，行序与记录一致
func (fe *FeatureExtractor) CustomerRiskFeatures(records []models.MasterRecord) [][]float64 {
	matrix := make([][]float64, len(records))
	for i := range records {
		r := &records[i]
		matrix[i] = []float64{
			floatOrZero(r.SegmentAvgRating),
			floatOrZero(r.SegmentRecommendPct),
			floatOrZero(r.DelayDays),
			fe.encoder.Transform("Priority", r.Priority),
			r.OrderValueINR,
		}
	}
	return matrix
}

// floatOrZero 数值缺失按 0 填充
func floatOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
