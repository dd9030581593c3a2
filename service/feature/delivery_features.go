/*
 * @module service/feature/delivery_features
 * @description 配送特征构建器，计算延迟天数与延迟标记
 * @architecture 分层架构 - 特征工程层
 * @stateFlow 配送记录 -> 延迟计算 -> 特征输出
 * @rules delay_days = 实际 - 承诺，可为负（提前送达）；is_delayed 使用严格大于 0，恰好为 0 不算延迟
 * @dependencies logistics-intel-service/service/models
 * @refs service/assembler/master_assembler.go
 */

package feature

import (
	"logistics-intel-service/service/models"
)

// DeliveryFeatures 每订单的配送派生特征
type DeliveryFeatures struct {
	OrderID              string  `json:"Order_ID"`
	PromisedDeliveryDays float64 `json:"Promised_Delivery_Days"`
	ActualDeliveryDays   float64 `json:"Actual_Delivery_Days"`
	Carrier              string  `json:"Carrier"`
	DelayDays            float64 `json:"delay_days"`
	IsDelayed            bool    `json:"is_delayed"`
}

// DeliveryFeatureBuilder 配送特征构建器
type DeliveryFeatureBuilder struct{}

// NewDeliveryFeatureBuilder 创建配送特征构建器
func NewDeliveryFeatureBuilder() *DeliveryFeatureBuilder {
	return &DeliveryFeatureBuilder{}
}

// Build 对整批配送记录计算派生特征，按 Order_ID 索引返回
func (b *DeliveryFeatureBuilder) Build(records []models.DeliveryPerformance) map[string]*DeliveryFeatures {
	features := make(map[string]*DeliveryFeatures, len(records))

	for _, record := range records {
		delayDays := record.ActualDeliveryDays - record.PromisedDeliveryDays

		features[record.OrderID] = &DeliveryFeatures{
			OrderID:              record.OrderID,
			PromisedDeliveryDays: record.PromisedDeliveryDays,
			ActualDeliveryDays:   record.ActualDeliveryDays,
			Carrier:              record.Carrier,
			DelayDays:            delayDays,
			IsDelayed:            delayDays > 0,
		}
	}

	return features
}
