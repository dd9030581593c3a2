/*
 * @module service/feature/customer_features
 * @description 客户特征构建器，计算客户段级聚合指标与订单级不满风险标记
 * @architecture 分层架构 - 特征工程层
 * @stateFlow 反馈关联订单段 -> 段级聚合 -> 回填到段内全部订单
 * @rules 段级聚合（均分、推荐率）对段内所有订单可用，作为前瞻性代理特征；
 *        订单级不满风险标记仅对有直接反馈的订单可用，作为历史标签，两者不可混用；
 *        评分小于等于 3（含边界）视为不满
 * @dependencies logistics-intel-service/service/meta, logistics-intel-service/service/models
 * @refs service/assembler/master_assembler.go, service/scoring/
 */

package feature

import (
	"strings"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// SegmentProfile 客户段级聚合指标，按有反馈的订单（受访者）计算
type SegmentProfile struct {
	CustomerSegment string  `json:"customer_segment"`
	AvgRating       float64 `json:"segment_avg_rating"`
	RecommendPct    float64 `json:"segment_recommend_pct"` // [0,100]
	RespondentCount int     `json:"respondent_count"`
}

// CustomerFeatures 每订单的客户特征
// 段级指标与不满标记是两类本质不同的特征：前者为前瞻代理，后者为历史标签
type CustomerFeatures struct {
	OrderID             string   `json:"Order_ID"`
	SegmentAvgRating    *float64 `json:"segment_avg_rating,omitempty"`
	SegmentRecommendPct *float64 `json:"segment_recommend_pct,omitempty"`
	DissatisfactionRisk *bool    `json:"customer_dissatisfaction_risk,omitempty"` // 无直接反馈的订单为 nil
}

// CustomerFeatureBuilder 客户特征构建器
type CustomerFeatureBuilder struct{}

// NewCustomerFeatureBuilder 创建客户特征构建器
func NewCustomerFeatureBuilder() *CustomerFeatureBuilder {
	return &CustomerFeatureBuilder{}
}

// AggregateSegments 按客户段聚合反馈指标
func (b *CustomerFeatureBuilder) AggregateSegments(feedback []models.CustomerFeedback, orders []models.Order) map[string]*SegmentProfile {
	segmentByOrder := make(map[string]string, len(orders))
	for _, order := range orders {
		segmentByOrder[order.OrderID] = order.CustomerSegment
	}

	type accumulator struct {
		ratingSum  float64
		recommends int
		count      int
	}
	acc := make(map[string]*accumulator)

	for _, fb := range feedback {
		segment, exists := segmentByOrder[fb.OrderID]
		if !exists {
			// 反馈找不到对应订单时无法归属客户段，跳过
			continue
		}
		a, ok := acc[segment]
		if !ok {
			a = &accumulator{}
			acc[segment] = a
		}
		a.ratingSum += fb.Rating
		if strings.EqualFold(fb.WouldRecommend, "Yes") {
			a.recommends++
		}
		a.count++
	}

	profiles := make(map[string]*SegmentProfile, len(acc))
	for segment, a := range acc {
		profiles[segment] = &SegmentProfile{
			CustomerSegment: segment,
			AvgRating:       a.ratingSum / float64(a.count),
			RecommendPct:    float64(a.recommends) / float64(a.count) * 100,
			RespondentCount: a.count,
		}
	}

	return profiles
}

// Build 为每个订单生成客户特征：段级聚合回填到段内全部订单，不满标记仅来自直接反馈
func (b *CustomerFeatureBuilder) Build(feedback []models.CustomerFeedback, orders []models.Order) map[string]*CustomerFeatures {
	profiles := b.AggregateSegments(feedback, orders)

	feedbackByOrder := make(map[string]*models.CustomerFeedback, len(feedback))
	for i := range feedback {
		feedbackByOrder[feedback[i].OrderID] = &feedback[i]
	}

	features := make(map[string]*CustomerFeatures, len(orders))
	for _, order := range orders {
		cf := &CustomerFeatures{OrderID: order.OrderID}

		if profile, exists := profiles[order.CustomerSegment]; exists {
			avgRating := profile.AvgRating
			recommendPct := profile.RecommendPct
			cf.SegmentAvgRating = &avgRating
			cf.SegmentRecommendPct = &recommendPct
		}

		if fb, exists := feedbackByOrder[order.OrderID]; exists {
			dissatisfied := fb.Rating <= meta.DissatisfactionRatingCeiling
			cf.DissatisfactionRisk = &dissatisfied
		}

		features[order.OrderID] = cf
	}

	return features
}
