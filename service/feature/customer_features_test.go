/*
 * @module service/feature/customer_features_test
 * @description 客户特征构建器单元测试
 * @architecture 测试层
 * @stateFlow 反馈与订单关联 -> 段级聚合 -> 订单级特征验证
 * @rules 验证段级聚合回填全部订单、不满标记仅来自直接反馈、评分边界
 * @dependencies testing, testify
 * @refs customer_features.go
 */

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/models"
)

func TestCustomerFeatureBuilder_AggregateSegments(t *testing.T) {
	builder := NewCustomerFeatureBuilder()

	orders := []models.Order{
		{OrderID: "ORD-001", CustomerSegment: "B2B"},
		{OrderID: "ORD-002", CustomerSegment: "B2B"},
		{OrderID: "ORD-003", CustomerSegment: "B2C"},
	}
	feedback := []models.CustomerFeedback{
		{OrderID: "ORD-001", Rating: 4, WouldRecommend: "Yes"},
		{OrderID: "ORD-002", Rating: 2, WouldRecommend: "No"},
		{OrderID: "ORD-003", Rating: 5, WouldRecommend: "Yes"},
	}

	profiles := builder.AggregateSegments(feedback, orders)
	require.Len(t, profiles, 2)

	b2b := profiles["B2B"]
	require.NotNil(t, b2b)
	assert.InDelta(t, 3.0, b2b.AvgRating, 1e-9)
	assert.InDelta(t, 50.0, b2b.RecommendPct, 1e-9)
	assert.Equal(t, 2, b2b.RespondentCount)

	b2c := profiles["B2C"]
	require.NotNil(t, b2c)
	assert.InDelta(t, 5.0, b2c.AvgRating, 1e-9)
	assert.InDelta(t, 100.0, b2c.RecommendPct, 1e-9)
}

func TestCustomerFeatureBuilder_OrphanFeedbackSkipped(t *testing.T) {
	builder := NewCustomerFeatureBuilder()

	orders := []models.Order{
		{OrderID: "ORD-001", CustomerSegment: "B2B"},
	}
	// 找不到对应订单的反馈无法归属客户段，不参与聚合
	feedback := []models.CustomerFeedback{
		{OrderID: "ORD-001", Rating: 4, WouldRecommend: "Yes"},
		{OrderID: "ORD-999", Rating: 1, WouldRecommend: "No"},
	}

	profiles := builder.AggregateSegments(feedback, orders)
	require.Len(t, profiles, 1)
	assert.Equal(t, 1, profiles["B2B"].RespondentCount)
	assert.InDelta(t, 4.0, profiles["B2B"].AvgRating, 1e-9)
}

func TestCustomerFeatureBuilder_Build(t *testing.T) {
	builder := NewCustomerFeatureBuilder()

	orders := []models.Order{
		{OrderID: "ORD-001", CustomerSegment: "B2B"},
		{OrderID: "ORD-002", CustomerSegment: "B2B"},
		{OrderID: "ORD-003", CustomerSegment: "Enterprise"},
	}
	feedback := []models.CustomerFeedback{
		{OrderID: "ORD-001", Rating: 3, WouldRecommend: "No"},
	}

	features := builder.Build(feedback, orders)
	require.Len(t, features, 3)

	// 段级聚合回填到段内全部订单，包括没有直接反馈的订单
	withFeedback := features["ORD-001"]
	require.NotNil(t, withFeedback.SegmentAvgRating)
	assert.InDelta(t, 3.0, *withFeedback.SegmentAvgRating, 1e-9)

	withoutFeedback := features["ORD-002"]
	require.NotNil(t, withoutFeedback.SegmentAvgRating)
	assert.InDelta(t, 3.0, *withoutFeedback.SegmentAvgRating, 1e-9)

	// 不满标记仅对有直接反馈的订单可用；评分恰好为 3（含边界）视为不满
	require.NotNil(t, withFeedback.DissatisfactionRisk)
	assert.True(t, *withFeedback.DissatisfactionRisk)
	assert.Nil(t, withoutFeedback.DissatisfactionRisk)

	// 段内无任何反馈：段级指标也为空
	noSegmentData := features["ORD-003"]
	assert.Nil(t, noSegmentData.SegmentAvgRating)
	assert.Nil(t, noSegmentData.SegmentRecommendPct)
	assert.Nil(t, noSegmentData.DissatisfactionRisk)
}

func TestCustomerFeatureBuilder_RatingBoundary(t *testing.T) {
	builder := NewCustomerFeatureBuilder()

	orders := []models.Order{
		{OrderID: "ORD-001", CustomerSegment: "B2C"},
		{OrderID: "ORD-002", CustomerSegment: "B2C"},
	}
	feedback := []models.CustomerFeedback{
		{OrderID: "ORD-001", Rating: 3, WouldRecommend: "Yes"},
		{OrderID: "ORD-002", Rating: 3.5, WouldRecommend: "Yes"},
	}

	features := builder.Build(feedback, orders)
	require.NotNil(t, features["ORD-001"].DissatisfactionRisk)
	assert.True(t, *features["ORD-001"].DissatisfactionRisk)
	require.NotNil(t, features["ORD-002"].DissatisfactionRisk)
	assert.False(t, *features["ORD-002"].DissatisfactionRisk)
}
