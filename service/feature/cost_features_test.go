/*
 * @module service/feature/cost_features_test
 * @description 成本特征构建器单元测试
 * @architecture 测试层
 * @stateFlow 成本记录 -> 令牌匹配列发现 -> 汇总验证
 * @rules 验证大小写敏感的子串匹配与动态列发现行为
 * @dependencies testing, testify
 * @refs cost_features.go
 */

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/models"
)

func TestCostFeatureBuilder_IsCostColumn(t *testing.T) {
	builder := NewCostFeatureBuilder()

	assert.True(t, builder.IsCostColumn("Fuel_Cost"))
	assert.True(t, builder.IsCostColumn("Handling_Fee"))
	assert.True(t, builder.IsCostColumn("Insurance_Amount"))
	assert.True(t, builder.IsCostColumn("Overhead_Charges"))

	// 大小写敏感：小写令牌不匹配
	assert.False(t, builder.IsCostColumn("fuel_cost"))
	assert.False(t, builder.IsCostColumn("handling_fee"))

	assert.False(t, builder.IsCostColumn("Order_ID"))
	assert.False(t, builder.IsCostColumn("Distance_KM"))
}

func TestCostFeatureBuilder_Build(t *testing.T) {
	builder := NewCostFeatureBuilder()

	records := []models.CostRecord{
		{
			OrderID: "ORD-001",
			Components: models.JSONB{
				"Fuel_Cost":      100.5,
				"Handling_Fee":   20.0,
				"Insurance_Cost": 15.5,
				"Route_Name":     "Mumbai-Delhi", // 非成本列，不参与汇总
			},
		},
	}

	features := builder.Build(records)
	require.Len(t, features, 1)

	f := features["ORD-001"]
	assert.InDelta(t, 136.0, f.TotalCost, 1e-9)
	assert.Len(t, f.Components, 3)
	assert.NotContains(t, f.Components, "Route_Name")
}

func TestCostFeatureBuilder_NewColumnChangesTotal(t *testing.T) {
	builder := NewCostFeatureBuilder()

	base := models.JSONB{"Fuel_Cost": 100.0}
	withNew := models.JSONB{"Fuel_Cost": 100.0, "Toll_Fee": 30.0}

	baseTotal := builder.Build([]models.CostRecord{{OrderID: "ORD-001", Components: base}})["ORD-001"].TotalCost
	newTotal := builder.Build([]models.CostRecord{{OrderID: "ORD-001", Components: withNew}})["ORD-001"].TotalCost

	// 新增匹配命名模式的列自动纳入汇总
	assert.InDelta(t, 100.0, baseTotal, 1e-9)
	assert.InDelta(t, 130.0, newTotal, 1e-9)
}

func TestCostFeatureBuilder_NonNumericComponent(t *testing.T) {
	builder := NewCostFeatureBuilder()

	records := []models.CostRecord{
		{
			OrderID: "ORD-001",
			Components: models.JSONB{
				"Fuel_Cost":    "not-a-number",
				"Handling_Fee": 25.0,
			},
		},
	}

	// 非数值的匹配列按 0 计入，不中断汇总
	features := builder.Build(records)
	assert.InDelta(t, 25.0, features["ORD-001"].TotalCost, 1e-9)
}
