/*
 * @module service/decision/decision_engine_test
 * @description 决策引擎单元测试
 * @architecture 测试层
 * @stateFlow 构造打分记录 -> 级联求值 -> 建议验证
 * @rules 验证首条命中即返回的求值顺序、各规则阈值边界与概率校验
 * @dependencies testing, testify
 * @refs decision_engine.go
 */

package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool       { return &v }

// scoredRecord 构造一条概率齐备的打分记录
func scoredRecord(orderID string) *models.MasterRecord {
	return &models.MasterRecord{
		OrderID:                 orderID,
		DelayProbability:        floatPtr(0.1),
		CustomerRiskProbability: floatPtr(0.1),
		RouteRiskScore:          floatPtr(20),
		VehicleSuitabilityScore: floatPtr(80),
		DissatisfactionRisk:     boolPtr(false),
	}
}

func TestDecisionEngine_DefaultOutcome(t *testing.T) {
	engine := NewDecisionEngine(nil)

	outcome, err := engine.Evaluate(scoredRecord("ORD-001"))
	require.NoError(t, err)
	assert.Equal(t, ActionStandardDispatch, outcome.Action)
	assert.Equal(t, "Risk within acceptable limits", outcome.Reason)
	assert.Equal(t, "None", outcome.CostImpact)
	assert.Equal(t, "Standard SLA", outcome.ServiceImpact)
}

func TestDecisionEngine_Rule1_EscalateExpress(t *testing.T) {
	engine := NewDecisionEngine(nil)

	record := scoredRecord("ORD-001")
	record.DelayProbability = floatPtr(0.9)
	record.DissatisfactionRisk = boolPtr(true)
	// 同时满足规则 2 的条件，但规则 1 在级联中优先
	record.RouteRiskScore = floatPtr(90)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionEscalateExpress, outcome.Action)
	assert.Equal(t, "High delay risk for at-risk customer", outcome.Reason)
	assert.Equal(t, "High (+20%)", outcome.CostImpact)
}

func TestDecisionEngine_Rule1_ThresholdBoundary(t *testing.T) {
	engine := NewDecisionEngine(nil)

	// 恰好等于阈值不命中（严格大于）
	record := scoredRecord("ORD-001")
	record.DelayProbability = floatPtr(0.6)
	record.DissatisfactionRisk = boolPtr(true)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.NotEqual(t, ActionEscalateExpress, outcome.Action)
	// 不满标记仍命中规则 4
	assert.Equal(t, ActionProactiveUpdate, outcome.Action)
}

func TestDecisionEngine_Rule2_ReRoute(t *testing.T) {
	engine := NewDecisionEngine(nil)

	record := scoredRecord("ORD-001")
	record.RouteRiskScore = floatPtr(75)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionReRoute, outcome.Action)
	assert.Equal(t, "Severe weather or traffic detected", outcome.Reason)
	assert.Equal(t, "Neutral", outcome.CostImpact)

	// 恰好等于 70 不命中
	record.RouteRiskScore = floatPtr(70)
	outcome, err = engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionStandardDispatch, outcome.Action)
}

func TestDecisionEngine_Rule3_ReassignVehicle(t *testing.T) {
	engine := NewDecisionEngine(nil)

	// 低适配性评分 + 中等延迟概率
	record := scoredRecord("ORD-001")
	record.VehicleSuitabilityScore = floatPtr(30)
	record.DelayProbability = floatPtr(0.5)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionReassignVehicle, outcome.Action)
	assert.Equal(t, "Medium (+5%)", outcome.CostImpact)

	// 评分低但概率不足：两个条件必须同时满足
	record.DelayProbability = floatPtr(0.3)
	outcome, err = engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionStandardDispatch, outcome.Action)
}

func TestDecisionEngine_Rule4_ProactiveUpdate(t *testing.T) {
	engine := NewDecisionEngine(nil)

	record := scoredRecord("ORD-001")
	record.DissatisfactionRisk = boolPtr(true)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionProactiveUpdate, outcome.Action)
	assert.Equal(t, "Customer has history of dissatisfaction", outcome.Reason)
	assert.Equal(t, "Trust Building", outcome.ServiceImpact)
}

func TestDecisionEngine_CascadeOrder(t *testing.T) {
	engine := NewDecisionEngine(nil)

	// 同时满足规则 2 与规则 4：规则 2 在前，优先命中
	record := scoredRecord("ORD-001")
	record.RouteRiskScore = floatPtr(85)
	record.DissatisfactionRisk = boolPtr(true)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionReRoute, outcome.Action)
}

func TestDecisionEngine_InvalidProbabilities(t *testing.T) {
	engine := NewDecisionEngine(nil)

	// 概率缺失
	record := scoredRecord("ORD-001")
	record.DelayProbability = nil
	_, err := engine.Evaluate(record)
	assert.Error(t, err)

	// 概率越界
	record = scoredRecord("ORD-002")
	record.CustomerRiskProbability = floatPtr(1.5)
	_, err = engine.Evaluate(record)
	assert.Error(t, err)

	record = scoredRecord("ORD-003")
	record.DelayProbability = floatPtr(-0.1)
	_, err = engine.Evaluate(record)
	assert.Error(t, err)

	_, err = engine.Evaluate(nil)
	assert.Error(t, err)
}

func TestDecisionEngine_CustomPolicy(t *testing.T) {
	policy := &models.DecisionPolicy{
		Name:                  "strict",
		DelayProbEscalate:     0.3,
		RouteRiskThreshold:    50,
		VehicleScoreThreshold: 60,
		DelayProbReassign:     0.2,
	}
	engine := NewDecisionEngine(policy)

	record := scoredRecord("ORD-001")
	record.RouteRiskScore = floatPtr(55)

	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionReRoute, outcome.Action)
}

func TestDecisionEngine_EvaluateBatch(t *testing.T) {
	engine := NewDecisionEngine(nil)

	records := []models.MasterRecord{
		*scoredRecord("ORD-001"),
		*scoredRecord("ORD-002"),
		{OrderID: "ORD-003"}, // 缺失概率，求值失败
	}
	records[1].RouteRiskScore = floatPtr(80)

	errorCount := engine.EvaluateBatch(records, 2)
	assert.Equal(t, int64(1), errorCount)

	assert.Equal(t, string(ActionStandardDispatch), records[0].Action)
	assert.Equal(t, string(ActionReRoute), records[1].Action)
	// 局部失败：失败记录带错误信息，不影响其余记录
	assert.Empty(t, records[2].Action)
	assert.NotEmpty(t, records[2].DecisionError)
}

func TestBuiltinOutcomes(t *testing.T) {
	outcomes := BuiltinOutcomes()
	require.Len(t, outcomes, 5)
	assert.Equal(t, ActionEscalateExpress, outcomes[0].Action)
	assert.Equal(t, ActionReRoute, outcomes[1].Action)
	assert.Equal(t, ActionReassignVehicle, outcomes[2].Action)
	assert.Equal(t, ActionProactiveUpdate, outcomes[3].Action)
	assert.Equal(t, ActionStandardDispatch, outcomes[4].Action)
}
