/*
 * @module service/decision/script_rule_test
 * @description 自定义脚本规则单元测试
 * @architecture 测试层
 * @stateFlow 脚本编译 -> 记录求值 -> 级联挂载验证
 * @rules 验证脚本编译缓存、入口函数签名校验与脚本规则在级联中的位置
 * @dependencies testing, testify
 * @refs script_rule.go, decision_engine.go
 */

package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/models"
)

const highValueScript = `
func Match(record map[string]interface{}) (bool, error) {
	value, ok := record["Order_Value_INR"].(float64)
	if !ok {
		return false, nil
	}
	return value > 50000, nil
}
`

func TestScriptRuleCompiler_Compile(t *testing.T) {
	compiler := NewScriptRuleCompiler()

	rule := models.ScriptRule{
		Name:      "high_value_order",
		Script:    highValueScript,
		Action:    "Escalate to Express & Prioritize",
		Reason:    "High value order needs priority handling",
		IsEnabled: true,
	}

	compiled, err := compiler.Compile(rule)
	require.NoError(t, err)
	assert.Equal(t, "high_value_order", compiled.Name())

	record := scoredRecord("ORD-001")
	record.OrderValueINR = 80000
	matched, err := compiled.Match(record)
	require.NoError(t, err)
	assert.True(t, matched)

	record.OrderValueINR = 1000
	matched, err = compiled.Match(record)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestScriptRuleCompiler_InvalidScript(t *testing.T) {
	compiler := NewScriptRuleCompiler()

	// 语法错误
	assert.Error(t, compiler.Validate("func Match( {"))

	// 缺少 Match 入口函数
	assert.Error(t, compiler.Validate("func Other() bool { return true }"))

	// 签名不符
	assert.Error(t, compiler.Validate("func Match(x int) bool { return true }"))

	// 合法脚本
	assert.NoError(t, compiler.Validate(highValueScript))
}

func TestScriptRuleCompiler_CompileAll(t *testing.T) {
	compiler := NewScriptRuleCompiler()

	rules := []models.ScriptRule{
		{Name: "valid", Script: highValueScript, Action: "Proactive Status Update", IsEnabled: true},
		{Name: "disabled", Script: highValueScript, Action: "Proactive Status Update", IsEnabled: false},
		{Name: "broken", Script: "not go code", Action: "Proactive Status Update", IsEnabled: true},
	}

	compiled, errs := compiler.CompileAll(rules)
	// 禁用规则跳过，坏规则报错但不阻断其余规则
	require.Len(t, compiled, 1)
	assert.Equal(t, "valid", compiled[0].Name())
	assert.Len(t, errs, 1)
}

func TestDecisionEngine_ScriptRuleAfterBuiltins(t *testing.T) {
	compiler := NewScriptRuleCompiler()
	compiled, err := compiler.Compile(models.ScriptRule{
		Name:          "high_value_order",
		Script:        highValueScript,
		Action:        string(ActionProactiveUpdate),
		Reason:        "High value order",
		CostImpact:    "Low",
		ServiceImpact: "VIP Handling",
		IsEnabled:     true,
	})
	require.NoError(t, err)

	engine := NewDecisionEngine(nil)
	engine.SetScriptRules([]*CompiledScriptRule{compiled})

	// 内置级联无命中时，脚本规则在默认分支之前求值
	record := scoredRecord("ORD-001")
	record.OrderValueINR = 80000
	outcome, err := engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionProactiveUpdate, outcome.Action)
	assert.Equal(t, "High value order", outcome.Reason)

	// 内置规则命中时脚本规则不参与
	record.RouteRiskScore = floatPtr(90)
	outcome, err = engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionReRoute, outcome.Action)

	// 脚本未命中时落到默认分支
	record = scoredRecord("ORD-002")
	record.OrderValueINR = 100
	outcome, err = engine.Evaluate(record)
	require.NoError(t, err)
	assert.Equal(t, ActionStandardDispatch, outcome.Action)
}
