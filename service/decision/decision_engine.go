/*
 * @module service/decision/decision_engine
 * @description 决策引擎，将打分后的主记录经有序规则级联转换为唯一运营建议
 * @architecture 分层架构 - 决策层，有序 (条件, 结果) 规则表自顶向下求值
 * @stateFlow 概率校验 -> 内置级联逐条求值 -> 自定义脚本规则 -> 默认分支
 * @rules 级联为首条命中即返回（first-match-wins），规则条件存在重叠，求值顺序是正确性不变量；
 *        每条规则的 Reason/Cost_Impact/Service_Impact 为静态标注常量；
 *        阈值来自策略配置而非内联字面量；缺失有效概率时该记录求值失败（局部失败，不影响整批）
 * @dependencies logistics-intel-service/service/models
 * @refs service/pipeline/pipeline_service.go, service/decision/script_rule.go
 */

package decision

import (
	"fmt"
	"sync"

	"logistics-intel-service/service/models"
)

// Action 运营建议动作，封闭枚举
type Action string

// 五种固定动作
const (
	ActionEscalateExpress  Action = "Escalate to Express & Prioritize"
	ActionReRoute          Action = "Re-route / Monitor Traffic"
	ActionReassignVehicle  Action = "Reassign to Newer Vehicle"
	ActionProactiveUpdate  Action = "Proactive Status Update"
	ActionStandardDispatch Action = "Standard Dispatch"
)

// Outcome 规则命中后的建议输出，除动作外均为规则级静态标注
type Outcome struct {
	Action        Action `json:"Action"`
	Reason        string `json:"Reason"`
	CostImpact    string `json:"Cost_Impact"`
	ServiceImpact string `json:"Service_Impact"`
}

// Rule 级联中的一条规则：命中谓词与静态结果
type Rule struct {
	Name    string
	Matches func(record *models.MasterRecord, policy *models.DecisionPolicy) bool
	Outcome Outcome
}

// builtinRules 内置级联，声明顺序即求值顺序
// 规则 1 与规则 3 依赖模型概率，引擎在求值前统一校验概率有效性
func builtinRules() []Rule {
	return []Rule{
		{
			Name: "high_delay_critical_customer",
			Matches: func(r *models.MasterRecord, p *models.DecisionPolicy) bool {
				return *r.DelayProbability > p.DelayProbEscalate && dissatisfactionRisk(r)
			},
			Outcome: Outcome{
				Action:        ActionEscalateExpress,
				Reason:        "High delay risk for at-risk customer",
				CostImpact:    "High (+20%)",
				ServiceImpact: "Significant Risk Reduction",
			},
		},
		{
			Name: "high_route_risk",
			Matches: func(r *models.MasterRecord, p *models.DecisionPolicy) bool {
				return routeRisk(r) > p.RouteRiskThreshold
			},
			Outcome: Outcome{
				Action:        ActionReRoute,
				Reason:        "Severe weather or traffic detected",
				CostImpact:    "Neutral",
				ServiceImpact: "Avoid Potential 4hr+ Delay",
			},
		},
		{
			Name: "low_vehicle_suitability",
			Matches: func(r *models.MasterRecord, p *models.DecisionPolicy) bool {
				return vehicleScore(r) < p.VehicleScoreThreshold && *r.DelayProbability > p.DelayProbReassign
			},
			Outcome: Outcome{
				Action:        ActionReassignVehicle,
				Reason:        "Vehicle suitability is low for this lane",
				CostImpact:    "Medium (+5%)",
				ServiceImpact: "Improve Reliability",
			},
		},
		{
			Name: "historical_dissatisfaction",
			Matches: func(r *models.MasterRecord, p *models.DecisionPolicy) bool {
				return dissatisfactionRisk(r)
			},
			Outcome: Outcome{
				Action:        ActionProactiveUpdate,
				Reason:        "Customer has history of dissatisfaction",
				CostImpact:    "Low",
				ServiceImpact: "Trust Building",
			},
		},
	}
}

// defaultOutcome 级联无命中时的默认分支
var defaultOutcome = Outcome{
	Action:        ActionStandardDispatch,
	Reason:        "Risk within acceptable limits",
	CostImpact:    "None",
	ServiceImpact: "Standard SLA",
}

// DefaultOutcome 返回默认分支的静态标注
func DefaultOutcome() Outcome {
	return defaultOutcome
}

// AllActions 返回全部内置动作（固定顺序）
func AllActions() []Action {
	return []Action{
		ActionEscalateExpress,
		ActionReRoute,
		ActionReassignVehicle,
		ActionProactiveUpdate,
		ActionStandardDispatch,
	}
}

// BuiltinOutcomes 按级联顺序返回各内置规则的静态标注（含默认分支），供策略审查接口使用
func BuiltinOutcomes() []Outcome {
	rules := builtinRules()
	outcomes := make([]Outcome, 0, len(rules)+1)
	for _, rule := range rules {
		outcomes = append(outcomes, rule.Outcome)
	}
	return append(outcomes, defaultOutcome)
}

// DefaultPolicy 返回内置默认阈值策略
func DefaultPolicy() *models.DecisionPolicy {
	return &models.DecisionPolicy{
		Name:                  "default",
		DelayProbEscalate:     0.6,
		RouteRiskThreshold:    70,
		VehicleScoreThreshold: 40,
		DelayProbReassign:     0.4,
	}
}

// DecisionEngine 决策引擎
type DecisionEngine struct {
	policy      *models.DecisionPolicy
	rules       []Rule
	scriptRules []*CompiledScriptRule
}

// NewDecisionEngine 创建决策引擎
// policy 为 nil 时使用模型默认阈值（0.6 / 70 / 40 / 0.4）
func NewDecisionEngine(policy *models.DecisionPolicy) *DecisionEngine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &DecisionEngine{
		policy: policy,
		rules:  builtinRules(),
	}
}

// SetScriptRules 挂载已编译的自定义脚本规则，在内置级联之后、默认分支之前求值
func (e *DecisionEngine) SetScriptRules(rules []*CompiledScriptRule) {
	e.scriptRules = rules
}

// Policy 返回当前生效的阈值策略
func (e *DecisionEngine) Policy() *models.DecisionPolicy {
	return e.policy
}

// Evaluate 对单条打分记录求值，返回唯一建议
// 概率缺失或越界时该记录求值失败，由调用方记录并继续处理其余记录
func (e *DecisionEngine) Evaluate(record *models.MasterRecord) (*Outcome, error) {
	if record == nil {
		return nil, fmt.Errorf("记录为空")
	}
	if !record.HasValidProbabilities() {
		return nil, fmt.Errorf("订单 %s 缺失有效模型概率，无法执行决策求值", record.OrderID)
	}

	for _, rule := range e.rules {
		if rule.Matches(record, e.policy) {
			outcome := rule.Outcome
			return &outcome, nil
		}
	}

	// 自定义脚本规则：脚本执行失败按未命中处理，不阻断该记录
	for _, scriptRule := range e.scriptRules {
		matched, err := scriptRule.Match(record)
		if err != nil {
			continue
		}
		if matched {
			outcome := scriptRule.Outcome()
			return &outcome, nil
		}
	}

	outcome := defaultOutcome
	return &outcome, nil
}

// EvaluateBatch 并发对整批记录求值并就地写回建议字段
// 记录间无共享状态，无顺序要求；返回求值失败的记录数
func (e *DecisionEngine) EvaluateBatch(records []models.MasterRecord, workers int) int64 {
	if workers <= 0 {
		workers = 4
	}

	var errorCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcome, err := e.Evaluate(&records[i])
				if err != nil {
					records[i].DecisionError = err.Error()
					mu.Lock()
					errorCount++
					mu.Unlock()
					continue
				}
				records[i].Action = string(outcome.Action)
				records[i].Reason = outcome.Reason
				records[i].CostImpact = outcome.CostImpact
				records[i].ServiceImpact = outcome.ServiceImpact
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errorCount
}

// dissatisfactionRisk 不满风险标记，无直接反馈的订单按 false 处理
func dissatisfactionRisk(r *models.MasterRecord) bool {
	return r.DissatisfactionRisk != nil && *r.DissatisfactionRisk
}

// routeRisk 路线风险评分，插补后仍缺失（空批）按 0 处理
func routeRisk(r *models.MasterRecord) float64 {
	if r.RouteRiskScore == nil {
		return 0
	}
	return *r.RouteRiskScore
}

// vehicleScore 车辆适配性评分，插补后仍缺失（空批）按 0 处理
func vehicleScore(r *models.MasterRecord) float64 {
	if r.VehicleSuitabilityScore == nil {
		return 0
	}
	return *r.VehicleSuitabilityScore
}
