/*
 * @module service/decision/script_rule
 * @description 自定义脚本规则执行器，基于 yaegi 解释执行运营方提供的规则脚本
 * @architecture 解释器模式 - 脚本编译缓存 + 动态求值
 * @stateFlow 脚本校验 -> 编译（按内容哈希缓存）-> 记录求值
 * @rules 脚本必须定义 Match(record map[string]interface{}) (bool, error)；
 *        编译结果按 SHA1 哈希缓存，脚本变更自动失效
 * @dependencies github.com/traefik/yaegi
 * @refs service/decision/decision_engine.go, service/models/policy.go
 */

package decision

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"logistics-intel-service/service/models"
)

// MatchFunc 脚本规则的入口函数签名
type MatchFunc func(record map[string]interface{}) (bool, error)

// CompiledScriptRule 编译后的脚本规则
type CompiledScriptRule struct {
	rule  models.ScriptRule
	match MatchFunc
}

// Outcome 脚本规则命中后的建议输出
func (c *CompiledScriptRule) Outcome() Outcome {
	return Outcome{
		Action:        Action(c.rule.Action),
		Reason:        c.rule.Reason,
		CostImpact:    c.rule.CostImpact,
		ServiceImpact: c.rule.ServiceImpact,
	}
}

// Name 规则名称
func (c *CompiledScriptRule) Name() string {
	return c.rule.Name
}

// Match 对记录求值，记录以 JSON 字段名的键值形式暴露给脚本
func (c *CompiledScriptRule) Match(record *models.MasterRecord) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("记录序列化失败: %w", err)
	}
	var recordMap map[string]interface{}
	if err := json.Unmarshal(data, &recordMap); err != nil {
		return false, fmt.Errorf("记录反序列化失败: %w", err)
	}
	return c.match(recordMap)
}

// ScriptRuleCompiler 脚本规则编译器，按脚本内容哈希缓存编译结果
type ScriptRuleCompiler struct {
	mu    sync.RWMutex
	cache map[string]MatchFunc
}

// NewScriptRuleCompiler 创建脚本规则编译器
func NewScriptRuleCompiler() *ScriptRuleCompiler {
	return &ScriptRuleCompiler{
		cache: make(map[string]MatchFunc),
	}
}

// Compile 编译单条脚本规则，命中缓存时直接复用
func (sc *ScriptRuleCompiler) Compile(rule models.ScriptRule) (*CompiledScriptRule, error) {
	hash := scriptHash(rule.Script)

	sc.mu.RLock()
	cached, exists := sc.cache[hash]
	sc.mu.RUnlock()
	if exists {
		return &CompiledScriptRule{rule: rule, match: cached}, nil
	}

	match, err := sc.compile(rule.Script)
	if err != nil {
		return nil, fmt.Errorf("规则 %s 编译失败: %w", rule.Name, err)
	}

	sc.mu.Lock()
	sc.cache[hash] = match
	sc.mu.Unlock()

	return &CompiledScriptRule{rule: rule, match: match}, nil
}

// CompileAll 编译一组启用的脚本规则，单条失败不阻断其余规则
func (sc *ScriptRuleCompiler) CompileAll(rules []models.ScriptRule) ([]*CompiledScriptRule, []error) {
	var compiled []*CompiledScriptRule
	var errs []error

	for _, rule := range rules {
		if !rule.IsEnabled {
			continue
		}
		c, err := sc.Compile(rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		compiled = append(compiled, c)
	}

	return compiled, errs
}

// Validate 校验脚本语法与入口函数签名（快速校验，不缓存）
func (sc *ScriptRuleCompiler) Validate(script string) error {
	_, err := sc.compile(script)
	return err
}

// compile 解释执行脚本并提取 Match 入口函数
func (sc *ScriptRuleCompiler) compile(script string) (MatchFunc, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库符号失败: %w", err)
	}

	src := fmt.Sprintf("package rules\n\n%s", script)
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("脚本求值失败: %w", err)
	}

	v, err := i.Eval("rules.Match")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 Match 入口函数: %w", err)
	}

	match, ok := v.Interface().(func(map[string]interface{}) (bool, error))
	if !ok {
		return nil, fmt.Errorf("Match 函数签名不符，要求 func(map[string]interface{}) (bool, error)")
	}

	return MatchFunc(match), nil
}

// scriptHash 计算脚本内容的 SHA1 哈希
func scriptHash(script string) string {
	sum := sha1.Sum([]byte(script))
	return hex.EncodeToString(sum[:])
}
