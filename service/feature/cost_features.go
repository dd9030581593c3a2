/*
 * @module service/feature/cost_features
 * @description 成本特征构建器，按命名模式动态发现成本列并逐行汇总 total_cost
 * @architecture 分层架构 - 特征工程层
 * @stateFlow 成本记录 -> 令牌匹配列发现 -> 行级汇总 -> 组件保留
 * @rules 列发现为大小写敏感的子串匹配（Cost/Fee/Insurance/Overhead），不得硬编码固定列清单，
 *        成本源新增匹配列时 total_cost 自动随之变化
 * @dependencies logistics-intel-service/service/meta, logistics-intel-service/service/models, github.com/spf13/cast
 * @refs service/assembler/master_assembler.go
 */

package feature

import (
	"strings"

	"github.com/spf13/cast"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// CostFeatures 每订单的成本特征，保留全部匹配到的组件列
type CostFeatures struct {
	OrderID    string             `json:"Order_ID"`
	TotalCost  float64            `json:"total_cost"`
	Components map[string]float64 `json:"components"`
}

// CostFeatureBuilder 成本特征构建器
type CostFeatureBuilder struct {
	tokens []string
}

// NewCostFeatureBuilder 创建成本特征构建器
func NewCostFeatureBuilder() *CostFeatureBuilder {
	return &CostFeatureBuilder{tokens: meta.CostColumnTokens}
}

// IsCostColumn 判断列名是否属于成本列（大小写敏感的子串匹配）
func (b *CostFeatureBuilder) IsCostColumn(column string) bool {
	for _, token := range b.tokens {
		if strings.Contains(column, token) {
			return true
		}
	}
	return false
}

// Build 对整批成本记录发现成本列并汇总，按 Order_ID 索引返回
func (b *CostFeatureBuilder) Build(records []models.CostRecord) map[string]*CostFeatures {
	features := make(map[string]*CostFeatures, len(records))

	for _, record := range records {
		components := make(map[string]float64)
		total := 0.0

		for column, value := range record.Components {
			if !b.IsCostColumn(column) {
				continue
			}
			// 非数值的匹配列按 0 计入，不中断汇总
			amount, err := cast.ToFloat64E(value)
			if err != nil {
				amount = 0
			}
			components[column] = amount
			total += amount
		}

		features[record.OrderID] = &CostFeatures{
			OrderID:    record.OrderID,
			TotalCost:  total,
			Components: components,
		}
	}

	return features
}
