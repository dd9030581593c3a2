/*
 * @module service/scoring/encoder
 * @description 类别特征编码器，提供稳定的类别到数值映射，并以版本化工件持久化
 * @architecture 分层架构 - 打分适配层
 * @stateFlow 批内拟合 -> 工件持久化 -> 推理侧复用同一编码表
 * @rules 类别按字典序分配编码保证稳定；空值统一填充 "Unknown" 后再编码；
 *        训练与推理共享同一版本工件，禁止隐式模块级编码器状态
 * @dependencies logistics-intel-service/service/models, github.com/spf13/cast
 * @refs service/scoring/features.go, service/models/policy.go
 */

package scoring

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"logistics-intel-service/service/models"
)

// UnknownCategory 空值与未知类别的占位
const UnknownCategory = "Unknown"

// LabelEncoder 按列的类别编码器
type LabelEncoder struct {
	mappings map[string]map[string]int // column -> category -> code
}

// NewLabelEncoder 创建空编码器
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		mappings: make(map[string]map[string]int),
	}
}

// Fit 对指定列在整批记录上拟合编码表
// 每列的类别全集（含 Unknown）按字典序分配编码，保证同一批次重复拟合结果一致
func (e *LabelEncoder) Fit(columns []string, valuesByColumn map[string][]string) {
	for _, column := range columns {
		seen := map[string]bool{UnknownCategory: true}
		for _, value := range valuesByColumn[column] {
			if value == "" {
				value = UnknownCategory
			}
			seen[value] = true
		}

		categories := make([]string, 0, len(seen))
		for category := range seen {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		mapping := make(map[string]int, len(categories))
		for code, category := range categories {
			mapping[category] = code
		}
		e.mappings[column] = mapping
	}
}

// Transform 将类别值编码为稳定数值，空值与未知类别落到 Unknown 编码
func (e *LabelEncoder) Transform(column, value string) float64 {
	mapping, exists := e.mappings[column]
	if !exists {
		return 0
	}
	if value == "" {
		value = UnknownCategory
	}
	if code, exists := mapping[value]; exists {
		return float64(code)
	}
	return float64(mapping[UnknownCategory])
}

// Columns 返回已拟合的列名
func (e *LabelEncoder) Columns() []string {
	columns := make([]string, 0, len(e.mappings))
	for column := range e.mappings {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// ToArtifact 导出为版本化工件
func (e *LabelEncoder) ToArtifact(version string) *models.EncoderArtifact {
	mappings := make(models.JSONB, len(e.mappings))
	for column, mapping := range e.mappings {
		codes := make(map[string]interface{}, len(mapping))
		for category, code := range mapping {
			codes[category] = code
		}
		mappings[column] = codes
	}
	return &models.EncoderArtifact{
		Version:  version,
		Mappings: mappings,
	}
}

// FromArtifact 从版本化工件还原编码器
func FromArtifact(artifact *models.EncoderArtifact) (*LabelEncoder, error) {
	if artifact == nil {
		return nil, fmt.Errorf("编码器工件为空")
	}

	encoder := NewLabelEncoder()
	for column, raw := range artifact.Mappings {
		codes, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("工件 %s 的列 %s 编码表格式不合法", artifact.Version, column)
		}
		mapping := make(map[string]int, len(codes))
		for category, code := range codes {
			mapping[category] = cast.ToInt(code)
		}
		encoder.mappings[column] = mapping
	}

	return encoder, nil
}
