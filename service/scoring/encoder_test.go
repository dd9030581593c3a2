/*
 * @module service/scoring/encoder_test
 * @description 类别编码器单元测试
 * @architecture 测试层
 * @stateFlow 批内拟合 -> 编码验证 -> 工件往返
 * @rules 验证字典序编码的稳定性、Unknown 填充与工件还原一致性
 * @dependencies testing, testify
 * @refs encoder.go
 */

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder_FitTransform(t *testing.T) {
	encoder := NewLabelEncoder()
	encoder.Fit([]string{"Priority"}, map[string][]string{
		"Priority": {"Standard", "Express", "Standard"},
	})

	// 字典序：Express < Standard < Unknown
	assert.Equal(t, 0.0, encoder.Transform("Priority", "Express"))
	assert.Equal(t, 1.0, encoder.Transform("Priority", "Standard"))
	assert.Equal(t, 2.0, encoder.Transform("Priority", "Unknown"))
}

func TestLabelEncoder_UnknownAndEmpty(t *testing.T) {
	encoder := NewLabelEncoder()
	encoder.Fit([]string{"Origin"}, map[string][]string{
		"Origin": {"Mumbai", "Delhi"},
	})

	unknownCode := encoder.Transform("Origin", UnknownCategory)

	// 空值与未收录类别统一落到 Unknown 编码
	assert.Equal(t, unknownCode, encoder.Transform("Origin", ""))
	assert.Equal(t, unknownCode, encoder.Transform("Origin", "Chennai"))

	// 未拟合的列按 0 处理
	assert.Equal(t, 0.0, encoder.Transform("NoSuchColumn", "anything"))
}

func TestLabelEncoder_Deterministic(t *testing.T) {
	values := map[string][]string{
		"Weather_Impact": {"Rain", "Clear", "Storm", "Fog", "Rain"},
	}

	first := NewLabelEncoder()
	first.Fit([]string{"Weather_Impact"}, values)
	second := NewLabelEncoder()
	second.Fit([]string{"Weather_Impact"}, values)

	// 同一批次重复拟合产出完全一致的编码表
	for _, category := range []string{"Clear", "Fog", "Rain", "Storm", "Unknown"} {
		assert.Equal(t, first.Transform("Weather_Impact", category), second.Transform("Weather_Impact", category))
	}
}

func TestLabelEncoder_ArtifactRoundTrip(t *testing.T) {
	encoder := NewLabelEncoder()
	encoder.Fit([]string{"Priority", "Origin"}, map[string][]string{
		"Priority": {"Express", "Standard"},
		"Origin":   {"Mumbai", "Delhi", "Pune"},
	})

	artifact := encoder.ToArtifact("v1")
	require.NotNil(t, artifact)
	assert.Equal(t, "v1", artifact.Version)

	restored, err := FromArtifact(artifact)
	require.NoError(t, err)

	assert.Equal(t, encoder.Columns(), restored.Columns())
	for _, column := range encoder.Columns() {
		for _, value := range []string{"Express", "Mumbai", "Unknown", ""} {
			assert.Equal(t, encoder.Transform(column, value), restored.Transform(column, value))
		}
	}
}

func TestFromArtifact_Nil(t *testing.T) {
	_, err := FromArtifact(nil)
	assert.Error(t, err)
}
