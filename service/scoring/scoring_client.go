/*
 * @module service/scoring/scoring_client
 * @description 外部模型服务 HTTP 客户端，按批请求两个预测目标的概率
 * @architecture 适配器模式 - 封装外部预测能力为 predict_probability 契约
 * @stateFlow 特征矩阵 -> HTTP 批量请求 -> 概率向量校验 -> 返回
 * @rules 每个目标一次同步批量调用；失败直接上抛，本层不做重试；
 *        返回概率必须与请求行数一致且落在 [0,1] 区间
 * @dependencies net/http, encoding/json
 * @refs service/pipeline/pipeline_service.go
 */

package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

var ModelServiceUrl = "http://model-service:8501"
var scoringClient = &http.Client{
	Timeout: 30 * time.Second,
}

func init() {
	if envUrl := os.Getenv("MODEL_SERVICE_URL"); envUrl != "" {
		ModelServiceUrl = envUrl
	}
}

// SetModelServiceUrl 设置模型服务的 URL（用于测试）
func SetModelServiceUrl(url string) {
	ModelServiceUrl = url
}

// GetModelServiceUrl 获取当前模型服务的 URL
func GetModelServiceUrl() string {
	return ModelServiceUrl
}

// predictRequest 批量预测请求体
type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

// predictResponse 批量预测响应体
type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// PredictDelay 批量请求延迟概率
func PredictDelay(ctx context.Context, instances [][]float64) ([]float64, error) {
	return predict(ctx, "/v1/models/delay:predict", instances)
}

// PredictCustomerRisk 批量请求客户不满风险概率
func PredictCustomerRisk(ctx context.Context, instances [][]float64) ([]float64, error) {
	return predict(ctx, "/v1/models/customer-risk:predict", instances)
}

// predict 执行一次批量预测调用并校验概率契约
func predict(ctx context.Context, path string, instances [][]float64) ([]float64, error) {
	if len(instances) == 0 {
		return nil, errors.New("预测请求不能为空")
	}

	body, err := json.Marshal(predictRequest{Instances: instances})
	if err != nil {
		return nil, fmt.Errorf("构建请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ModelServiceUrl+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := scoringClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("模型服务返回异常状态码: %d", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("模型服务错误: %s", result.Error)
	}

	if len(result.Probabilities) != len(instances) {
		return nil, fmt.Errorf("概率数量 %d 与请求行数 %d 不一致", len(result.Probabilities), len(instances))
	}
	for i, p := range result.Probabilities {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("第 %d 行概率 %f 超出 [0,1] 区间", i, p)
		}
	}

	return result.Probabilities, nil
}
