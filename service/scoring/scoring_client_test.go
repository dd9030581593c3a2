/*
 * @module service/scoring/scoring_client_test
 * @description 模型服务客户端单元测试
 * @architecture 测试层 - httptest 模拟外部模型服务
 * @stateFlow 启动模拟服务 -> 批量预测调用 -> 契约校验验证
 * @rules 验证概率数量一致性与 [0,1] 区间校验，异常响应直接上抛
 * @dependencies testing, testify, net/http/httptest
 * @refs scoring_client.go
 */

package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockModelServer 构造返回固定概率的模拟模型服务
func newMockModelServer(t *testing.T, probabilities []float64, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(predictResponse{Probabilities: probabilities})
	}))
}

func TestPredictDelay_Success(t *testing.T) {
	server := newMockModelServer(t, []float64{0.7, 0.2}, http.StatusOK)
	defer server.Close()

	oldUrl := GetModelServiceUrl()
	SetModelServiceUrl(server.URL)
	defer SetModelServiceUrl(oldUrl)

	probs, err := PredictDelay(context.Background(), [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.7, 0.2}, probs)
}

func TestPredict_CountMismatch(t *testing.T) {
	// 概率数量与请求行数不一致必须报错
	server := newMockModelServer(t, []float64{0.7}, http.StatusOK)
	defer server.Close()

	oldUrl := GetModelServiceUrl()
	SetModelServiceUrl(server.URL)
	defer SetModelServiceUrl(oldUrl)

	_, err := PredictCustomerRisk(context.Background(), [][]float64{{1}, {2}})
	assert.Error(t, err)
}

func TestPredict_OutOfRangeProbability(t *testing.T) {
	server := newMockModelServer(t, []float64{1.2}, http.StatusOK)
	defer server.Close()

	oldUrl := GetModelServiceUrl()
	SetModelServiceUrl(server.URL)
	defer SetModelServiceUrl(oldUrl)

	_, err := PredictDelay(context.Background(), [][]float64{{1}})
	assert.Error(t, err)
}

func TestPredict_ServerError(t *testing.T) {
	server := newMockModelServer(t, nil, http.StatusInternalServerError)
	defer server.Close()

	oldUrl := GetModelServiceUrl()
	SetModelServiceUrl(server.URL)
	defer SetModelServiceUrl(oldUrl)

	_, err := PredictDelay(context.Background(), [][]float64{{1}})
	assert.Error(t, err)
}

func TestPredict_EmptyInstances(t *testing.T) {
	_, err := PredictDelay(context.Background(), nil)
	assert.Error(t, err)
}

func TestPredict_ModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{Error: "model not loaded"})
	}))
	defer server.Close()

	oldUrl := GetModelServiceUrl()
	SetModelServiceUrl(server.URL)
	defer SetModelServiceUrl(oldUrl)

	_, err := PredictDelay(context.Background(), [][]float64{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}
