/*
 * @module api/controllers/meta_controller
 * @description 元数据控制器，提供数据集契约、决策动作、模型特征子集等静态元数据查询
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程
 * @rules 元数据来源于 service/meta 常量层，只读
 * @dependencies logistics-intel-service/service/meta, github.com/go-chi/render
 * @refs service/meta/datasets.go, service/meta/decision.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"logistics-intel-service/service/decision"
	"logistics-intel-service/service/meta"
)

// MetaController 元数据控制器
type MetaController struct{}

// NewMetaController 创建元数据控制器实例
func NewMetaController() *MetaController {
	return &MetaController{}
}

// GetDatasets 获取数据集元数据
// @Summary 获取数据集元数据
// @Description 获取七个物流数据集的名称、来源文件与列契约
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/datasets [get]
func (c *MetaController) GetDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := make([]map[string]interface{}, 0, len(meta.GetAllDatasets()))
	for _, name := range meta.GetAllDatasets() {
		datasets = append(datasets, meta.GetDatasetInfo(name))
	}
	render.JSON(w, r, SuccessResponse("获取数据集元数据成功", datasets))
}

// GetDecisionActions 获取决策动作元数据
// @Summary 获取决策动作元数据
// @Description 获取规则级联全部可能的动作及各规则的静态输出
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/decision-actions [get]
func (c *MetaController) GetDecisionActions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取决策动作元数据成功", map[string]interface{}{
		"actions":  decision.AllActions(),
		"outcomes": decision.BuiltinOutcomes(),
	}))
}

// GetModelFeatures 获取模型特征契约
// @Summary 获取模型特征契约
// @Description 获取两个预测目标的输入特征子集与类别编码列
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/model-features [get]
func (c *MetaController) GetModelFeatures(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取模型特征契约成功", map[string]interface{}{
		"delay_model":         meta.DelayModelFeatures,
		"customer_risk_model": meta.CustomerRiskModelFeatures,
		"encoded_columns":     meta.EncodedCategoricalColumns,
		"cost_column_tokens":  meta.CostColumnTokens,
	}))
}
