/*
 * @module api/controllers/export_controller
 * @description 数据导出控制器，提供主数据集CSV下载与导出API密钥管理
 * @architecture MVC架构 - 控制器层
 * @stateFlow 密钥鉴权(中间件) -> 导出服务 -> CSV流式响应
 * @rules CSV下载走API密钥鉴权；密钥管理接口仅限内部网络访问
 * @dependencies logistics-intel-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/export/export_service.go, api/middleware/apikey_auth.go
 */

package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"logistics-intel-service/service"
	"logistics-intel-service/service/export"
)

// ExportController 数据导出控制器
type ExportController struct {
	exportService *export.ExportService
}

// NewExportController 创建数据导出控制器实例
func NewExportController() *ExportController {
	return &ExportController{
		exportService: service.GlobalExportService,
	}
}

// DownloadMasterCSV 下载主数据集CSV
// @Summary 下载主数据集CSV
// @Description 导出指定运行（缺省最近一次成功运行）的主数据集为CSV文件
// @Tags 数据导出
// @Produce text/csv
// @Param run_id query string false "运行ID"
// @Param X-API-Key header string true "导出API密钥"
// @Success 200 {string} string "CSV文件"
// @Failure 401 {object} APIResponse "密钥无效"
// @Router /export/master.csv [get]
func (c *ExportController) DownloadMasterCSV(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")

	filename := fmt.Sprintf("logistics_master_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	rows, err := c.exportService.ExportMasterCSV(w, runID)
	if err != nil {
		// 响应头可能已写出，只能记录到响应体
		http.Error(w, fmt.Sprintf("导出失败: %v", err), http.StatusInternalServerError)
		return
	}
	_ = rows
}

// CreateApiKeyRequest 创建导出密钥请求
type CreateApiKeyRequest struct {
	Name string `json:"name" example:"bi-dashboard"`
}

// CreateApiKey 创建导出API密钥
// @Summary 创建导出API密钥
// @Description 创建新密钥，明文仅在本次响应中返回一次
// @Tags 数据导出
// @Accept json
// @Produce json
// @Param request body CreateApiKeyRequest true "密钥信息"
// @Success 200 {object} APIResponse
// @Router /export/keys [post]
func (c *ExportController) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	var req CreateApiKeyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}

	key, fullKey, err := c.exportService.CreateApiKey(req.Name)
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "创建导出密钥失败", err))
		return
	}

	render.Render(w, r, SuccessResponse("导出密钥创建成功，请妥善保存明文密钥", map[string]interface{}{
		"key":     key,
		"api_key": fullKey,
	}))
}

// ListApiKeys 获取导出密钥列表
// @Summary 获取导出密钥列表
// @Tags 数据导出
// @Produce json
// @Success 200 {object} APIResponse
// @Router /export/keys [get]
func (c *ExportController) ListApiKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := c.exportService.ListApiKeys()
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询导出密钥失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取导出密钥成功", keys))
}

// RevokeApiKey 吊销导出密钥
// @Summary 吊销导出密钥
// @Tags 数据导出
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse
// @Router /export/keys/{id} [delete]
func (c *ExportController) RevokeApiKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.exportService.RevokeApiKey(id); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "吊销导出密钥失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("导出密钥已吊销", nil))
}
