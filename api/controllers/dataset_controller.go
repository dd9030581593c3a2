/*
 * @module api/controllers/dataset_controller
 * @description 数据集管理控制器，提供CSV装载触发、装载状态查询与数据预览API
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 装载器/存储查询 -> 响应返回
 * @rules 预览接口只读且限制返回行数；装载接口为同步操作
 * @dependencies logistics-intel-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/ingestion/csv_loader.go, service/meta/datasets.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"

	"logistics-intel-service/service"
	"logistics-intel-service/service/ingestion"
	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
)

// DatasetController 数据集管理控制器
type DatasetController struct {
	db     *gorm.DB
	loader *ingestion.CSVLoader
}

// NewDatasetController 创建数据集管理控制器实例
func NewDatasetController() *DatasetController {
	return &DatasetController{
		db:     service.DB,
		loader: service.GlobalCSVLoader,
	}
}

// LoadAll 装载全部数据集
// @Summary 装载全部数据集
// @Description 从数据目录装载全部七个CSV数据集，订单数据集缺失时装载失败
// @Tags 数据集管理
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} APIResponse "订单数据源缺失"
// @Router /datasets/load [post]
func (c *DatasetController) LoadAll(w http.ResponseWriter, r *http.Request) {
	results, err := c.loader.LoadAll(r.Context())
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "数据集装载失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("数据集装载完成", results))
}

// LoadOne 装载指定数据集
// @Summary 装载指定数据集
// @Description 重新装载单个CSV数据集
// @Tags 数据集管理
// @Produce json
// @Param name path string true "数据集名称"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "数据集名称无效"
// @Router /datasets/{name}/load [post]
func (c *DatasetController) LoadOne(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !meta.IsValidDataset(name) {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "数据集名称无效", nil))
		return
	}

	result := c.loader.LoadDataset(r.Context(), name)
	if !result.IsPresent {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "数据集装载失败", nil))
		return
	}
	render.Render(w, r, SuccessResponse("数据集装载完成", result))
}

// GetStatus 查询数据集装载状态
// @Summary 查询数据集装载状态
// @Description 获取全部数据集的装载状态、行数与最近装载时间
// @Tags 数据集管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /datasets/status [get]
func (c *DatasetController) GetStatus(w http.ResponseWriter, r *http.Request) {
	var statuses []models.DatasetStatus
	if err := c.db.Order("name").Find(&statuses).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询数据集状态失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取数据集状态成功", statuses))
}

// Preview 预览数据集内容
// @Summary 预览数据集内容
// @Description 返回指定数据集的前若干行记录
// @Tags 数据集管理
// @Produce json
// @Param name path string true "数据集名称"
// @Param limit query int false "返回行数" default(10)
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "数据集名称无效"
// @Router /datasets/{name}/preview [get]
func (c *DatasetController) Preview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !meta.IsValidDataset(name) {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "数据集名称无效", nil))
		return
	}

	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	rows, err := c.previewRows(name, limit)
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "预览数据集失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("预览数据集成功", rows))
}

// previewRows 按数据集查询前 limit 行
func (c *DatasetController) previewRows(name string, limit int) (interface{}, error) {
	switch name {
	case meta.DatasetOrders:
		var rows []models.Order
		return rows, c.db.Order("order_id").Limit(limit).Find(&rows).Error
	case meta.DatasetDelivery:
		var rows []models.DeliveryPerformance
		return rows, c.db.Order("order_id").Limit(limit).Find(&rows).Error
	case meta.DatasetRoutes:
		var rows []models.RouteRecord
		return rows, c.db.Order("order_id").Limit(limit).Find(&rows).Error
	case meta.DatasetFleet:
		var rows []models.FleetVehicle
		return rows, c.db.Order("vehicle_id").Limit(limit).Find(&rows).Error
	case meta.DatasetWarehouse:
		var rows []models.WarehouseInventory
		return rows, c.db.Order("warehouse").Limit(limit).Find(&rows).Error
	case meta.DatasetFeedback:
		var rows []models.CustomerFeedback
		return rows, c.db.Order("order_id").Limit(limit).Find(&rows).Error
	default:
		var rows []models.CostRecord
		return rows, c.db.Order("order_id").Limit(limit).Find(&rows).Error
	}
}
