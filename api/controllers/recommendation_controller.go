/*
 * @module api/controllers/recommendation_controller
 * @description 运营建议控制器，提供主数据集建议的查询、过滤与汇总API
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 主表查询 -> 响应返回
 * @rules 未指定 run_id 时默认查询最近一次成功运行的结果
 * @dependencies logistics-intel-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/models/master.go, service/decision/decision_engine.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"

	"logistics-intel-service/service"
	"logistics-intel-service/service/models"
)

// RecommendationController 运营建议控制器
type RecommendationController struct {
	db *gorm.DB
}

// NewRecommendationController 创建运营建议控制器实例
func NewRecommendationController() *RecommendationController {
	return &RecommendationController{
		db: service.DB,
	}
}

// resolveRunID 解析查询的运行ID，缺省取最近一次成功运行
func (c *RecommendationController) resolveRunID(r *http.Request) (string, error) {
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		return runID, nil
	}

	var run models.PipelineRun
	err := c.db.Where("status = ?", models.RunStatusSuccess).
		Order("start_time DESC").First(&run).Error
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// List 分页查询运营建议
// @Summary 分页查询运营建议
// @Description 按订单维度分页查询建议，支持按动作、客户细分、承运商过滤
// @Tags 运营建议
// @Produce json
// @Param run_id query string false "运行ID，缺省为最近一次成功运行"
// @Param action query string false "决策动作过滤"
// @Param segment query string false "客户细分过滤"
// @Param carrier query string false "承运商过滤"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Success 200 {object} PaginatedResponse
// @Router /recommendations [get]
func (c *RecommendationController) List(w http.ResponseWriter, r *http.Request) {
	runID, err := c.resolveRunID(r)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "尚无成功的流水线运行", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行记录失败", err))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 || size > 200 {
		size = 20
	}

	query := c.db.Model(&models.MasterRecord{}).Where("run_id = ?", runID)
	if action := r.URL.Query().Get("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if segment := r.URL.Query().Get("segment"); segment != "" {
		query = query.Where("customer_segment = ?", segment)
	}
	if carrier := r.URL.Query().Get("carrier"); carrier != "" {
		query = query.Where("carrier = ?", carrier)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询建议总数失败", err))
		return
	}

	var records []models.MasterRecord
	err = query.Order("order_id").Offset((page - 1) * size).Limit(size).Find(&records).Error
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询建议列表失败", err))
		return
	}

	renderPage(w, r, "获取建议列表成功", records, total, page, size)
}

// GetByOrder 查询单订单建议详情
// @Summary 查询单订单建议详情
// @Description 按订单ID获取融合特征、模型概率与决策建议的完整视图
// @Tags 运营建议
// @Produce json
// @Param order_id path string true "订单ID"
// @Param run_id query string false "运行ID，缺省为最近一次成功运行"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "订单不存在"
// @Router /recommendations/{order_id} [get]
func (c *RecommendationController) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	runID, err := c.resolveRunID(r)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "尚无成功的流水线运行", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行记录失败", err))
		return
	}

	var record models.MasterRecord
	err = c.db.Where("run_id = ? AND order_id = ?", runID, orderID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "订单建议不存在", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询订单建议失败", err))
		return
	}

	render.Render(w, r, SuccessResponse("获取订单建议成功", record))
}

// Summary 建议分布汇总
// @Summary 建议分布汇总
// @Description 按动作统计建议分布，并给出决策错误与打分覆盖情况
// @Tags 运营建议
// @Produce json
// @Param run_id query string false "运行ID，缺省为最近一次成功运行"
// @Success 200 {object} APIResponse
// @Router /recommendations/summary [get]
func (c *RecommendationController) Summary(w http.ResponseWriter, r *http.Request) {
	runID, err := c.resolveRunID(r)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "尚无成功的流水线运行", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行记录失败", err))
		return
	}

	type actionCount struct {
		Action string `json:"action"`
		Count  int64  `json:"count"`
	}
	var counts []actionCount
	err = c.db.Model(&models.MasterRecord{}).
		Select("action, count(*) as count").
		Where("run_id = ? AND action <> ''", runID).
		Group("action").Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "统计建议分布失败", err))
		return
	}

	var total, errored int64
	c.db.Model(&models.MasterRecord{}).Where("run_id = ?", runID).Count(&total)
	c.db.Model(&models.MasterRecord{}).Where("run_id = ? AND decision_error <> ''", runID).Count(&errored)

	render.Render(w, r, SuccessResponse("获取建议汇总成功", map[string]interface{}{
		"run_id":          runID,
		"total_orders":    total,
		"decision_errors": errored,
		"action_counts":   counts,
	}))
}
