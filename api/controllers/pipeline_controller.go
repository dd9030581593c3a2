/*
 * @module api/controllers/pipeline_controller
 * @description 流水线管理控制器，提供手动触发、运行历史与运行详情查询API
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 流水线编排服务 -> 响应返回
 * @rules 手动触发为同步执行，调用方需承受完整运行耗时；定时触发由调度器负责
 * @dependencies logistics-intel-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/pipeline/pipeline_service.go
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
	"logistics-intel-service/service/pipeline"
)

// PipelineController 流水线管理控制器
type PipelineController struct {
	pipelineService *pipeline.PipelineService
}

// NewPipelineController 创建流水线管理控制器实例
func NewPipelineController() *PipelineController {
	return &PipelineController{
		pipelineService: service.GlobalPipelineService,
	}
}

// Run 手动触发流水线
// @Summary 手动触发流水线
// @Description 同步执行一次完整的特征融合、打分与决策流水线
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} APIResponse "流水线运行失败"
// @Router /pipeline/run [post]
func (c *PipelineController) Run(w http.ResponseWriter, r *http.Request) {
	run, err := c.pipelineService.RunPipeline(r.Context(), "api")
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "流水线运行失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("流水线运行完成", run))
}

// Latest 查询最近一次运行
// @Summary 查询最近一次运行
// @Description 获取最近一次流水线运行记录（不限状态）
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "尚无运行记录"
// @Router /pipeline/latest [get]
func (c *PipelineController) Latest(w http.ResponseWriter, r *http.Request) {
	run, err := c.pipelineService.LatestRun()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "尚无流水线运行记录", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行记录失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取最近运行成功", run))
}

// GetRun 查询运行详情
// @Summary 查询运行详情
// @Description 按运行ID获取流水线运行记录
// @Tags 流水线管理
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "运行记录不存在"
// @Router /pipeline/runs/{id} [get]
func (c *PipelineController) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := c.pipelineService.GetRun(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusNotFound, "运行记录不存在", nil))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行记录失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取运行记录成功", run))
}

// ListRuns 分页查询运行历史
// @Summary 分页查询运行历史
// @Description 按开始时间倒序分页获取流水线运行记录
// @Tags 流水线管理
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Success 200 {object} PaginatedResponse
// @Router /pipeline/runs [get]
func (c *PipelineController) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	runs, total, err := c.pipelineService.ListRuns(page, size)
	if err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询运行历史失败", err))
		return
	}

	renderPage(w, r, "获取运行历史成功", runs, total, page, size)
}
