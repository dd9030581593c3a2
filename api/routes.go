/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/, api/middleware/
 */

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"logistics-intel-service/api/controllers"
	apimiddleware "logistics-intel-service/api/middleware"
	"logistics-intel-service/service"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController()
	r.Get("/sse/{user_name}", eventController.HandleSSE)

	// 事件管理
	r.Route("/events", func(r chi.Router) {
		r.Post("/send", eventController.SendEvent)
		r.Post("/broadcast", eventController.BroadcastEvent)
	})

	// 元数据
	r.Route("/meta", func(r chi.Router) {
		metaController := controllers.NewMetaController()
		r.Get("/datasets", metaController.GetDatasets)
		r.Get("/decision-actions", metaController.GetDecisionActions)
		r.Get("/model-features", metaController.GetModelFeatures)
	})

	// 数据集管理
	r.Route("/datasets", func(r chi.Router) {
		datasetController := controllers.NewDatasetController()
		r.Post("/load", datasetController.LoadAll)
		r.Get("/status", datasetController.GetStatus)
		r.Post("/{name}/load", datasetController.LoadOne)
		r.Get("/{name}/preview", datasetController.Preview)
	})

	// 流水线管理
	r.Route("/pipeline", func(r chi.Router) {
		pipelineController := controllers.NewPipelineController()
		r.Post("/run", pipelineController.Run)
		r.Get("/latest", pipelineController.Latest)
		r.Get("/runs", pipelineController.ListRuns)
		r.Get("/runs/{id}", pipelineController.GetRun)
	})

	// 运营建议查询
	r.Route("/recommendations", func(r chi.Router) {
		recommendationController := controllers.NewRecommendationController()
		r.Get("/", recommendationController.List)
		r.Get("/summary", recommendationController.Summary)
		r.Get("/{order_id}", recommendationController.GetByOrder)
	})

	// 策略管理
	r.Route("/policies", func(r chi.Router) {
		policyController := controllers.NewPolicyController()

		r.Get("/decision", policyController.GetActivePolicy)
		r.Put("/decision", policyController.UpdateActivePolicy)

		r.Route("/carrier-mappings", func(r chi.Router) {
			r.Get("/", policyController.ListCarrierMappings)
			r.Post("/", policyController.UpsertCarrierMapping)
			r.Delete("/{id}", policyController.DeleteCarrierMapping)
		})

		r.Route("/weather-severities", func(r chi.Router) {
			r.Get("/", policyController.ListWeatherSeverities)
			r.Post("/", policyController.UpsertWeatherSeverity)
		})

		r.Route("/script-rules", func(r chi.Router) {
			r.Get("/", policyController.ListScriptRules)
			r.Post("/", policyController.CreateScriptRule)
			r.Put("/{id}", policyController.UpdateScriptRule)
			r.Delete("/{id}", policyController.DeleteScriptRule)
		})
	})

	// 数据导出
	r.Route("/export", func(r chi.Router) {
		exportController := controllers.NewExportController()

		// 密钥管理
		r.Route("/keys", func(r chi.Router) {
			r.Post("/", exportController.CreateApiKey)
			r.Get("/", exportController.ListApiKeys)
			r.Delete("/{id}", exportController.RevokeApiKey)
		})

		// CSV下载走API密钥鉴权
		r.Group(func(r chi.Router) {
			auth := apimiddleware.NewApiKeyAuthMiddleware(service.GlobalExportService)
			r.Use(auth.Middleware)
			r.Get("/master.csv", exportController.DownloadMasterCSV)
		})
	})
}
