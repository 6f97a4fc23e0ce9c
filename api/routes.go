/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference DESIGN.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/cleaning_controller.go
 */

package api

import (
	"datacleanse-service/api/controllers"
	"datacleanse-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由，需在 service.Init 之后调用
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController(service.DB)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 缺失值清洗
	r.Route("/cleaning", func(r chi.Router) {
		var dbLoader controllers.TableQueryLoader
		if service.GlobalDBLoader != nil {
			dbLoader = service.GlobalDBLoader
		}
		cleaningController := controllers.NewCleaningController(
			service.GlobalQualityEngine,
			service.GlobalCSVLoader,
			dbLoader,
			service.Config.Server.MaxUploadBytes,
		)

		r.Post("/nan", cleaningController.CleanTable)
		r.Post("/nan/csv", cleaningController.CleanCSV)
		r.Post("/nan/database", cleaningController.CleanDatabase)
		r.Post("/profile", cleaningController.ProfileTable)
	})
}
