package main

import (
	"log"
	"net/http"
	"strconv"

	"datacleanse-service/api"
	"datacleanse-service/service"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title 数据清洗服务 API
// @version 1.0
// @description 表格数据缺失值清洗服务，低缺失列删除缺失行，高缺失列标记为待填充
// @BasePath /
func main() {
	if err := service.Init(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}

	mux := chi.NewRouter()
	baseContext := service.Config.Server.BaseContext

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if baseContext != "" {
		mux.Route(baseContext, func(r chi.Router) {
			subMux := r.(*chi.Mux)
			api.InitRoute(subMux)
			r.Handle("/metrics", promhttp.Handler())
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
	}

	port := strconv.Itoa(service.Config.Server.ListenPort)
	s := daprd.NewServiceWithMux(":"+port, mux)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error: %v", err)
	}
}
