/*
 * @module api/controllers/cleaning_controller
 * @description 缺失值清洗控制器，支持 JSON 表、CSV 文本和数据库表三种输入，以及缺失画像
 * @architecture 分层架构 - 控制器层
 * @documentReference DESIGN.md
 * @stateFlow HTTP请求 -> 解析输入表 -> 数据质量引擎 -> 统一响应
 * @rules 统一的错误处理和响应格式；清洗结果只返回给调用方，不做持久化
 * @dependencies datacleanse-service/service/data_quality, datacleanse-service/service/datasource, github.com/go-chi/render
 * @refs service/data_quality/quality_engine.go
 */

package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"datacleanse-service/service/data_quality"
	"datacleanse-service/service/datasource"
	"datacleanse-service/service/models"

	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// TableQueryLoader 按查询读取表的数据源
type TableQueryLoader interface {
	Load(ctx context.Context, query datasource.TableQuery) (*models.Table, error)
}

// CleaningController 缺失值清洗控制器
type CleaningController struct {
	engine         *data_quality.QualityEngine
	csvLoader      *datasource.CSVLoader
	dbLoader       TableQueryLoader
	maxUploadBytes int64
}

// NewCleaningController 创建清洗控制器实例，dbLoader 为空时数据库接口返回 503
func NewCleaningController(engine *data_quality.QualityEngine, csvLoader *datasource.CSVLoader, dbLoader TableQueryLoader, maxUploadBytes int64) *CleaningController {
	return &CleaningController{
		engine:         engine,
		csvLoader:      csvLoader,
		dbLoader:       dbLoader,
		maxUploadBytes: maxUploadBytes,
	}
}

// parseThreshold 解析可选的 threshold 查询参数
func parseThreshold(r *http.Request) (*float64, error) {
	raw := r.URL.Query().Get("threshold")
	if raw == "" {
		return nil, nil
	}
	threshold, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("threshold 参数非法: %w", err)
	}
	return &threshold, nil
}

// errorResponse 把清洗错误映射为 HTTP 响应
func errorResponse(msg string, err error) *APIResponse {
	switch {
	case errors.Is(err, data_quality.ErrInvalidArgument), errors.Is(err, data_quality.ErrInvalidTable):
		return BadRequestResponse(msg, err)
	case errors.Is(err, data_quality.ErrColumnNotFound):
		return NotFoundResponse(msg, err)
	default:
		return InternalErrorResponse(msg, err)
	}
}

func (c *CleaningController) clean(w http.ResponseWriter, r *http.Request, table *models.Table) {
	threshold, err := parseThreshold(r)
	if err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	result, err := c.engine.Clean(table, data_quality.CleanOptions{Threshold: threshold})
	if err != nil {
		writeResponse(w, r, errorResponse("缺失值清洗失败", err))
		return
	}

	slog.Info("缺失值清洗完成",
		"run_id", result.RunID,
		"rows_before", result.RowsBefore,
		"rows_after", result.RowsAfter,
		"replace_candidates", result.ReplaceCandidates)
	writeResponse(w, r, SuccessResponse("缺失值清洗成功", result))
}

// CleanTable 清洗 JSON 表
// @Summary 清洗JSON表中的缺失值
// @Description 低缺失列删除缺失行，高缺失列标记为待填充
// @Tags 数据清洗
// @Accept json
// @Produce json
// @Param threshold query number false "缺失比例阈值" default(0.05)
// @Param table body models.Table true "待清洗的表"
// @Success 200 {object} APIResponse{data=data_quality.CleanResult} "清洗成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "列不存在"
// @Router /cleaning/nan [post]
func (c *CleaningController) CleanTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)

	var table models.Table
	if err := render.DecodeJSON(r.Body, &table); err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	c.clean(w, r, &table)
}

// CleanCSV 清洗 CSV 文本
// @Summary 清洗CSV中的缺失值
// @Description 第一行为表头，列类型自动推断
// @Tags 数据清洗
// @Accept text/csv
// @Produce json
// @Param threshold query number false "缺失比例阈值" default(0.05)
// @Param charset query string false "字符集" Enums(utf-8,gbk,gb18030)
// @Success 200 {object} APIResponse{data=data_quality.CleanResult} "清洗成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /cleaning/nan/csv [post]
func (c *CleaningController) CleanCSV(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, c.maxUploadBytes)

	table, err := c.csvLoader.Load(body, r.URL.Query().Get("charset"))
	if err != nil {
		writeResponse(w, r, BadRequestResponse("解析CSV失败", err))
		return
	}
	c.clean(w, r, table)
}

// CleanDatabase 清洗数据库表
// @Summary 清洗数据库表中的缺失值
// @Description 读取配置数据库中的表并清洗，结果不回写数据库
// @Tags 数据清洗
// @Accept json
// @Produce json
// @Param threshold query number false "缺失比例阈值" default(0.05)
// @Param query body datasource.TableQuery true "表查询"
// @Success 200 {object} APIResponse{data=data_quality.CleanResult} "清洗成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 503 {object} APIResponse "未配置数据库"
// @Router /cleaning/nan/database [post]
func (c *CleaningController) CleanDatabase(w http.ResponseWriter, r *http.Request) {
	if c.dbLoader == nil {
		writeResponse(w, r, ErrorResponse(http.StatusServiceUnavailable, "未配置数据库", nil))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)

	var query datasource.TableQuery
	if err := render.DecodeJSON(r.Body, &query); err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := query.Validate(); err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	table, err := c.dbLoader.Load(r.Context(), query)
	if err != nil {
		writeResponse(w, r, InternalErrorResponse("读取数据库表失败", err))
		return
	}
	c.clean(w, r, table)
}

// ProfileTable 缺失画像
// @Summary 获取表的缺失画像
// @Description 返回每列缺失数、缺失比例以及在阈值下的分类，不修改数据
// @Tags 数据清洗
// @Accept json
// @Produce json
// @Param threshold query number false "缺失比例阈值" default(0.05)
// @Param table body models.Table true "待分析的表"
// @Success 200 {object} APIResponse{data=data_quality.MissingnessProfile} "获取成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /cleaning/profile [post]
func (c *CleaningController) ProfileTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)

	var table models.Table
	if err := render.DecodeJSON(r.Body, &table); err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	threshold, err := parseThreshold(r)
	if err != nil {
		writeResponse(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	profile, err := c.engine.Profile(&table, threshold)
	if err != nil {
		writeResponse(w, r, errorResponse("获取缺失画像失败", err))
		return
	}
	writeResponse(w, r, SuccessResponse("获取缺失画像成功", profile))
}
