package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/config"
	"yoyboard/internal/store"
)

// 运行时可修改的配置项，保存在 SQLite config 表中
const (
	settingSpikeThreshold     = "business.spike_threshold"
	settingPeriod             = "business.period"
	settingBaselineYear       = "business.baseline_year"
	settingComparisonYear     = "business.comparison_year"
	settingSchemaMode         = "schema.mode"
	settingStoreColumn        = "schema.store_column"
	settingDateColumn         = "schema.date_column"
	settingQtyColumnFormat    = "schema.qty_column_format"
	settingAmountColumnFormat = "schema.amount_column_format"
)

// UpdateConfigRequest 更新配置请求（未提供的字段保持不变）
type UpdateConfigRequest struct {
	SpikeThreshold     *float64 `json:"spikeThreshold"`
	Period             *string  `json:"period"`
	BaselineYear       *int     `json:"baselineYear"`
	ComparisonYear     *int     `json:"comparisonYear"`
	SchemaMode         *string  `json:"schemaMode"`
	StoreColumn        *string  `json:"storeColumn"`
	DateColumn         *string  `json:"dateColumn"`
	QtyColumnFormat    *string  `json:"qtyColumnFormat"`
	AmountColumnFormat *string  `json:"amountColumnFormat"`
}

// LoadSettings 用数据库中保存的配置覆盖 cfg（config.toml 与环境变量之上）
func LoadSettings(st *store.Store, cfg *config.AppConfig) error {
	all, err := st.GetAllConfig()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	next := *cfg
	if _, ok := all[settingSpikeThreshold]; ok {
		v, err := st.GetConfigFloat(settingSpikeThreshold)
		if err != nil {
			return fmt.Errorf("setting %s: %w", settingSpikeThreshold, err)
		}
		next.Business.SpikeThreshold = v
	}

	ints := map[string]*int{
		settingBaselineYear:   &next.Business.BaselineYear,
		settingComparisonYear: &next.Business.ComparisonYear,
	}
	for key, dst := range ints {
		if raw, ok := all[key]; ok {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("setting %s: %w", key, err)
			}
			*dst = v
		}
	}

	strs := map[string]*string{
		settingPeriod:             &next.Business.Period,
		settingSchemaMode:         &next.Schema.Mode,
		settingStoreColumn:        &next.Schema.StoreColumn,
		settingDateColumn:         &next.Schema.DateColumn,
		settingQtyColumnFormat:    &next.Schema.QtyColumnFormat,
		settingAmountColumnFormat: &next.Schema.AmountColumnFormat,
	}
	for key, dst := range strs {
		if raw, ok := all[key]; ok {
			*dst = raw
		}
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("stored settings: %w", err)
	}
	*cfg = next
	return nil
}

// GetConfig 获取当前生效配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.config())
}

// UpdateConfig 更新业务配置（阈值、年份、列识别）
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	h.cfgMu.Lock()
	defer h.cfgMu.Unlock()

	next := *h.cfg
	updates := make(map[string]string)
	if req.SpikeThreshold != nil {
		next.Business.SpikeThreshold = *req.SpikeThreshold
		updates[settingSpikeThreshold] = strconv.FormatFloat(*req.SpikeThreshold, 'f', -1, 64)
	}
	if req.BaselineYear != nil {
		next.Business.BaselineYear = *req.BaselineYear
		updates[settingBaselineYear] = strconv.Itoa(*req.BaselineYear)
	}
	if req.ComparisonYear != nil {
		next.Business.ComparisonYear = *req.ComparisonYear
		updates[settingComparisonYear] = strconv.Itoa(*req.ComparisonYear)
	}
	setString := func(key string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			updates[key] = *src
		}
	}
	setString(settingPeriod, req.Period, &next.Business.Period)
	setString(settingSchemaMode, req.SchemaMode, &next.Schema.Mode)
	setString(settingStoreColumn, req.StoreColumn, &next.Schema.StoreColumn)
	setString(settingDateColumn, req.DateColumn, &next.Schema.DateColumn)
	setString(settingQtyColumnFormat, req.QtyColumnFormat, &next.Schema.QtyColumnFormat)
	setString(settingAmountColumnFormat, req.AmountColumnFormat, &next.Schema.AmountColumnFormat)

	if err := next.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for key, value := range updates {
		var err error
		if key == settingSpikeThreshold {
			err = h.store.SetConfigFloat(key, next.Business.SpikeThreshold)
		} else {
			err = h.store.SetConfig(key, value)
		}
		if err != nil {
			respondError(c, errors.Join(fmt.Errorf("更新配置失败: %s", key), err))
			return
		}
	}

	*h.cfg = next
	h.calc.SetThresholds(next.Thresholds())
	log.Infof("config updated: %d keys", len(updates))

	c.JSON(http.StatusOK, next)
}
