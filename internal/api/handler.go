package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"yoyboard/internal/calculator"
	"yoyboard/internal/config"
	"yoyboard/internal/exporter"
	"yoyboard/internal/model"
	"yoyboard/internal/store"
)

var log = logging.MustGetLogger("api")

var errNoDataset = errors.New("no dataset selected")

// Options 处理器的目录配置
type Options struct {
	UploadDir string // 上传文件归档目录
	ExportDir string // 导出临时文件目录
}

// Handler API 处理器
type Handler struct {
	store    *store.Store
	calc     *calculator.Calculator
	exporter *exporter.Exporter

	cfgMu sync.RWMutex
	cfg   *config.AppConfig

	opts      Options
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, cfg *config.AppConfig, opts Options) *Handler {
	calc := calculator.NewCalculator(st, cfg.Thresholds())
	return &Handler{
		store:     st,
		calc:      calc,
		exporter:  exporter.NewExporter(calc),
		cfg:       cfg,
		opts:      opts,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)

	// 数据集
	router.GET("/datasets", h.ListDatasets)
	router.POST("/datasets/select", h.SelectDataset)
	router.DELETE("/datasets/:id", h.DeleteDataset)
	router.GET("/datasets/:id/sheets", h.ListSheets)

	// 看板数据
	router.GET("/summaries", h.GetSummaries)
	router.GET("/overview", h.GetOverview)
	router.GET("/impact", h.GetImpact)
	router.GET("/heatmap", h.GetHeatmap)
	router.GET("/shape", h.GetShape)
	router.GET("/value-volume", h.GetValueVolume)
	router.GET("/head-office", h.GetHeadOffice)
	router.GET("/closed-stores", h.GetClosedStores)
	router.GET("/new-stores", h.GetNewStores)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/csv", h.ExportCSV)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}

// config 当前配置快照
func (h *Handler) config() config.AppConfig {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	return *h.cfg
}

// dataset 请求使用的数据集：?dataset=<id>，缺省为当前数据集
func (h *Handler) dataset(c *gin.Context) (*model.Dataset, error) {
	id := c.Query("dataset")
	if id == "" {
		current, err := h.store.GetCurrentDataset()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, errNoDataset
			}
			return nil, err
		}
		id = current
	}
	return h.store.GetDataset(id)
}

// respondError 按错误类型返回状态码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNoDataset), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
