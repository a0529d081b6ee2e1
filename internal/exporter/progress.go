package exporter

// 导出阶段
const (
	StageLoading     = "loading"
	StageActionTable = "action table"
	StageSummary     = "summary sheets"
	StageDone        = "done"
)

// 行动表写入占用的进度区间
const (
	actionTableStart = 10
	actionTableEnd   = 80
	progressStep     = 50 // 每写入多少家门店汇报一次
)

// ProgressEvent 导出进度（Percent 单调递增，最终为 100）
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Stores  int    `json:"stores,omitempty"` // 已写入行动表的门店数
}

// progressTracker 汇报导出进度，丢弃未前进的百分比
type progressTracker struct {
	fn   func(ProgressEvent)
	last int
}

func newProgressTracker(fn func(ProgressEvent)) *progressTracker {
	return &progressTracker{fn: fn, last: -1}
}

func (p *progressTracker) stage(percent int, stage string) {
	p.emit(ProgressEvent{Percent: percent, Stage: stage})
}

// stores 行动表写入 done/total 家门店
func (p *progressTracker) stores(done, total int) {
	if total <= 0 || (done%progressStep != 0 && done != total) {
		return
	}
	percent := actionTableStart + (actionTableEnd-actionTableStart)*done/total
	p.emit(ProgressEvent{Percent: percent, Stage: StageActionTable, Stores: done})
}

func (p *progressTracker) emit(evt ProgressEvent) {
	if p.fn == nil {
		return
	}
	if evt.Percent < 0 {
		evt.Percent = 0
	}
	if evt.Percent > 100 {
		evt.Percent = 100
	}
	if evt.Percent <= p.last {
		return
	}
	p.last = evt.Percent
	p.fn(evt)
}
