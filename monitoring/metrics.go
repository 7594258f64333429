package monitoring

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Collector 统计上传管线的运行指标
type Collector struct {
	startTime time.Time

	uploadsOK     atomic.Int64
	uploadsFailed atomic.Int64
	rowsScored    atomic.Int64
	lastBatchUnix atomic.Int64
}

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordBatch 记录一次成功的预测批次
func (c *Collector) RecordBatch(rows int) {
	c.uploadsOK.Add(1)
	c.rowsScored.Add(int64(rows))
	c.lastBatchUnix.Store(time.Now().Unix())
}

// RecordFailure 记录一次被拒绝或失败的上传
func (c *Collector) RecordFailure() {
	c.uploadsFailed.Add(1)
}

// Snapshot 运行指标快照
type Snapshot struct {
	UploadsOK      int64     `json:"uploads_ok"`
	UploadsFailed  int64     `json:"uploads_failed"`
	RowsScored     int64     `json:"rows_scored"`
	LastBatchAt    time.Time `json:"last_batch_at,omitempty"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	Goroutines     int       `json:"goroutines"`
	HeapAllocBytes uint64    `json:"heap_alloc_bytes"`
}

// Stats 返回当前指标快照
func (c *Collector) Stats() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snapshot := Snapshot{
		UploadsOK:      c.uploadsOK.Load(),
		UploadsFailed:  c.uploadsFailed.Load(),
		RowsScored:     c.rowsScored.Load(),
		UptimeSeconds:  int64(time.Since(c.startTime).Seconds()),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
	}
	if unix := c.lastBatchUnix.Load(); unix > 0 {
		snapshot.LastBatchAt = time.Unix(unix, 0)
	}
	return snapshot
}
