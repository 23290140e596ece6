package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/hiveminds/marketplace/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report    Report
	collector *Collector

	// Rolling window of verification latencies
	mtx             sync.Mutex
	verifyDurations deque.Deque[int64]
	historySize     int
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.historySize = 30

	self.Report = Report{
		Run:       &RunReport{},
		Server:    &ServerReport{},
		Purchaser: &PurchaserReport{},
		Publisher: &PublisherReport{},
	}

	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorVerifyDurations)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	return self
}

func (self *Monitor) GetReport() *Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// RecordVerifyDuration feeds the rolling latency window
func (self *Monitor) RecordVerifyDuration(d time.Duration) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.verifyDurations.PushBack(d.Milliseconds())
	if self.verifyDurations.Len() > self.historySize {
		self.verifyDurations.PopFront()
	}
}

func (self *Monitor) monitorVerifyDurations() (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	size := self.verifyDurations.Len()
	if size == 0 {
		return
	}

	var sum int64
	for i := 0; i < size; i++ {
		sum += self.verifyDurations.At(i)
	}

	self.Report.Purchaser.State.AverageVerifyMillis.Store(float64(sum) / float64(size))
	return
}

func (self *Monitor) IsOK() bool {
	return true
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
