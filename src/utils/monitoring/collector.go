package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	RequestsServed      *prometheus.Desc
	PurchasesCompleted  *prometheus.Desc
	PaymentsRejected    *prometheus.Desc
	TokensIssued        *prometheus.Desc
	AverageVerifyMillis *prometheus.Desc
	Unauthorized        *prometheus.Desc
	BadRequest          *prometheus.Desc
	DbError             *prometheus.Desc
	VerificationError   *prometheus.Desc
	PayoutError         *prometheus.Desc
	IssueError          *prometheus.Desc
	DbAfterLedgerError  *prometheus.Desc
	PublishError        *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "marketplace",
	}

	return &Collector{
		RequestsServed:      prometheus.NewDesc("requests_served", "", nil, labels),
		PurchasesCompleted:  prometheus.NewDesc("purchases_completed", "", nil, labels),
		PaymentsRejected:    prometheus.NewDesc("payments_rejected", "", nil, labels),
		TokensIssued:        prometheus.NewDesc("tokens_issued", "", nil, labels),
		AverageVerifyMillis: prometheus.NewDesc("average_verify_millis", "", nil, labels),
		Unauthorized:        prometheus.NewDesc("unauthorized", "", nil, labels),
		BadRequest:          prometheus.NewDesc("bad_request", "", nil, labels),
		DbError:             prometheus.NewDesc("db_error", "", nil, labels),
		VerificationError:   prometheus.NewDesc("verification_error", "", nil, labels),
		PayoutError:         prometheus.NewDesc("payout_error", "", nil, labels),
		IssueError:          prometheus.NewDesc("issue_error", "", nil, labels),
		DbAfterLedgerError:  prometheus.NewDesc("db_after_ledger_error", "", nil, labels),
		PublishError:        prometheus.NewDesc("publish_error", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.RequestsServed
	ch <- self.PurchasesCompleted
	ch <- self.PaymentsRejected
	ch <- self.TokensIssued
	ch <- self.AverageVerifyMillis

	// Errors
	ch <- self.Unauthorized
	ch <- self.BadRequest
	ch <- self.DbError
	ch <- self.VerificationError
	ch <- self.PayoutError
	ch <- self.IssueError
	ch <- self.DbAfterLedgerError
	ch <- self.PublishError
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.RequestsServed, prometheus.CounterValue, float64(self.monitor.Report.Server.State.RequestsServed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PurchasesCompleted, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.State.PurchasesCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.PaymentsRejected, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.State.PaymentsRejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.TokensIssued, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.State.TokensIssued.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageVerifyMillis, prometheus.GaugeValue, self.monitor.Report.Purchaser.State.AverageVerifyMillis.Load())
	ch <- prometheus.MustNewConstMetric(self.Unauthorized, prometheus.CounterValue, float64(self.monitor.Report.Server.Errors.Unauthorized.Load()))
	ch <- prometheus.MustNewConstMetric(self.BadRequest, prometheus.CounterValue, float64(self.monitor.Report.Server.Errors.BadRequest.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(self.monitor.Report.Server.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.VerificationError, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.Errors.VerificationError.Load()))
	ch <- prometheus.MustNewConstMetric(self.PayoutError, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.Errors.PayoutError.Load()))
	ch <- prometheus.MustNewConstMetric(self.IssueError, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.Errors.IssueError.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbAfterLedgerError, prometheus.CounterValue, float64(self.monitor.Report.Purchaser.Errors.DbAfterLedgerError.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.Publish.Load()))
}
