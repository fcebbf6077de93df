// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordConsumption(quantity int)
	RecordRestock(quantity int)
	RecordHTTPStatus(statusCode int)
	ObserveDebtQuery(d time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	consumptions     prometheus.Counter
	consumedUnits    prometheus.Counter
	restockedUnits   prometheus.Counter
	httpStatus       *prometheus.CounterVec
	debtQueryLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		consumptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nomicho_consumptions_total",
			Help: "消費記録の合計数",
		}),
		consumedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nomicho_consumed_units_total",
			Help: "消費された本数の合計",
		}),
		restockedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nomicho_restocked_units_total",
			Help: "補充された本数の合計",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomicho_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		debtQueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nomicho_debt_query_latency_seconds",
			Help:    "立替金集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.consumptions,
		c.consumedUnits,
		c.restockedUnits,
		c.httpStatus,
		c.debtQueryLatency,
	)

	return c
}

// RecordConsumption は消費記録の作成を記録する。
func (c *Collector) RecordConsumption(quantity int) {
	c.consumptions.Inc()
	c.consumedUnits.Add(float64(quantity))
}

// RecordRestock は在庫の補充を記録する。
func (c *Collector) RecordRestock(quantity int) {
	c.restockedUnits.Add(float64(quantity))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// ObserveDebtQuery は立替金集計の所要時間を記録する。
func (c *Collector) ObserveDebtQuery(d time.Duration) {
	c.debtQueryLatency.Observe(d.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
