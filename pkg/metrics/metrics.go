// Package metrics 提供 Prometheus helper，包含 HTTP/数据库指标与电商业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	OrdersTotal          prometheus.Counter
	OrderAmountTotal     prometheus.Counter
	StockRejectionsTotal prometheus.Counter
	UsersRegisteredTotal prometheus.Counter
	ProductsTotal        prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		OrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Total orders placed",
		}),
		OrderAmountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "order_amount_total",
			Help:      "Accumulated order amount",
		}),
		StockRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "stock_rejections_total",
			Help:      "Orders rejected for insufficient stock",
		}),
		UsersRegisteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "users_registered_total",
			Help:      "Total registered users",
		}),
		ProductsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "products_total",
			Help:      "Number of products in the catalog",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.OrdersTotal,
		m.OrderAmountTotal,
		m.StockRejectionsTotal,
		m.UsersRegisteredTotal,
		m.ProductsTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// RecordDBQuery 记录一次数据库查询
func (m *Metrics) RecordDBQuery(duration float64) {
	m.DBQueriesTotal.Inc()
	m.DBQueryDuration.Observe(duration)
}

// SetProductsTotal 刷新目录商品总数
func (m *Metrics) SetProductsTotal(count float64) {
	m.ProductsTotal.Set(count)
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.Observe(duration)
}

// RecordOrder 记录成功下单
func (m *Metrics) RecordOrder(amount float64) {
	m.OrdersTotal.Inc()
	m.OrderAmountTotal.Add(amount)
}

// RecordStockRejection 记录库存不足拒单
func (m *Metrics) RecordStockRejection() {
	m.StockRejectionsTotal.Inc()
}

// RecordUserRegistered 记录用户注册
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegisteredTotal.Inc()
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
