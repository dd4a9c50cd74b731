package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики (драйвер хранилища postgres)
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш каталога
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша каталога
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (storefront)
// =============================================================================

// --- Cart ---

// CartMutations - операции над корзиной
var CartMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	},
	[]string{"operation"}, // add, remove, adjust, clear
)

// CartPersistFailures - корзина изменена в памяти, но не сохранена в хранилище
var CartPersistFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of cart write-through failures",
	},
	[]string{"driver"},
)

// CartCorruptRecords - повреждённые записи корзины, прочитанные как пустая корзина
var CartCorruptRecords = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "cart_corrupt_records_total",
		Help: "Total number of unreadable persisted cart records",
	},
)

// ActiveSessions - количество корзин в памяти процесса
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "cart_active_sessions",
		Help: "Number of carts held in memory",
	},
)

// --- Checkout ---

var CheckoutSubmissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Total number of checkout form submissions",
	},
	[]string{"result"}, // valid, invalid, empty_cart
)

var OrdersConfirmed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Total number of confirmed orders",
	},
	[]string{"payment_method"},
)

// OrdersConfirmedAmount - сумма подтверждённых заказов
var OrdersConfirmedAmount = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_confirmed_amount_total",
		Help: "Total amount of all confirmed orders",
	},
)

// --- Catalog ---

var CatalogFetchErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_fetch_errors_total",
		Help: "Total number of failed catalog requests",
	},
	[]string{"endpoint"},
)

var CatalogFetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of remote catalog requests",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"endpoint"},
)

// CatalogWarmups - прогрев кеша каталога по расписанию
var CatalogWarmups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_warmups_total",
		Help: "Total number of scheduled catalog cache warmups",
	},
	[]string{"status"}, // success, failed
)
