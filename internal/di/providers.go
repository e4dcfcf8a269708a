package di

import (
	"context"
	"fmt"
	"time"

	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/domain/repository"
	"ParamSweep/internal/handler/api"
	internalrepo "ParamSweep/internal/repository"
	"ParamSweep/internal/service/ratelimit"
	"ParamSweep/internal/services/strategies"
	"ParamSweep/internal/usecase"
	"ParamSweep/pkg/cache"
	pkgch "ParamSweep/pkg/clickhouse"
	"ParamSweep/pkg/config"
	pkghttp "ParamSweep/pkg/http"
	pkgkafka "ParamSweep/pkg/kafka"
	applogger "ParamSweep/pkg/logger"
	"ParamSweep/pkg/metrics"
	"ParamSweep/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const hubPingInterval = 30 * time.Second

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry shared by the recorder
// and the /metrics endpoint.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideClickHouseClient creates a ClickHouse client. It returns nil when
// no host is configured.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer and attaches the log
// collector to it. It returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegistry(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Log.Collector.Enabled {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.FlushInterval,
			CountThreshold: cfg.Log.Collector.CountThreshold,
			Topic:          cfg.Kafka.Topics.Logs,
			Publisher:      producer,
		})
	}
	return producer, nil
}

// ProvidePublisher publishes records and signals to Kafka, or drops them
// when Kafka is disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topics.Results, cfg.Kafka.Topics.Signals)
}

// ProvideCache creates the Redis cache when enabled and an in-process cache
// otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(1024),
			cache.WithMemoryCleanup(time.Minute),
		), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideParameterStore selects the record backend and puts the read-through
// cache in front of it.
func ProvideParameterStore(
	cfg *config.Config,
	chClient *pkgch.Client,
	c cache.Service,
	l *applogger.Logger,
) (repository.ParameterStore, error) {
	var store repository.ParameterStore
	switch cfg.ParamStore.Backend {
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("param store: clickhouse client not configured")
		}
		store = internalrepo.NewClickHouseParamStore(chClient)
	default:
		fs, err := internalrepo.NewFileParamStore(cfg.Backtest.ResultsDir, l)
		if err != nil {
			return nil, fmt.Errorf("param store: %w", err)
		}
		store = fs
	}
	if cfg.ParamStore.CacheTTL <= 0 {
		return store, nil
	}
	return internalrepo.NewCachedParamStore(store, c, cfg.ParamStore.CacheTTL, l), nil
}

// ProvideLimiter spaces upstream candle requests.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Candles.MinRequestInterval)
}

// ProvideCandleProvider builds the configured exchange client wrapped with
// normalization, metrics and the optional ClickHouse archive.
func ProvideCandleProvider(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	chClient *pkgch.Client,
	m repository.Metrics,
	l *applogger.Logger,
) repository.CandleProvider {
	var upstream repository.CandleProvider
	switch cfg.Candles.Provider {
	case "binance":
		upstream = internalrepo.NewBinanceCandles(cfg.Candles.BaseURL, cfg.Candles.QuoteAsset, cfg.Candles.Timeout, limiter)
	default:
		client := pkghttp.NewClient(
			pkghttp.WithTimeout(cfg.Candles.Timeout),
			pkghttp.WithRetries(cfg.Candles.Retries, cfg.Candles.RetryBackoff),
			pkghttp.WithClientLogger(l),
		)
		upstream = internalrepo.NewHyperliquidCandles(client, cfg.Candles.BaseURL, limiter)
	}

	var archive repository.CandleArchive
	if cfg.Candles.Archive && chClient != nil {
		archive = internalrepo.NewClickHouseCandleArchive(chClient, chClient.Database())
	}
	return internalrepo.NewInstrumentedCandles(upstream, archive, m, l)
}

// ProvideCatalog registers the built-in strategies plus the configured
// overrides.
func ProvideCatalog(cfg *config.Config) *strategies.Catalog {
	defs := make([]strategies.Definition, 0, len(cfg.Backtest.Strategies))
	for id, sc := range cfg.Backtest.Strategies {
		d := strategies.Definition{
			ID:       models.StrategyID(id),
			Family:   models.Family(sc.Family),
			Defaults: models.Params(sc.Defaults),
		}
		if sc.Interval != "" {
			d.Interval = repository.NormalizeInterval(sc.Interval)
		}
		if len(sc.Ranges) > 0 {
			d.Ranges = make(models.Ranges, len(sc.Ranges))
			for name, values := range sc.Ranges {
				d.Ranges[name] = models.Range(values)
			}
		}
		defs = append(defs, d)
	}
	return strategies.NewCatalog(strategies.DefaultRegistry(), defs...)
}

func ProvideOptimizer(
	catalog *strategies.Catalog,
	candles repository.CandleProvider,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Optimizer {
	return usecase.NewOptimizer(catalog, candles, m, l, cfg.Backtest.Workers)
}

func ProvidePersister(store repository.ParameterStore, pub repository.Publisher, m repository.Metrics, l *applogger.Logger) *usecase.Persister {
	return usecase.NewPersister(store, pub, m, l)
}

func ProvideSweepService(opt *usecase.Optimizer, p *usecase.Persister, cfg *config.Config, l *applogger.Logger) *usecase.SweepService {
	return usecase.NewSweepService(opt, p, cfg.Backtest.TimeRanges, l)
}

func ProvideParamsReader(store repository.ParameterStore, catalog *strategies.Catalog, m repository.Metrics, l *applogger.Logger) *usecase.ParamsReader {
	return usecase.NewParamsReader(store, catalog, m, l)
}

// ProvideHub creates the websocket fan-out for live signals.
func ProvideHub(l *applogger.Logger) *api.Hub {
	return api.NewHub(hubPingInterval, l)
}

func ProvideLiveSignals(
	catalog *strategies.Catalog,
	reader *usecase.ParamsReader,
	candles repository.CandleProvider,
	pub repository.Publisher,
	hub *api.Hub,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.LiveSignals {
	return usecase.NewLiveSignals(catalog, reader, candles, pub, hub, m, l)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML. It
// returns nil when the consumer is disabled.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerRegistry(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaSweepHandler handles sweep requests arriving on Kafka.
func ProvideKafkaSweepHandler(cfg *config.Config, sweeps *usecase.SweepService, m repository.Metrics, l *applogger.Logger) *usecase.KafkaSweepHandler {
	if !cfg.Kafka.Consumer.Enabled {
		return nil
	}
	return usecase.NewKafkaSweepHandler(cfg.Kafka.Topics.SweepRequests, sweeps, m, l)
}

// ProvideHandler creates the HTTP API and registers dependency health checks.
func ProvideHandler(
	catalog *strategies.Catalog,
	sweeps *usecase.SweepService,
	reader *usecase.ParamsReader,
	live *usecase.LiveSignals,
	hub *api.Hub,
	chClient *pkgch.Client,
	c cache.Service,
	l *applogger.Logger,
) *api.Handler {
	h := api.NewHandler(catalog, sweeps, reader, live, hub, l)
	if chClient != nil {
		h.AddHealthCheck("clickhouse", chClient.Health)
	}
	if c != nil {
		h.AddHealthCheck("cache", c.Ping)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.Handler,
	hub *api.Hub,
	live *usecase.LiveSignals,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSweepHandler,
	pub repository.Publisher,
	c cache.Service,
	chClient *pkgch.Client,
	reg *prometheus.Registry,
) *server.App {
	return server.New(cfg, l, handler, hub, live, consumer, kh, pub, c, chClient, reg)
}

// Toolkit is the dependency set of the batch optimizer command.
type Toolkit struct {
	Logger    *applogger.Logger
	Catalog   *strategies.Catalog
	Sweeps    *usecase.SweepService
	Publisher repository.Publisher
	Cache     cache.Service
	CH        *pkgch.Client
}

// Close releases the toolkit's clients.
func (t *Toolkit) Close() {
	if err := t.Publisher.Close(); err != nil {
		t.Logger.Warn("publisher close error", applogger.Error(err))
	}
	if err := t.Cache.Close(); err != nil {
		t.Logger.Warn("cache close error", applogger.Error(err))
	}
	if t.CH != nil {
		if err := t.CH.Close(); err != nil {
			t.Logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
}

func ProvideToolkit(
	l *applogger.Logger,
	catalog *strategies.Catalog,
	sweeps *usecase.SweepService,
	pub repository.Publisher,
	c cache.Service,
	chClient *pkgch.Client,
) *Toolkit {
	return &Toolkit{Logger: l, Catalog: catalog, Sweeps: sweeps, Publisher: pub, Cache: c, CH: chClient}
}
