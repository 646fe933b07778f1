// Package app is the composition root for the orchestrator process: it
// builds every dependency named in spec §5/§6 and wires graceful shutdown,
// adapted from the teacher's services/order/internal/app/app.go Build/Run
// shape and generalized from one gRPC+Postgres backend to the full
// store+bus+RPC+producer stack.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/config"
	"github.com/synkro/logistics-core/internal/eventbus/amqp"
	"github.com/synkro/logistics-core/internal/inventoryrpc"
	"github.com/synkro/logistics-core/internal/orchestrator"
	"github.com/synkro/logistics-core/internal/platform/logging"
	"github.com/synkro/logistics-core/internal/platform/otelinit"
	"github.com/synkro/logistics-core/internal/platform/shutdown"
	"github.com/synkro/logistics-core/internal/producer"
	"github.com/synkro/logistics-core/internal/store/postgres"
)

// App holds every built dependency of the orchestrator process and drives
// its lifecycle.
type App struct {
	logger      *zap.Logger
	shutdownMgr *shutdown.Manager
	producer    *producer.Producer
	wg          sync.WaitGroup
}

// Build constructs the full dependency graph: logger, tracing, Postgres
// pool, AMQP connection/publisher, inventory RPC client, orchestrator, and
// (if enabled) the synthetic order producer. Every opened resource is
// registered with the shutdown manager in acquisition order, so shutdown
// runs in reverse (spec §5 "Graceful shutdown").
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{
		ServiceName: "orchestrator",
		Env:         cfg.Env,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("building orchestrator process")

	shutdownMgr := shutdown.New(cfg.ShutdownTimeout, logger)

	otelShutdown, err := otelinit.Init(ctx, otelinit.Config{
		Enabled:       cfg.Otel.Enabled,
		OTLPEndpoint:  cfg.Otel.Endpoint,
		SamplingRatio: cfg.Otel.SamplingRatio,
		ServiceName:   "orchestrator",
		Env:           cfg.Env,
	})
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("otel", otelShutdown)

	logger.Info("connecting to postgres")
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("postgres_pool", shutdown.ClosePool(pool))
	repo := postgres.NewRepository(pool)

	logger.Info("connecting to amqp broker", zap.String("exchange", cfg.Bus.Exchange))
	conn := amqp.NewConnectionManager(cfg.Bus.URL, cfg.Bus.RetryCount, logger)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	shutdownMgr.Add("amqp_connection", func(context.Context) error { return conn.Close() })

	publisher, err := amqp.NewPublisher(ctx, conn, cfg.Bus.Exchange, logger)
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("amqp_publisher", func(context.Context) error { return publisher.Close() })

	logger.Info("dialing inventory rpc service", zap.String("endpoint", cfg.Rpc.InventoryEndpoint))
	rpcClient, err := inventoryrpc.Dial(ctx, cfg.Rpc.InventoryEndpoint)
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("inventory_rpc_conn", func(context.Context) error { return rpcClient.Close() })

	orch := orchestrator.New(repo, repo, repo, rpcClient, publisher, logger)

	var prod *producer.Producer
	if cfg.Producer.Enabled {
		prod = producer.New(cfg.Producer, orch, repo, repo, logger)
		if err := prod.Start(); err != nil {
			return nil, err
		}
		shutdownMgr.Add("producer", prod.Stop)
	}

	return &App{logger: logger, shutdownMgr: shutdownMgr, producer: prod}, nil
}

// Run blocks until a termination signal arrives, then runs the registered
// shutdown sequence in reverse acquisition order: stop the synthetic
// producer (if started), close the inventory RPC connection, the AMQP
// publisher and connection, the Postgres pool, and finally flush tracing.
func (a *App) Run() error {
	defer logging.Sync(a.logger)
	a.logger.Info("orchestrator process running")
	a.shutdownMgr.Wait()
	a.wg.Wait()
	a.logger.Info("orchestrator process stopped")
	return nil
}
