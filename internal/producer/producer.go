package producer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/config"
	"github.com/synkro/logistics-core/internal/store"
)

// Producer schedules synthetic order generation on a fixed interval,
// skipping a tick entirely when no customers or inventory exist yet (spec
// §4.E "Skip conditions"). It is a thin adaptation of the teacher's
// cron.New(cron.WithSeconds())/AddFunc/Start/Stop job lifecycle
// (alkbt-delivery's internal/jobs/courier_assignment_job.go), scheduled at
// second granularity so the configured interval_seconds need not be a whole
// minute.
type Producer struct {
	cfg       config.ProducerConfig
	orders    OrderCreator
	customers CustomerSource
	inventory InventorySource
	logger    *zap.Logger

	cron *cron.Cron
}

func New(cfg config.ProducerConfig, orders OrderCreator, customers CustomerSource, inventory InventorySource, logger *zap.Logger) *Producer {
	return &Producer{
		cfg:       cfg,
		orders:    orders,
		customers: customers,
		inventory: inventory,
		logger:    logger.With(zap.String("component", "producer")),
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start schedules the generation tick every IntervalSeconds. A no-op, logged
// at info level, when the producer is disabled (spec §4.E "enabled=false by
// default").
func (p *Producer) Start() error {
	if !p.cfg.Enabled {
		p.logger.Info("order producer disabled, not starting")
		return nil
	}

	spec := fmt.Sprintf("@every %ds", p.cfg.IntervalSeconds)
	if _, err := p.cron.AddFunc(spec, p.tick); err != nil {
		return fmt.Errorf("producer: schedule tick: %w", err)
	}

	p.cron.Start()
	p.logger.Info("order producer started", zap.Int("interval_seconds", p.cfg.IntervalSeconds))
	return nil
}

// Stop cancels the schedule and waits for any in-flight tick to finish.
func (p *Producer) Stop(ctx context.Context) error {
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	p.logger.Info("order producer stopped")
	return nil
}

// tick runs one generation round (spec §4.E "Generation round"): pick the
// order count, skip if there are no customers or no inventory, then attempt
// to create each order independently, logging and continuing on failure.
func (p *Producer) tick() {
	ctx := context.Background()

	numOrders := p.cfg.MinOrdersPerInterval
	if p.cfg.MaxOrdersPerInterval > p.cfg.MinOrdersPerInterval {
		numOrders = p.cfg.MinOrdersPerInterval + rand.Intn(p.cfg.MaxOrdersPerInterval-p.cfg.MinOrdersPerInterval+1)
	}

	hasCustomers, err := p.customers.AnyExists(ctx)
	if err != nil || !hasCustomers {
		p.logger.Warn("no customers available, skipping order generation")
		return
	}

	hasInventory := p.anyInventory(ctx)
	if !hasInventory {
		p.logger.Warn("no inventory items available, skipping order generation")
		return
	}

	p.logger.Info("generating orders", zap.Int("num_orders", numOrders))

	succeeded := 0
	for i := 0; i < numOrders; i++ {
		dto, err := p.generateOrder(ctx)
		if err != nil {
			p.logger.Error("failed to generate synthetic order", zap.Error(err))
		} else if order, err := p.orders.CreateOrder(ctx, dto); err != nil {
			p.logger.Error("failed to create synthetic order", zap.Error(err))
		} else {
			p.logger.Info("created synthetic order", zap.String("order_id", order.ID.String()))
			succeeded++
		}

		if numOrders > 1 && p.cfg.RandomizeInterval {
			time.Sleep(time.Duration(100+rand.Intn(900)) * time.Millisecond)
		}
	}

	p.logger.Info("order generation round complete",
		zap.Int("succeeded", succeeded), zap.Int("attempted", numOrders))
}

func (p *Producer) anyInventory(ctx context.Context) bool {
	items, err := p.inventory.ListInventoryItems(ctx, store.Page{Page: 1, Limit: 1})
	if err == nil && len(items) > 0 {
		return true
	}
	item, err := p.inventory.RandomItem(ctx)
	return err == nil && item != nil
}
