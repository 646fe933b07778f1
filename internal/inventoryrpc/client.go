package inventoryrpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/synkro/logistics-core/internal/platform/tracing"
)

// Service method names on the remote inventory service, invoked directly
// since no generated client stub exists in the pack (see types.go).
const (
	methodCheckAndReserveStock = "/inventory.v1.InventoryService/CheckAndReserveStock"
	methodReleaseReservedStock = "/inventory.v1.InventoryService/ReleaseReservedStock"
	methodCommitReservation    = "/inventory.v1.InventoryService/CommitReservation"
	methodGetInventoryLevels   = "/inventory.v1.InventoryService/GetInventoryLevels"
)

// requestTimeout and connectTimeout are the 10s/5s values spec §4.C fixes;
// keepaliveTime is the 30s TCP keepalive on the underlying transport.
const (
	requestTimeout = 10 * time.Second
	connectTimeout = 5 * time.Second
	keepaliveTime  = 30 * time.Second
)

// Client is the inventory RPC client. It is cheap to clone — callers hold
// the single process-wide instance and pass it by value or pointer rather
// than guarding it with a mutex (spec §4.C "cheap to clone", §5 "Shared
// state").
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the remote inventory service with the fixed connect
// timeout and keepalive of spec §4.C, grounded in original_source's
// Endpoint::timeout/connect_timeout/tcp_keepalive chain.
func Dial(ctx context.Context, target string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                keepaliveTime,
			Timeout:             requestTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodecName)),
		grpc.WithChainUnaryInterceptor(tracing.UnaryClientInterceptor("inventoryrpc")),
	)
	if err != nil {
		return nil, fmt.Errorf("inventoryrpc: dial %s: %w", target, err)
	}

	// grpc.NewClient defers the actual connection attempt to first use;
	// start one eagerly and wait up to the connect timeout for READY. If the
	// endpoint is not ready by then, Dial still returns the client without
	// an error; the transport failure surfaces on the first call.
	conn.Connect()
	waitCtx, waitCancel := context.WithTimeout(dialCtx, connectTimeout)
	defer waitCancel()
	for {
		state := conn.GetState()
		if state.String() == "READY" {
			break
		}
		if !conn.WaitForStateChange(waitCtx, state) {
			break
		}
	}

	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// CheckAndReserveStock pre-reserves stock for an order's line items (spec
// §4.C, §4.D step 1). Any non-success transport result is surfaced to the
// caller; it is never retried inside the client.
func (c *Client) CheckAndReserveStock(ctx context.Context, req CheckAndReserveStockRequest) (*CheckAndReserveStockResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp := new(CheckAndReserveStockResponse)
	if err := c.conn.Invoke(ctx, methodCheckAndReserveStock, &req, resp); err != nil {
		return nil, fmt.Errorf("inventoryrpc: check_and_reserve_stock: %w", err)
	}
	return resp, nil
}

// ReleaseReservedStock releases a held reservation, used in cancellation
// compensation (spec §4.D step (e)).
func (c *Client) ReleaseReservedStock(ctx context.Context, req ReleaseStockRequest) (*ReleaseStockResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp := new(ReleaseStockResponse)
	if err := c.conn.Invoke(ctx, methodReleaseReservedStock, &req, resp); err != nil {
		return nil, fmt.Errorf("inventoryrpc: release_reserved_stock: %w", err)
	}
	return resp, nil
}

// CommitReservation finalizes a reservation after the local DB transaction
// commits (spec §9 "Open question — reservation → commit"). Failure is
// logged non-fatally by the caller; never fails the order.
func (c *Client) CommitReservation(ctx context.Context, req CommitReservationRequest) (*CommitReservationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp := new(CommitReservationResponse)
	if err := c.conn.Invoke(ctx, methodCommitReservation, &req, resp); err != nil {
		return nil, fmt.Errorf("inventoryrpc: commit_reservation: %w", err)
	}
	return resp, nil
}

// GetInventoryLevels queries remote stock levels (spec §4.C).
func (c *Client) GetInventoryLevels(ctx context.Context, req InventoryLevelsRequest) (*InventoryLevelsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp := new(InventoryLevelsResponse)
	if err := c.conn.Invoke(ctx, methodGetInventoryLevels, &req, resp); err != nil {
		return nil, fmt.Errorf("inventoryrpc: get_inventory_levels: %w", err)
	}
	return resp, nil
}
