package shipping

import (
	"context"

	"github.com/tournevent/fba/pkg/buyer"
	"github.com/tournevent/fba/pkg/order"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// Shipment pairs an order with its buyer. Each shipment must own its
// records; they are not shared between goroutines.
type Shipment struct {
	Order order.Record
	Buyer buyer.Record
}

// ShipmentResult is the outcome of one shipment in a batch.
type ShipmentResult struct {
	OrderID        int
	TrackingNumber string
	Err            error
}

// ShipAll ships every shipment with at most limit concurrent calls.
// Failures are reported per shipment and never abort the batch. Results
// keep the order of shipments.
func (o *Orchestrator) ShipAll(ctx context.Context, shipments []Shipment, limit int) []ShipmentResult {
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}

	results := make([]ShipmentResult, len(shipments))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, s := range shipments {
		g.Go(func() error {
			tracking, err := o.Ship(ctx, s.Order, s.Buyer)
			results[i] = ShipmentResult{
				OrderID:        s.Order.ID(),
				TrackingNumber: tracking,
				Err:            err,
			}
			return nil
		})
	}

	g.Wait()
	return results
}
