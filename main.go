package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/fba/internal/server"
	"github.com/tournevent/fba/pkg/buyer"
	"github.com/tournevent/fba/pkg/order"
	"github.com/tournevent/fba/pkg/shipping"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fba",
	Short:   "FBA shipping - submit orders for fulfillment and return tracking numbers",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Ship one or more orders to a buyer and print tracking numbers",
	RunE:  runShip,
}

var (
	shipOrderIDs []int
	shipBuyerDoc string
)

func init() {
	shipCmd.Flags().IntSliceVar(&shipOrderIDs, "order", nil, "order id to ship (repeatable)")
	shipCmd.Flags().StringVar(&shipBuyerDoc, "buyer", "", "path to the buyer JSON document")
	shipCmd.MarkFlagRequired("order")
	shipCmd.MarkFlagRequired("buyer")

	rootCmd.AddCommand(serveCmd, shipCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	app.logger.Info("Starting FBA shipping service",
		zap.Int("port", app.cfg.Port),
		zap.String("version", app.cfg.Version),
		zap.String("client", app.client.Name()),
	)

	srv := server.New(server.Config{Port: app.cfg.Port, ClientName: app.client.Name()},
		app.orchestrator, app.orders, app.logger, nil)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runShip(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	raw, err := buyer.LoadFile(nil, shipBuyerDoc)
	if err != nil {
		return err
	}

	shipments := make([]shipping.Shipment, len(shipOrderIDs))
	for i, id := range shipOrderIDs {
		// Records are per shipment; buyers get their own copy.
		b := make(buyer.Map, len(raw))
		for k, v := range raw {
			b[k] = v
		}
		shipments[i] = shipping.Shipment{Order: order.New(id, app.orders), Buyer: b}
	}

	var failed error
	for _, res := range app.orchestrator.ShipAll(ctx, shipments, app.cfg.ShipConcurrency) {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d\terror: %v\n", res.OrderID, res.Err)
			failed = errors.Join(failed, res.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", res.OrderID, res.TrackingNumber)
	}
	return failed
}
