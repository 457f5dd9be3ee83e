package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/nimbleretail/poolalloc/internal/config"
	"github.com/nimbleretail/poolalloc/internal/domain"
	"github.com/nimbleretail/poolalloc/internal/engine"
	"github.com/nimbleretail/poolalloc/internal/ingest"
	"github.com/nimbleretail/poolalloc/internal/storage"
	"github.com/nimbleretail/poolalloc/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "allocate",
		Usage: "Run one allocation cycle and write the plan to CSV",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Fetch the extracts, compute the plan, write CSV output",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "sales-url",
						Usage:   "Sales extract URI (http(s) or s3://bucket/key)",
						EnvVars: []string{"SOURCE_SALES_URL"},
					},
					&cli.StringFlag{
						Name:    "location-stock-url",
						Usage:   "Location stock extract URI",
						EnvVars: []string{"SOURCE_LOCATION_STOCK_URL"},
					},
					&cli.StringFlag{
						Name:    "pool-stock-url",
						Usage:   "Pool stock extract URI",
						EnvVars: []string{"SOURCE_POOL_STOCK_URL"},
					},
					&cli.StringFlag{
						Name:    "style-remarks-url",
						Usage:   "Style remarks extract URI",
						EnvVars: []string{"SOURCE_STYLE_REMARKS_URL"},
					},
					&cli.StringFlag{
						Name:    "out-dir",
						Usage:   "Directory for the output CSV files",
						Value:   "./out",
						EnvVars: []string{"ALLOCATE_OUT_DIR"},
					},
					&cli.Float64Flag{
						Name:    "allocation-ratio",
						Usage:   "Fraction of pool stock released per cycle",
						Value:   0.40,
						EnvVars: []string{"ALLOCATION_RATIO"},
					},
					&cli.IntFlag{
						Name:    "target-stock-days",
						Usage:   "Days of cover a location is replenished up to",
						Value:   45,
						EnvVars: []string{"TARGET_STOCK_DAYS"},
					},
					&cli.IntFlag{
						Name:    "recall-threshold-days",
						Usage:   "Days of cover above which stock is recalled",
						Value:   60,
						EnvVars: []string{"RECALL_THRESHOLD_DAYS"},
					},
				},
				Action: runAllocation,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAllocation(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	var store storage.ObjectStore
	if cfg.ObjectStore.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.ObjectStore.Endpoint,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			UseSSL:    cfg.ObjectStore.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		store = minioStore
	}

	fetcher := ingest.NewFetcher(ingest.Sources{
		Sales:         c.String("sales-url"),
		LocationStock: c.String("location-stock-url"),
		PoolStock:     c.String("pool-stock-url"),
		StyleRemarks:  c.String("style-remarks-url"),
	}, store, time.Duration(cfg.Sources.TimeoutSeconds)*time.Second)

	extracts, err := fetcher.FetchAll(c.Context)
	if err != nil {
		return fmt.Errorf("fetch extracts: %w", err)
	}

	eng := engine.New(engine.Config{
		AllocationRatio:     c.Float64("allocation-ratio"),
		TargetStockDays:     c.Int("target-stock-days"),
		RecallThresholdDays: c.Int("recall-threshold-days"),
		ClosedRemark:        cfg.Engine.ClosedRemark,
		FallbackLocations:   cfg.Engine.FallbackLocations,
	})
	plan := eng.Run(extracts)

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeRowsCSV(filepath.Join(outDir, "channel_rows.csv"), plan.ChannelRows); err != nil {
		return err
	}
	if err := writeRowsCSV(filepath.Join(outDir, "seller_rows.csv"), plan.SellerRows); err != nil {
		return err
	}
	if err := writePoolUsageCSV(filepath.Join(outDir, "pool_usage.csv"), plan.PoolUsage); err != nil {
		return err
	}

	log.Printf("Plan written to %s (%d channel rows, %d seller rows, %d unresolved)",
		outDir, len(plan.ChannelRows), len(plan.SellerRows), plan.UnresolvedDemand)
	return nil
}

func writeRowsCSV(path string, rows []domain.FinalRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"Channel", "Location", "Style", "SKU", "Pool SKU",
		"Sale Qty", "DRR", "Combined Share", "Actual Demand",
		"Location Stock", "Stock Cover", "Shipment Qty",
		"Actual Shipment Qty", "Recall Qty", "Action", "Remark",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for _, r := range rows {
		record := []string{
			r.Channel,
			r.LocationID,
			r.Style,
			r.SKU,
			r.PoolSKU,
			strconv.Itoa(r.SaleQty),
			strconv.FormatFloat(r.DailyRunRate, 'f', 4, 64),
			strconv.FormatFloat(r.CombinedShare, 'f', 6, 64),
			strconv.Itoa(r.ActualDemand),
			strconv.Itoa(r.LocationStock),
			formatCover(r.StockCover),
			strconv.Itoa(r.ShipmentQty),
			strconv.Itoa(r.ActualShipmentQty),
			strconv.Itoa(r.RecallQty),
			string(r.Action),
			r.Remark,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writePoolUsageCSV(path string, usage []domain.PoolUsage) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"Pool SKU", "Pool Stock", "Allocatable", "Granted", "Remaining"}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for _, u := range usage {
		record := []string{
			u.PoolSKU,
			strconv.Itoa(u.PoolStock),
			strconv.Itoa(u.Allocatable),
			strconv.Itoa(u.Granted),
			strconv.Itoa(u.Remaining),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatCover(cover domain.StockCoverDays) string {
	if cover.Unbounded() {
		return ""
	}
	return strconv.FormatFloat(math.Round(float64(cover)*100)/100, 'f', 2, 64)
}
