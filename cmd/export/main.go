// backend-go/cmd/export/main.go
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abc-shortship/backend-go/internal/config"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/service"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "export",
		Usage: "Export the fused inventory analysis as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to stdout)",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Restrict to one location code",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "View mode: all, order or returnable",
				Value: domain.ModeAll,
			},
			&cli.IntFlag{
				Name:  "lead-time-days",
				Usage: "Lead time override in days",
			},
			&cli.IntFlag{
				Name:  "safety-days",
				Usage: "Safety stock override in days",
			},
			&cli.IntFlag{
				Name:  "cover-days",
				Usage: "Order coverage override in days",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Fetch timeout in seconds",
				Value: 120,
			},
		},
		Action: runExport,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runExport(c *cli.Context) error {
	cfg := config.Load()

	client := source.NewClient(cfg.Sources)
	svc := service.NewInventoryService(client, nil, domain.ReplenishParams{
		LeadTimeDays: cfg.Replenish.LeadTimeDays,
		SafetyDays:   cfg.Replenish.SafetyDays,
		CoverDays:    cfg.Replenish.CoverDays,
	})

	ctx, cancel := context.WithTimeout(c.Context, time.Duration(c.Int("timeout"))*time.Second)
	defer cancel()

	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	filter := domain.RecordFilter{
		Location: c.String("location"),
		Mode:     c.String("mode"),
		Params: domain.ReplenishParams{
			LeadTimeDays: c.Int("lead-time-days"),
			SafetyDays:   c.Int("safety-days"),
			CoverDays:    c.Int("cover-days"),
		},
	}

	headers, rows, err := svc.Export(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to build export: %w", err)
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	// UTF-8 BOM so spreadsheet tools pick the right encoding.
	if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	w := csv.NewWriter(out)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	log.Printf("exported %d rows", len(rows))
	return nil
}
