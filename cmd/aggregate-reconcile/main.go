// aggregate-reconcile finds open orders whose contribution is missing from
// the daily rollup (is_aggregated = 0) and optionally repairs them.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/aggregate-reconcile [-date YYYY-MM-DD] [-fix]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func main() {
	date := flag.String("date", "", "Optional: reconcile only one date (YYYY-MM-DD). If empty, scans all dates.")
	fix := flag.Bool("fix", false, "Apply missing orders to the daily aggregates (default: report only)")
	flag.Parse()

	if strings.TrimSpace(*date) != "" && !utils.ValidDateString(strings.TrimSpace(*date)) {
		fmt.Fprintln(os.Stderr, "-date must be YYYY-MM-DD")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	ctx = utils.SetUserNameInContext(ctx, "AggregateReconcile")

	orders, err := models.FindUnaggregatedOrders(ctx, strings.TrimSpace(*date))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to scan orders: %v\n", err)
		os.Exit(1)
	}
	if len(orders) == 0 {
		fmt.Println("No unaggregated orders found.")
		return
	}

	for _, order := range orders {
		fmt.Printf("order=%d date=%s total=%s items=%d\n", order.ID, order.Date, order.TotalAmount.String(), len(order.Items))
	}
	fmt.Printf("Found %d unaggregated order(s).\n", len(orders))

	if !*fix {
		fmt.Println("Run again with -fix to fold them into the daily aggregates.")
		return
	}

	repaired, err := models.ReconcileUnaggregatedOrders(ctx, strings.TrimSpace(*date))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconcile failed after %d repair(s): %v\n", len(repaired), err)
		os.Exit(1)
	}
	fmt.Printf("Repaired %d order(s): %v\n", len(repaired), repaired)
}
