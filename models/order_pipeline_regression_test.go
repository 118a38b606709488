package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func TestOrderPipeline_CreateSummaryArchive(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	customer, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Asha",
		Email: "asha@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}

	newOrder := &models.NewOrder{
		CustomerId: customer.ID,
		Items: []*models.NewOrderItem{
			{Name: "Burger", Size: models.ItemSizeFull, Quantity: 2, Price: decimal.RequireFromString("150")},
			{Name: "Fries", Size: models.ItemSizeHalf, Quantity: 1, Price: decimal.RequireFromString("50")},
		},
	}
	first, err := models.CreateOrder(ctx, newOrder)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if !first.TotalAmount.Equal(decimal.RequireFromString("350")) {
		t.Fatalf("expected total 350, got %s", first.TotalAmount)
	}

	today := first.Date
	summary, err := models.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if summary.TotalOrders != 1 {
		t.Errorf("expected 1 order, got %d", summary.TotalOrders)
	}
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("350")) {
		t.Errorf("expected revenue 350, got %s", summary.TotalRevenue)
	}

	// Reading the summary must not mutate anything.
	again, err := models.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary (second read): %v", err)
	}
	if again.TotalOrders != 1 || !again.TotalRevenue.Equal(summary.TotalRevenue) {
		t.Errorf("summary changed between reads: %+v vs %+v", summary, again)
	}

	if _, err := models.CreateOrder(ctx, newOrder); err != nil {
		t.Fatalf("CreateOrder (second): %v", err)
	}

	summary, err = models.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if summary.TotalOrders != 2 {
		t.Errorf("expected 2 orders, got %d", summary.TotalOrders)
	}
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("700")) {
		t.Errorf("expected revenue 700, got %s", summary.TotalRevenue)
	}
	burger := findTally(summary.Products, "Burger", models.ItemSizeFull)
	if burger == nil || burger.Quantity != 4 {
		t.Errorf("expected Burger full qty 4, got %+v", summary.Products)
	}

	// Archiving removes the order but leaves the rollup alone.
	if _, err := models.ArchiveOrder(ctx, first.ID); err != nil {
		t.Fatalf("ArchiveOrder: %v", err)
	}
	if _, err := models.GetOrder(ctx, first.ID); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected archived order to be gone, got %v", err)
	}

	summary, err = models.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary after archive: %v", err)
	}
	if summary.TotalOrders != 2 {
		t.Errorf("archiving must not shrink the summary: got %d orders", summary.TotalOrders)
	}
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("700")) {
		t.Errorf("archiving must not shrink revenue: got %s", summary.TotalRevenue)
	}

	// A day with no data is a clean not-found.
	if _, err := models.GetDailySummary(ctx, "1999-01-01"); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound for an empty day, got %v", err)
	}
}

func TestOrderPipeline_ConcurrentSameDateOrders(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	customer, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Meena",
		Email: "meena@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}

	// The rollup is a single additive upsert, so same-date writers must not
	// lose increments to each other.
	const workers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := models.CreateOrder(ctx, &models.NewOrder{
				CustomerId: customer.ID,
				Items: []*models.NewOrderItem{
					{Name: "Burger", Size: models.ItemSizeFull, Quantity: 2, Price: decimal.RequireFromString("150")},
				},
			})
			if err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent CreateOrder: %v", err)
	}

	today := utils.LocalDateString(time.Now())
	summary, err := models.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if summary.TotalOrders != workers {
		t.Errorf("expected %d orders, got %d", workers, summary.TotalOrders)
	}
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("2400")) {
		t.Errorf("expected revenue 2400, got %s", summary.TotalRevenue)
	}
	burger := findTally(summary.Products, "Burger", models.ItemSizeFull)
	if burger == nil || burger.Quantity != workers*2 {
		t.Errorf("expected Burger qty %d, got %+v", workers*2, summary.Products)
	}
}

func TestOrderPipeline_ReconcileUnaggregated(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	customer, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Ravi",
		Email: "ravi@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}

	// Simulate a crashed write path: the order row exists but its rollup
	// contribution was never recorded.
	date := utils.LocalDateString(time.Now())
	stranded := models.Order{
		CustomerId:   customer.ID,
		Date:         date,
		TotalAmount:  decimal.RequireFromString("200"),
		IsAggregated: utils.NewFalse(),
		Items: []*models.OrderItem{
			{Name: "Dosa", Size: models.ItemSizeFull, Quantity: 2, Price: decimal.RequireFromString("100")},
		},
	}
	if err := config.GetDB().WithContext(ctx).Create(&stranded).Error; err != nil {
		t.Fatalf("create stranded order: %v", err)
	}

	// The summary already folds the stranded order in on read.
	before, err := models.GetDailySummary(ctx, date)
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if before.TotalOrders != 1 || !before.TotalRevenue.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected stranded order in summary, got %+v", before)
	}

	repaired, err := models.ReconcileUnaggregatedOrders(ctx, date)
	if err != nil {
		t.Fatalf("ReconcileUnaggregatedOrders: %v", err)
	}
	if len(repaired) != 1 || repaired[0] != stranded.ID {
		t.Fatalf("expected order %d repaired, got %v", stranded.ID, repaired)
	}

	// Totals are unchanged after repair: no double count.
	after, err := models.GetDailySummary(ctx, date)
	if err != nil {
		t.Fatalf("GetDailySummary after reconcile: %v", err)
	}
	if after.TotalOrders != 1 || !after.TotalRevenue.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("reconcile double counted: %+v", after)
	}
	dosa := findTally(after.Products, "Dosa", models.ItemSizeFull)
	if dosa == nil || dosa.Quantity != 2 {
		t.Fatalf("expected Dosa qty 2 after reconcile, got %+v", after.Products)
	}

	// Running it again is a no-op.
	repaired, err = models.ReconcileUnaggregatedOrders(ctx, date)
	if err != nil {
		t.Fatalf("ReconcileUnaggregatedOrders (second run): %v", err)
	}
	if len(repaired) != 0 {
		t.Fatalf("expected nothing left to repair, got %v", repaired)
	}
}

func findTally(tallies []models.ProductTally, name string, size models.ItemSize) *models.ProductTally {
	for i := range tallies {
		if tallies[i].Name == name && tallies[i].Size == size {
			return &tallies[i]
		}
	}
	return nil
}

func setupIntegrationEnv(t *testing.T) context.Context {
	t.Helper()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "vsfastfood_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	return ctx
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("vsf-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("vsf-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=vsfastfood_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
