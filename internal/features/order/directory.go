package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go-taller/internal/config"
	"go-taller/internal/features/workflow"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// SQLOrderDirectory reads active service orders from the dealer-management
// database. That system is the ground truth for completed-phase ids; this
// side only reads them and appends completions for orders without an
// override.
type SQLOrderDirectory struct {
	dbType string // "postgresql" or "mysql"
	db     *sql.DB
}

// NewOrderDirectory opens the directory connection with lifecycle management.
func NewOrderDirectory(lc fx.Lifecycle, cfg *config.Config) (workflow.OrderDirectory, error) {
	driver := cfg.OrdersDB
	if driver == "postgresql" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, cfg.OrdersDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open order directory connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return &SQLOrderDirectory{dbType: cfg.OrdersDB, db: db}, nil
}

// placeholder renders the n-th bind variable for the configured driver.
func (d *SQLOrderDirectory) placeholder(n int) string {
	if d.dbType == "postgresql" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const orderColumns = "id, code, plate, client_name, vehicle_model, service_category, status, completed_phase_ids"

// Search finds active orders by code, plate or client name.
func (d *SQLOrderDirectory) Search(ctx context.Context, query string) ([]workflow.OrderSummary, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM service_orders
		WHERE code LIKE %s OR plate LIKE %s OR client_name LIKE %s
		ORDER BY code
		LIMIT 50`,
		orderColumns, d.placeholder(1), d.placeholder(2), d.placeholder(3))

	rows, err := d.db.QueryContext(ctx, stmt, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("order directory search failed: %w", err)
	}
	defer rows.Close()

	var orders []workflow.OrderSummary
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// Get fetches a single order, nil when it does not exist.
func (d *SQLOrderDirectory) Get(ctx context.Context, orderID string) (*workflow.OrderSummary, error) {
	stmt := fmt.Sprintf("SELECT %s FROM service_orders WHERE id = %s", orderColumns, d.placeholder(1))

	row := d.db.QueryRowContext(ctx, stmt, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("order directory lookup failed: %w", err)
	}
	return order, nil
}

// AppendCompletedPhase records a phase completion for an order that runs on
// the plain template (no override of its own).
func (d *SQLOrderDirectory) AppendCompletedPhase(ctx context.Context, orderID string, phaseID string) error {
	order, err := d.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return workflow.ErrOrderNotFound
	}

	for _, id := range order.CompletedPhaseIDs {
		if id == phaseID {
			return nil // already recorded
		}
	}
	ids := append(order.CompletedPhaseIDs, phaseID)

	stmt := fmt.Sprintf("UPDATE service_orders SET completed_phase_ids = %s WHERE id = %s",
		d.placeholder(1), d.placeholder(2))
	if _, err := d.db.ExecContext(ctx, stmt, joinPhaseIDs(ids), orderID); err != nil {
		return fmt.Errorf("recording completed phase failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*workflow.OrderSummary, error) {
	var o workflow.OrderSummary
	var category, completed string
	if err := row.Scan(&o.ID, &o.Code, &o.Plate, &o.ClientName, &o.VehicleModel, &category, &o.Status, &completed); err != nil {
		return nil, err
	}
	o.ServiceCategory = workflow.ServiceCategory(category)
	o.CompletedPhaseIDs = splitPhaseIDs(completed)
	return &o, nil
}

// completed_phase_ids is a comma-separated text column so the same schema
// works on both supported drivers.

func splitPhaseIDs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func joinPhaseIDs(ids []string) string {
	return strings.Join(ids, ",")
}
