// Package metrics reports statement balances to InfluxDB.
package metrics

import (
	"fmt"

	influx "github.com/influxdata/influxdb/client/v2"
	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/config"
	"github.com/cleared-dev/cgdscraper/internal/model"
)

// Sink writes one balance point per finished statement.
type Sink struct {
	client      influx.Client
	database    string
	measurement string
}

// New creates an HTTP influx client for cfg.Endpoint.
func New(cfg config.InfluxConfig, user, password string) (*Sink, error) {
	client, err := influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     cfg.Endpoint,
		Username: user,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating influx client: %w", err)
	}
	return &Sink{client: client, database: cfg.Database, measurement: cfg.Measurement}, nil
}

// Close releases the client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// Write records the closing balance of stmt. Statements without
// transactions have no closing date and are skipped.
func (s *Sink) Write(stmt *model.Statement) error {
	if stmt.Len() == 0 {
		klog.V(2).Infof("No transactions for account %s, skipping balance point", stmt.AccountNumber)
		return nil
	}

	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	pt, err := BalancePoint(s.measurement, stmt)
	if err != nil {
		return err
	}
	bp.AddPoint(pt)

	if err := s.client.Write(bp); err != nil {
		return fmt.Errorf("writing balance to influx: %w", err)
	}
	klog.Infof("Wrote balance %s for account %s", stmt.ClosingBalance.StringFixed(2), stmt.AccountNumber)
	return nil
}

// BalancePoint builds the point for the closing balance of stmt.
func BalancePoint(measurement string, stmt *model.Statement) (*influx.Point, error) {
	tags := map[string]string{"account": stmt.AccountNumber}
	fields := map[string]interface{}{
		"balance":      stmt.ClosingBalance.InexactFloat64(),
		"transactions": stmt.Len(),
	}
	pt, err := influx.NewPoint(measurement, tags, fields, stmt.ClosingDate)
	if err != nil {
		return nil, fmt.Errorf("creating balance point: %w", err)
	}
	return pt, nil
}
