package trace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseReader answers read-back queries against the traces table that
// the Kafka-fed ingestion pipeline (outside this module) populates. The
// registry attaches one to FeedbackVerifier when a ClickHouse DSN is
// configured; no request handler in this module queries it.
type ClickHouseReader struct {
	conn  clickhouse.Conn
	table string
}

func NewClickHouseReader(ctx context.Context, dsn, table string, timeout time.Duration) (*ClickHouseReader, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil
	}
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("trace: parse clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("trace: open clickhouse: %w", err)
	}
	if table == "" {
		table = "retrieval_traces"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("trace: clickhouse ping: %w", err)
	}
	return &ClickHouseReader{conn: conn, table: table}, nil
}

// TraceExists reports whether a trace_id has already landed in ClickHouse.
func (r *ClickHouseReader) TraceExists(ctx context.Context, traceID string) (bool, error) {
	if r == nil || r.conn == nil {
		return false, fmt.Errorf("trace: clickhouse reader not configured")
	}
	row := r.conn.QueryRow(ctx, fmt.Sprintf(`SELECT count() FROM %s WHERE trace_id = ? LIMIT 1`, r.table), traceID)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// StatusCount is one row of RecentStatusCounts, which summarizes trace
// outcomes over a trailing window.
type StatusCount struct {
	Status string
	Count  uint64
}

func (r *ClickHouseReader) RecentStatusCounts(ctx context.Context, window time.Duration) ([]StatusCount, error) {
	if r == nil || r.conn == nil {
		return nil, fmt.Errorf("trace: clickhouse reader not configured")
	}
	if window <= 0 {
		window = time.Hour
	}
	rows, err := r.conn.Query(ctx, fmt.Sprintf(`
SELECT status, count() AS c
FROM %s
WHERE recorded_at >= now() - toIntervalSecond(?)
GROUP BY status
ORDER BY c DESC`, r.table), int(window.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
