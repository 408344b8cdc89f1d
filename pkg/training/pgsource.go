package training

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadPostgres reads historical log rows from a Postgres table with
// the same columns as the CSV format. Rows come back ordered by
// primary key so two trainer runs against an unchanged table see the
// same dataset.
func LoadPostgres(ctx context.Context, dsn, table string) ([]LogRow, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg source: connect: %w", err)
	}
	defer pool.Close()

	query := fmt.Sprintf(
		`SELECT method, path, role, user_id, user_agent, risk_rule, status_code FROM %s ORDER BY id`, table)
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pg source: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []LogRow
	for rows.Next() {
		var r LogRow
		if err := rows.Scan(&r.Method, &r.Path, &r.Role, &r.UserID, &r.UserAgent, &r.RiskRule, &r.StatusCode); err != nil {
			return nil, fmt.Errorf("pg source: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg source: %w", err)
	}
	return out, nil
}
