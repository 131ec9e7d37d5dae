package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"yt_digest/internal/domain"
)

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

type DeliveryStore struct {
	db *sqlx.DB
}

func NewDeliveryStore(db *sqlx.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

// Record stores one row per destination. A later attempt overwrites the
// outcome of an earlier one.
func (s *DeliveryStore) Record(ctx context.Context, summaryID int64, reports []domain.DeliveryReport) error {
	if len(reports) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO deliveries (summary_id, destination, status, error) VALUES ")
	valueArgs := make([]interface{}, 0, len(reports)*3+1)
	valueArgs = append(valueArgs, summaryID)

	for i, report := range reports {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i*3 + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*3 + 3))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*3 + 4))
		sb.WriteString(")")

		status := StatusDelivered
		var errText *string
		if report.Err != nil {
			status = StatusFailed
			msg := report.Err.Error()
			errText = &msg
		}
		valueArgs = append(valueArgs, report.Destination, status, errText)
	}
	sb.WriteString(` ON CONFLICT (summary_id, destination) DO UPDATE SET
		status = EXCLUDED.status,
		error = EXCLUDED.error,
		attempted_at = NOW()`)

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

// Delivered lists the destinations that already accepted the summary.
func (s *DeliveryStore) Delivered(ctx context.Context, summaryID int64) ([]string, error) {
	query := `SELECT destination FROM deliveries WHERE summary_id = $1 AND status = $2 ORDER BY destination`

	var result []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &result, query, summaryID, StatusDelivered)
	return result, err
}
