package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

const selectCols = `trade_id, code, name, quantity, basis, buy_price, slippage_pct,
	open_time, sell_price, IFNULL(close_time, open_time), holding_days, return_pct, status, reason`

// GetTrade returns a single trade row by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+selectCols+`
		FROM trades
		WHERE trade_id = ?`, tradeID)
	if err != nil {
		return TradeRecord{}, err
	}
	defer rows.Close()

	recs, err := scanTrades(rows)
	if err != nil {
		return TradeRecord{}, err
	}
	if len(recs) == 0 {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return recs[0], nil
}

// ListTradesClosedBetween returns closed and orphan rows whose
// close_time is within [start, end), oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+selectCols+`
		FROM trades
		WHERE status != ? AND close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, string(StatusOpen), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

// OpenTrades returns all currently open rows, oldest first.
func (j *SQLite) OpenTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+selectCols+`
		FROM trades
		WHERE status = ?
		ORDER BY open_time ASC`, string(StatusOpen))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

type scanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTrades(rows scanner) ([]TradeRecord, error) {
	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		var code, status string
		if err := rows.Scan(
			&rec.TradeID, &code, &rec.Name, &rec.Quantity,
			&rec.Basis, &rec.BuyPrice, &rec.SlippagePct,
			&rec.OpenTime, &rec.SellPrice, &rec.CloseTime,
			&rec.HoldingDays, &rec.ReturnPct, &status, &rec.Reason,
		); err != nil {
			return nil, err
		}
		rec.Code = market.Code(code)
		rec.Status = Status(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
