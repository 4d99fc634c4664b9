package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/autotrader/internal/id"
	"github.com/rustyeddy/autotrader/market"
)

// SQLite persists trade rows in a single-file database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) OpenTrade(rec TradeRecord) error {
	if rec.TradeID == "" {
		rec.TradeID = id.New()
	}
	rec.Status = StatusOpen

	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, code, name, quantity, basis, buy_price, slippage_pct, open_time, status, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TradeID, string(rec.Code), rec.Name, rec.Quantity, rec.Basis,
		rec.BuyPrice, rec.SlippagePct, rec.OpenTime, string(rec.Status), rec.Reason,
	)
	return err
}

func (j *SQLite) CloseTrade(code market.Code, sellPrice market.Price, at time.Time, reason string) (TradeRecord, error) {
	rec, err := j.openTradeFor(code)
	if err != nil {
		return TradeRecord{}, err
	}

	closeFields(&rec, sellPrice, at, reason)

	_, err = j.db.Exec(`
		UPDATE trades
		SET sell_price = ?, close_time = ?, holding_days = ?, return_pct = ?, status = ?, reason = ?
		WHERE trade_id = ?`,
		rec.SellPrice, rec.CloseTime, rec.HoldingDays, rec.ReturnPct,
		string(rec.Status), rec.Reason, rec.TradeID,
	)
	if err != nil {
		return TradeRecord{}, err
	}
	return rec, nil
}

func (j *SQLite) RecordOrphan(code market.Code, sellPrice market.Price, at time.Time) error {
	rec := orphanRecord(id.New(), code, sellPrice, at)
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, code, name, quantity, basis, buy_price, slippage_pct, open_time, sell_price, close_time, status, reason)
		VALUES (?, ?, '', 0, 0, 0, 0, ?, ?, ?, ?, ?)`,
		rec.TradeID, string(rec.Code), rec.CloseTime, rec.SellPrice, rec.CloseTime,
		string(rec.Status), rec.Reason,
	)
	return err
}

// openTradeFor returns the most recent open row for code.
func (j *SQLite) openTradeFor(code market.Code) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, code, name, quantity, basis, buy_price, slippage_pct, open_time
		FROM trades
		WHERE code = ? AND status = ?
		ORDER BY open_time DESC
		LIMIT 1`, string(code), string(StatusOpen))

	var rec TradeRecord
	var codeStr string
	err := row.Scan(
		&rec.TradeID, &codeStr, &rec.Name, &rec.Quantity,
		&rec.Basis, &rec.BuyPrice, &rec.SlippagePct, &rec.OpenTime,
	)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("%w: %s", ErrNoOpenTrade, code)
	}
	if err != nil {
		return TradeRecord{}, err
	}
	rec.Code = market.Code(codeStr)
	rec.Status = StatusOpen
	return rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
