package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rustyeddy/autotrader/internal/id"
	"github.com/rustyeddy/autotrader/market"
)

// CSV appends one row per completed trade (closed or orphan) to a
// single file. Open trades are kept in memory until they close; any
// still open when the journal shuts down are flushed with OPEN status
// so nothing is lost across the session boundary.
type CSV struct {
	w    *csv.Writer
	file *os.File
	open map[market.Code]TradeRecord
}

var csvHeader = []string{
	"trade_id", "code", "name", "quantity", "basis", "buy_price", "slippage_pct",
	"open_time", "sell_price", "close_time", "holding_days", "return_pct", "status", "reason",
}

func NewCSV(path string) (*CSV, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		file.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return nil, err
	}

	return &CSV{w: w, file: file, open: make(map[market.Code]TradeRecord)}, nil
}

func (j *CSV) OpenTrade(rec TradeRecord) error {
	if rec.TradeID == "" {
		rec.TradeID = id.New()
	}
	rec.Status = StatusOpen
	j.open[rec.Code] = rec
	return nil
}

func (j *CSV) CloseTrade(code market.Code, sellPrice market.Price, at time.Time, reason string) (TradeRecord, error) {
	rec, ok := j.open[code]
	if !ok {
		return TradeRecord{}, fmt.Errorf("%w: %s", ErrNoOpenTrade, code)
	}
	delete(j.open, code)

	closeFields(&rec, sellPrice, at, reason)
	if err := j.write(rec); err != nil {
		return TradeRecord{}, err
	}
	return rec, nil
}

func (j *CSV) RecordOrphan(code market.Code, sellPrice market.Price, at time.Time) error {
	return j.write(orphanRecord(id.New(), code, sellPrice, at))
}

func (j *CSV) Close() error {
	// Flush still-open rows in a stable order.
	codes := make([]market.Code, 0, len(j.open))
	for code := range j.open {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, k int) bool { return codes[i] < codes[k] })
	for _, code := range codes {
		if err := j.write(j.open[code]); err != nil {
			return err
		}
	}

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.file.Close()
}

func (j *CSV) write(rec TradeRecord) error {
	row := []string{
		rec.TradeID,
		string(rec.Code),
		rec.Name,
		strconv.FormatInt(rec.Quantity, 10),
		strconv.FormatFloat(rec.Basis, 'f', 2, 64),
		strconv.FormatInt(rec.BuyPrice, 10),
		strconv.FormatFloat(rec.SlippagePct, 'f', 4, 64),
		timeCol(rec.OpenTime),
		strconv.FormatInt(rec.SellPrice, 10),
		timeCol(rec.CloseTime),
		strconv.Itoa(rec.HoldingDays),
		strconv.FormatFloat(rec.ReturnPct, 'f', 4, 64),
		string(rec.Status),
		rec.Reason,
	}
	if err := j.w.Write(row); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func timeCol(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
