// Package market holds exchange-level primitives: instrument codes,
// integral won prices, the KRX tick grid and the trading calendar.
package market

// Code is an exchange symbol identifier, e.g. "005930". It is the join
// key across positions, orders and journal rows.
type Code string

// Price is an exchange price in won. KRX prices are integral, so there
// is no fractional component to carry.
type Price = int64
