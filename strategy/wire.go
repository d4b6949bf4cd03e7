// Package strategy carries the line protocol between the bot and the
// external Strategy Engine process. The bot writes INFO snapshots and
// BOUGHT/SOLD/ROLLBACK outcomes; the engine answers with BUY/SELL
// instructions. One message per line, ASCII, newline-terminated.
package strategy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/market"
)

// Rollback tells the engine an attempted trade executed zero quantity and
// its internal state must not change.
const Rollback = "ROLLBACK"

// Info formats an account/price snapshot message.
func Info(cash, price, shares decimal.Decimal) string {
	return fmt.Sprintf("INFO %s;%s;%s", cash, price, shares)
}

// Bought formats a buy confirmation message.
func Bought(qty, price decimal.Decimal) string {
	return fmt.Sprintf("BOUGHT %s %s", qty, price)
}

// Sold formats a sell confirmation message.
func Sold(qty, price decimal.Decimal) string {
	return fmt.Sprintf("SOLD %s %s", qty, price)
}

// Instruction is a trade decision received from the Strategy Engine.
type Instruction struct {
	Side market.Side
	Qty  decimal.Decimal
}

// ParseInstruction decodes a "BUY <qty>" or "SELL <qty>" line. Any other
// line, including one with a non-positive quantity, is not an instruction
// and reports false.
func ParseInstruction(line string) (Instruction, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Instruction{}, false
	}

	side := market.Side(fields[0])
	if !side.Valid() {
		return Instruction{}, false
	}

	qty, err := decimal.NewFromString(fields[1])
	if err != nil || !qty.IsPositive() {
		return Instruction{}, false
	}

	return Instruction{Side: side, Qty: qty}, true
}
