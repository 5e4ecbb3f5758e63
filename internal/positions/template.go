package positions

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/zanisimone/tapeboard/pkg/utils"
)

// Template returns a starter CSV in the accepted upload format, with example
// rows dated relative to now. The output round-trips through ParseCSV.
func Template(now time.Time) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"symbol", "date", "notional", "category", "source", "notes"})
	w.Write([]string{
		"AAPL",
		utils.FormatDate(now.AddDate(0, 0, 1)),
		strconv.FormatFloat(15000000, 'f', -1, 64),
		"block_trade",
		"manual",
		"dark pool print",
	})
	w.Write([]string{
		"NVDA",
		utils.FormatDate(now.AddDate(0, 0, 3)),
		strconv.FormatFloat(-2500000, 'f', -1, 64),
		"options_sweep",
		"manual",
		"put sweep, negative notional means sold",
	})
	w.Flush()

	return buf.Bytes()
}
