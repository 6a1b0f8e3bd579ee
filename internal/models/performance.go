package models

// Performance summarises a window of settled wagers
type Performance struct {
	Settled     int     `json:"settled"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	Invested    int64   `json:"invested"`
	NetProfit   int64   `json:"net_profit"`
	ROI         float64 `json:"roi"`
	LastBalance int64   `json:"last_balance"`
}

// Summarize computes win rate and return on investment over the settled
// wagers, newest first. Unsettled wagers are ignored.
func Summarize(wagers []*Wager) Performance {
	var p Performance
	for _, w := range wagers {
		if w == nil || !w.IsSettled() {
			continue
		}
		if p.Settled == 0 {
			p.LastBalance = w.Bankroll
		}
		p.Settled++
		p.Invested += w.Stake
		p.NetProfit += w.Profit()
		if w.Won() {
			p.Wins++
		}
	}
	if p.Settled > 0 {
		p.WinRate = float64(p.Wins) / float64(p.Settled)
	}
	if p.Invested > 0 {
		p.ROI = float64(p.NetProfit) / float64(p.Invested)
	}
	return p
}
