package notifier

import (
	"fmt"
	"html"
	"strings"

	"TWScreener/internal/model"
	"TWScreener/internal/strategy"
)

// MaxReportRows caps the passing symbols listed in one screen report.
const MaxReportRows = 30

// FormatScreenReport formats a screening run into a Telegram message.
func FormatScreenReport(run *model.ScreenRun) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>台股選股</b> | %s\n", run.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("候選 %d 檔，通過 %d 檔，失敗 %d 檔\n\n", run.Candidates, run.Passed(), run.Failed()))

	rows := 0
	for _, res := range run.Results {
		if res.Err != nil || res.Snapshot == nil {
			continue
		}
		if rows == MaxReportRows {
			b.WriteString(fmt.Sprintf("… 其餘 %d 檔省略\n", run.Passed()-rows))
			break
		}
		rows++
		c := res.Candidate
		b.WriteString(fmt.Sprintf("<b>%s</b> %s  %.2f (%+.2f%%)\n", html.EscapeString(c.Symbol), html.EscapeString(c.Name), c.Price, c.ChangePercent))
		b.WriteString(fmt.Sprintf("  量 %.0f 張 / 5日均 %.0f 張 | %s\n", res.EstimatedVolumeLots, res.AvgVolume5Lots, signalLine(res.Snapshot)))
	}
	if rows == 0 {
		b.WriteString("今日無符合條件個股\n")
	}

	if failed := run.Failed(); failed > 0 {
		b.WriteString("\n⚠️ <b>失敗:</b>\n")
		for _, res := range run.Results {
			if res.Err != nil {
				b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(res.Candidate.Symbol), html.EscapeString(res.Error)))
			}
		}
	}
	return b.String()
}

// FormatSnapshot formats the latest-bar view of one symbol.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b> | %s\n\n", html.EscapeString(snap.Symbol), snap.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("收盤: %.2f (%+.2f%%)\n", snap.Quote.Price, snap.Quote.ChangePercent))
	b.WriteString(fmt.Sprintf("K/D: %s / %s\n", floatText(snap.K), floatText(snap.D)))
	b.WriteString(fmt.Sprintf("均線排列: %s\n", trendLabel(snap.Trend)))
	b.WriteString(fmt.Sprintf("乖離: %s\n", deviationLabel(snap.Deviation)))
	b.WriteString(fmt.Sprintf("多空: %s\n", biasLabel(snap.Bias)))
	b.WriteString(fmt.Sprintf("KD: %s\n", oscillatorLabel(snap.Oscillator)))
	if snap.AvgVolume5 != nil {
		b.WriteString(fmt.Sprintf("5日均量: %.0f 張\n", *snap.AvgVolume5/1000))
	}
	b.WriteString(fmt.Sprintf("\n資料筆數: %d\n", snap.Bars))
	return b.String()
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	return "🤖 <b>指令列表</b>\n\n" +
		"/scan - 立即執行選股\n" +
		"/analyze &lt;代號&gt; - 查詢個股訊號\n" +
		"/help - 顯示此說明"
}

func signalLine(s *model.Snapshot) string {
	return fmt.Sprintf("排列 %s · %s · KD %s", trendLabel(s.Trend), biasLabel(s.Bias), floatText(s.K))
}

func floatText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// trendLabel renders the trend-ordering code; see strategy.TrendACB and
// friends for the orderings.
func trendLabel(code *int) string {
	if code == nil {
		return "-"
	}
	return fmt.Sprintf("%+d", *code)
}

func deviationLabel(code *int) string {
	if code == nil {
		return "正常"
	}
	if *code == strategy.DeviationOverextendedUp {
		return "正乖離過大"
	}
	return "負乖離過大"
}

func biasLabel(code *int) string {
	if code == nil {
		return "-"
	}
	if *code == strategy.BiasUp {
		return "偏多"
	}
	return "偏空"
}

func oscillatorLabel(code *int) string {
	if code == nil {
		return "正常"
	}
	if *code == strategy.OscillatorOverbought {
		return "超買"
	}
	return "超賣"
}
