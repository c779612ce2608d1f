package calculator

import "StockAnalyser/internal/model"

// AggregateWeekly folds oldest-first daily records into ISO-week bars. Each
// bar carries the date of its first trading day.
func AggregateWeekly(daily []model.PriceRecord) []model.PriceRecord {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.PriceRecord
	week := daily[0]
	wy, ww := week.Date.ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Date.ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
