package weather

// MaxForecastDays caps the number of daily summaries produced.
const MaxForecastDays = 7

const dateLayout = "2006-01-02"

// AggregateDaily collapses a feed of forecast samples into one summary per
// calendar day, in the order each date is first seen, keeping at most
// MaxForecastDays days.
//
// High, Low and Pop are folded over every sample of the day. Condition,
// Icon and Wind are taken from the first sample of the day and are not
// revisited afterwards.
func AggregateDaily(samples []ForecastSample) []DailySummary {
	var (
		order = make([]string, 0, MaxForecastDays)
		days  = make(map[string]*DailySummary)
	)

	for _, s := range samples {
		key := s.Timestamp.Format(dateLayout)
		pop := s.PrecipProbability * 100

		day, ok := days[key]
		if !ok {
			days[key] = &DailySummary{
				Date:      key,
				High:      s.TempMaxC,
				Low:       s.TempMinC,
				Condition: s.Condition,
				Icon:      s.Icon,
				Pop:       pop,
				Wind:      s.WindSpeedMS,
			}
			order = append(order, key)
			continue
		}

		if s.TempMaxC > day.High {
			day.High = s.TempMaxC
		}
		if s.TempMinC < day.Low {
			day.Low = s.TempMinC
		}
		if pop > day.Pop {
			day.Pop = pop
		}
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	daily := make([]DailySummary, 0, len(order))
	for _, key := range order {
		daily = append(daily, *days[key])
	}
	return daily
}
