package ledger

import (
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/shopspring/decimal"
)

// FeeSummary holds wei amounts. Players pay for rollDice, the VRF coordinator pays callbacks.
type FeeSummary struct {
	Average    decimal.Decimal `json:"average"`
	Total      decimal.Decimal `json:"total"`
	AverageEth string          `json:"averageEth"`
	TotalEth   string          `json:"totalEth"`
}

func (f FeeSummary) withEth() FeeSummary {
	f.AverageEth = FormatEth(f.Average.String())
	f.TotalEth = FormatEth(f.Total.String())
	return f
}

type TransactionStats struct {
	Total    int64            `json:"total"`
	ByMethod map[string]int64 `json:"byMethod"`
	Player   FeeSummary       `json:"player"`
	Vrf      FeeSummary       `json:"vrf"`
}

type ChartDataset struct {
	Label  string            `json:"label"`
	Method model.Method      `json:"method"`
	Data   []decimal.Decimal `json:"data"`
}

type FeeChart struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

const dayLayout = "2006-01-02"

var chartSeries = []struct {
	label  string
	method model.Method
}{
	{"Roll Dice", model.MethodRollDice},
	{"VRF Callback", model.MethodVrfCallback},
}

// BuildFeeChart lays points out on one label per day from since to until, inclusive.
// Days without data read as zero.
func BuildFeeChart(points []ChartPoint, since, until time.Time) FeeChart {
	byDay := map[string]map[model.Method]decimal.Decimal{}
	for _, p := range points {
		day := p.Day.UTC().Format(dayLayout)
		if byDay[day] == nil {
			byDay[day] = map[model.Method]decimal.Decimal{}
		}
		byDay[day][p.Method] = p.AverageFee.Round(0)
	}

	chart := FeeChart{Labels: []string{}}
	start := truncateDay(since)
	end := truncateDay(until)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		chart.Labels = append(chart.Labels, day.Format(dayLayout))
	}

	for _, series := range chartSeries {
		dataset := ChartDataset{Label: series.label, Method: series.method, Data: make([]decimal.Decimal, len(chart.Labels))}
		for i, label := range chart.Labels {
			dataset.Data[i] = byDay[label][series.method]
		}
		chart.Datasets = append(chart.Datasets, dataset)
	}
	return chart
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
