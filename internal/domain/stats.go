package domain

import (
	"math"
	"time"
)

// MonthlyFigures is one bucket of the month-keyed revenue/profit series.
type MonthlyFigures struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Stats is the dashboard aggregate over all orders. Monetary figures are
// rounded to two decimals at this boundary only; accumulation happens on the
// raw values so rounding error does not compound.
type Stats struct {
	TotalOrders      int                       `json:"total_orders"`
	TotalRevenue     float64                   `json:"total_revenue"`
	ThisMonthRevenue float64                   `json:"this_month_revenue"`
	LastMonthRevenue float64                   `json:"last_month_revenue"`
	UniqueCustomers  int                       `json:"unique_customers"`
	TotalProfit      float64                   `json:"total_profit"`
	ThisMonthProfit  float64                   `json:"this_month_profit"`
	LastMonthProfit  float64                   `json:"last_month_profit"`
	Monthly          map[string]MonthlyFigures `json:"monthly"`

	// SkippedItems counts line items that contributed zero profit because
	// their product, properties, or variant could not be resolved. Callers
	// log it; a reporting path never aborts on bad lines.
	SkippedItems int `json:"-"`
}

// AggregateStats folds all orders into revenue/profit totals, calendar-month
// buckets relative to now, a YYYY-MM series, and a unique-customer count.
// Line items whose product is missing, whose properties are absent, or whose
// variant cannot be matched are skipped rather than failing the report.
func AggregateStats(orders []Order, products []Product, now time.Time) Stats {
	byID := make(map[string]*Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfLastMonth := firstOfMonth.AddDate(0, -1, 0)

	stats := Stats{Monthly: make(map[string]MonthlyFigures)}
	customers := make(map[string]bool)

	for _, order := range orders {
		profit, skipped := orderProfit(order, byID)
		stats.SkippedItems += skipped

		stats.TotalOrders++
		stats.TotalRevenue += order.TotalAmount
		stats.TotalProfit += profit

		if order.Email != "" {
			customers[order.Email] = true
		}

		switch {
		case !order.CreatedAt.Before(firstOfMonth):
			stats.ThisMonthRevenue += order.TotalAmount
			stats.ThisMonthProfit += profit
		case !order.CreatedAt.Before(firstOfLastMonth):
			stats.LastMonthRevenue += order.TotalAmount
			stats.LastMonthProfit += profit
		}

		monthKey := order.CreatedAt.Format("2006-01")
		bucket := stats.Monthly[monthKey]
		bucket.Revenue += order.TotalAmount
		bucket.Profit += profit
		stats.Monthly[monthKey] = bucket
	}

	stats.UniqueCustomers = len(customers)

	stats.TotalRevenue = round2(stats.TotalRevenue)
	stats.ThisMonthRevenue = round2(stats.ThisMonthRevenue)
	stats.LastMonthRevenue = round2(stats.LastMonthRevenue)
	stats.TotalProfit = round2(stats.TotalProfit)
	stats.ThisMonthProfit = round2(stats.ThisMonthProfit)
	stats.LastMonthProfit = round2(stats.LastMonthProfit)
	for key, bucket := range stats.Monthly {
		stats.Monthly[key] = MonthlyFigures{
			Revenue: round2(bucket.Revenue),
			Profit:  round2(bucket.Profit),
		}
	}

	return stats
}

// orderProfit sums (item price − variant cost) × quantity over the order's
// matchable line items and reports how many lines were skipped.
func orderProfit(order Order, products map[string]*Product) (profit float64, skipped int) {
	for _, item := range order.Items {
		product, ok := products[item.ProductID]
		if !ok {
			skipped++
			continue
		}
		if len(item.Properties) == 0 {
			skipped++
			continue
		}
		variant, ok := product.MatchVariant(item.Properties)
		if !ok {
			skipped++
			continue
		}
		profit += (item.Price - variant.Cost) * float64(item.Quantity)
	}
	return profit, skipped
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
