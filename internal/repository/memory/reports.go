package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

func (q *Queries) PaymentTotals(_ context.Context, p model.Period) (int, decimal.Decimal, error) {
	n, sum := 0, decimal.Zero
	for _, pay := range q.st.payments {
		if p.Contains(pay.PaidAt) {
			n++
			sum = sum.Add(pay.Amount)
		}
	}
	return n, sum, nil
}

func (q *Queries) PaymentStatsByMethod(_ context.Context, p model.Period) ([]model.MethodStat, error) {
	byMethod := map[model.PaymentMethod]*model.MethodStat{}
	for _, pay := range q.st.payments {
		if !p.Contains(pay.PaidAt) {
			continue
		}
		s, ok := byMethod[pay.Method]
		if !ok {
			s = &model.MethodStat{Method: pay.Method, Total: decimal.Zero}
			byMethod[pay.Method] = s
		}
		s.Count++
		s.Total = s.Total.Add(pay.Amount)
	}
	var out []model.MethodStat
	for _, s := range byMethod {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

func (q *Queries) ExpenseTotals(_ context.Context, p model.Period) (int, decimal.Decimal, error) {
	n, sum := 0, decimal.Zero
	for _, e := range q.st.expenses {
		if p.Contains(e.SpentOn) {
			n++
			sum = sum.Add(e.Amount)
		}
	}
	return n, sum, nil
}

func (q *Queries) OrderTotals(_ context.Context, p model.Period) (int, decimal.Decimal, error) {
	n, sum := 0, decimal.Zero
	for _, o := range q.st.orders {
		if o.Status == model.StatusCancelled || !p.Contains(o.CreatedAt) {
			continue
		}
		n++
		sum = sum.Add(o.Total)
	}
	return n, sum, nil
}

func (q *Queries) PopularDishes(_ context.Context, p model.Period, limit int) ([]model.DishStat, error) {
	stats := map[uint64]*model.DishStat{}
	for _, l := range q.st.lines {
		o, ok := q.st.orders[l.OrderID]
		if !ok || o.Status == model.StatusCancelled || !p.Contains(o.CreatedAt) {
			continue
		}
		s, ok := stats[l.DishID]
		if !ok {
			s = &model.DishStat{DishID: l.DishID, DishName: q.st.dishes[l.DishID].Name, Revenue: decimal.Zero}
			stats[l.DishID] = s
		}
		s.Quantity += l.Quantity
		s.Revenue = s.Revenue.Add(l.Subtotal())
	}
	var out []model.DishStat
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].DishID < out[j].DishID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
