package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
)

// ── 报价计算 ────────────────────────────────────────────────
//
// 起始价为 0，按 priority 升序、rule_id 升序依次应用规则：
//   - fixed:   amount × 计价单位数（booking=1, night=晚数, dog=狗数, dog_night=狗数×晚数）
//   - percent: 当前累计价 × amount / 100，四舍五入到分（远离零）
// 累计价不低于 0；明细中记录实际生效的调整额，保证逐条累加等于总价。
// ─────────────────────────────────────────────────────────────

var hundred = decimal.NewFromInt(100)

// PriceRequest 报价输入
type PriceRequest struct {
	ServiceType string
	Start       time.Time
	End         time.Time
	DogCount    int
}

// PriceLine 单条规则的调整结果
type PriceLine struct {
	RuleID     string
	Name       string
	RuleType   string
	Adjustment decimal.Decimal
	PriceSoFar decimal.Decimal
}

// PriceQuote 报价结果，最后一条明细的 PriceSoFar 等于 Total
type PriceQuote struct {
	Total     decimal.Decimal
	Breakdown []PriceLine
}

// Nights 起止日期相差天数，最少 1
func Nights(start, end time.Time) int {
	n := int(civilDate(end).Sub(civilDate(start)).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// ApplicableRules 过滤出适用规则并按应用顺序排序，不修改入参
func ApplicableRules(rules []model.PricingRule, req PriceRequest) []model.PricingRule {
	out := make([]model.PricingRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if r.ServiceType != model.ServiceTypeAll && r.ServiceType != req.ServiceType {
			continue
		}
		if req.DogCount < r.MinDogs {
			continue
		}
		if !r.AppliesTo(req.Start, req.End) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

// EvaluatePricing 纯函数：计算总价与明细
func EvaluatePricing(rules []model.PricingRule, req PriceRequest) PriceQuote {
	nights := Nights(req.Start, req.End)
	dogs := req.DogCount
	if dogs < 1 {
		dogs = 1
	}

	running := decimal.Zero
	applicable := ApplicableRules(rules, req)
	lines := make([]PriceLine, 0, len(applicable))

	for _, r := range applicable {
		var delta decimal.Decimal
		switch r.AdjustmentType {
		case model.AdjustmentPercent:
			delta = running.Mul(r.Amount).Div(hundred).Round(2)
		default:
			delta = r.Amount.Mul(decimal.NewFromInt(int64(unitCount(r.PerUnit, nights, dogs)))).Round(2)
		}

		next := running.Add(delta)
		if next.IsNegative() {
			delta = running.Neg()
			next = decimal.Zero
		}
		running = next

		lines = append(lines, PriceLine{
			RuleID:     r.RuleID,
			Name:       r.Name,
			RuleType:   r.RuleType,
			Adjustment: delta,
			PriceSoFar: running,
		})
	}

	return PriceQuote{Total: running, Breakdown: lines}
}

func unitCount(perUnit string, nights, dogs int) int {
	switch perUnit {
	case model.PerUnitNight:
		return nights
	case model.PerUnitDog:
		return dogs
	case model.PerUnitDogNight:
		return dogs * nights
	default:
		return 1
	}
}

func toBreakdownEntries(lines []PriceLine) []dto.PriceBreakdownEntry {
	entries := make([]dto.PriceBreakdownEntry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, dto.PriceBreakdownEntry{
			RuleID:     l.RuleID,
			Name:       l.Name,
			RuleType:   l.RuleType,
			Adjustment: l.Adjustment.StringFixed(2),
			PriceSoFar: l.PriceSoFar.StringFixed(2),
		})
	}
	return entries
}
