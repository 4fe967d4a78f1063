package service

import (
	"time"

	"github.com/joemerrillis/sniffr/internal/model"
)

// ── 时间窗展开 ──────────────────────────────────────────────
//
// 将客户的每周时间窗规则展开为闭区间 [from, to] 内每一天的待确认遛狗。
//   - 按日历日迭代（UTC 零点 + AddDate），跨夏令时或月末不会漏天/重天
//   - 星期匹配且落在生效区间内（两端闭合，缺省端无界）才产出
//   - 同一天命中多条规则各自产出，不做隐式去重；落库去重交给唯一约束
// ─────────────────────────────────────────────────────────────

// ExpandWalkWindows 纯函数，不访问存储
func ExpandWalkWindows(userID string, windows []model.ClientWalkWindow, from, to time.Time) []model.PendingWalk {
	start, end := civilDate(from), civilDate(to)
	if len(windows) == 0 || end.Before(start) {
		return nil
	}

	var out []model.PendingWalk
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekday := int(d.Weekday())
		for i := range windows {
			w := &windows[i]
			if w.DayOfWeek != weekday || !w.ActiveOn(d) {
				continue
			}
			windowID := w.WindowID
			out = append(out, model.PendingWalk{
				UserID:      userID,
				WindowID:    &windowID,
				WalkDate:    d,
				WindowStart: w.WindowStart,
				WindowEnd:   w.WindowEnd,
				Status:      model.PendingWalkStatusPending,
			})
		}
	}
	return out
}

// CurrentWeekRemainder 从 now 所在时区的"今天"到本周六（周日为一周第一天）
func CurrentWeekRemainder(now time.Time, loc *time.Location) (from, to time.Time) {
	today := civilDate(now.In(loc))
	return today, today.AddDate(0, 0, 6-int(today.Weekday()))
}

// WeekOf 返回 day 所在周（周日 ~ 周六）
func WeekOf(day time.Time) (from, to time.Time) {
	d := civilDate(day)
	from = d.AddDate(0, 0, -int(d.Weekday()))
	return from, from.AddDate(0, 0, 6)
}

// civilDate 取 t 在其自身时区下的年月日，返回 UTC 零点
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
