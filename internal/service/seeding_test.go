package service

import (
	"testing"
	"time"

	"github.com/joemerrillis/sniffr/internal/model"
)

func tuesdayWindow() model.ClientWalkWindow {
	return model.ClientWalkWindow{
		WindowID:       "w-tue",
		UserID:         "client-1",
		DayOfWeek:      2,
		WindowStart:    "09:00:00",
		WindowEnd:      "10:00:00",
		EffectiveStart: datePtr("2024-01-01"),
		EffectiveEnd:   datePtr("2024-01-31"),
	}
}

func TestExpandWalkWindows_TuesdayInRange(t *testing.T) {
	walks := ExpandWalkWindows("client-1", []model.ClientWalkWindow{tuesdayWindow()}, date("2024-01-01"), date("2024-01-14"))

	if len(walks) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(walks))
	}
	want := []string{"2024-01-02", "2024-01-09"}
	for i, w := range walks {
		if got := w.WalkDate.Format(model.DateLayout); got != want[i] {
			t.Errorf("第 %d 条期望 %s，实际 %s", i, want[i], got)
		}
		if w.WindowStart != "09:00:00" || w.WindowEnd != "10:00:00" {
			t.Errorf("时间段错误: %s-%s", w.WindowStart, w.WindowEnd)
		}
		if w.Status != model.PendingWalkStatusPending {
			t.Errorf("期望 status=pending，实际=%s", w.Status)
		}
		if w.WindowID == nil || *w.WindowID != "w-tue" {
			t.Error("应记录来源时间窗 ID")
		}
	}
}

func TestExpandWalkWindows_EffectiveBoundsInclusive(t *testing.T) {
	w := tuesdayWindow()
	w.EffectiveStart = datePtr("2024-01-09")
	w.EffectiveEnd = datePtr("2024-01-09")

	walks := ExpandWalkWindows("client-1", []model.ClientWalkWindow{w}, date("2024-01-01"), date("2024-01-31"))
	if len(walks) != 1 || walks[0].WalkDate.Format(model.DateLayout) != "2024-01-09" {
		t.Fatalf("生效区间两端应闭合，实际 %+v", walks)
	}
}

func TestExpandWalkWindows_UnboundedRange(t *testing.T) {
	w := tuesdayWindow()
	w.EffectiveStart, w.EffectiveEnd = nil, nil

	// 2024-02-26 ~ 2024-03-12 含 3 个周二（跨闰月末）
	walks := ExpandWalkWindows("client-1", []model.ClientWalkWindow{w}, date("2024-02-26"), date("2024-03-12"))
	want := []string{"2024-02-27", "2024-03-05", "2024-03-12"}
	if len(walks) != len(want) {
		t.Fatalf("期望 %d 条，实际 %d", len(want), len(walks))
	}
	for i := range want {
		if got := walks[i].WalkDate.Format(model.DateLayout); got != want[i] {
			t.Errorf("期望 %s，实际 %s", want[i], got)
		}
	}
}

func TestExpandWalkWindows_DSTBoundary(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("缺少时区数据: %v", err)
	}
	w := model.ClientWalkWindow{WindowID: "w-sun", DayOfWeek: 0, WindowStart: "08:00:00", WindowEnd: "09:00:00"}

	// 2024-03-10 美东进入夏令时，当天只有 23 小时
	from := time.Date(2024, 3, 9, 0, 0, 0, 0, ny)
	to := time.Date(2024, 3, 17, 0, 0, 0, 0, ny)
	walks := ExpandWalkWindows("client-1", []model.ClientWalkWindow{w}, from, to)

	want := []string{"2024-03-10", "2024-03-17"}
	if len(walks) != len(want) {
		t.Fatalf("期望 %d 条，实际 %d", len(want), len(walks))
	}
	for i := range want {
		if got := walks[i].WalkDate.Format(model.DateLayout); got != want[i] {
			t.Errorf("期望 %s，实际 %s", want[i], got)
		}
	}
}

func TestExpandWalkWindows_MultipleWindowsSameDay(t *testing.T) {
	morning := model.ClientWalkWindow{WindowID: "a", DayOfWeek: 1, WindowStart: "08:00:00", WindowEnd: "09:00:00"}
	evening := model.ClientWalkWindow{WindowID: "b", DayOfWeek: 1, WindowStart: "18:00:00", WindowEnd: "19:00:00"}

	walks := ExpandWalkWindows("client-1", []model.ClientWalkWindow{morning, evening}, date("2024-01-01"), date("2024-01-01"))
	if len(walks) != 2 {
		t.Fatalf("同一天多条规则应各自产出，实际 %d", len(walks))
	}
}

func TestExpandWalkWindows_Empty(t *testing.T) {
	if got := ExpandWalkWindows("client-1", nil, date("2024-01-01"), date("2024-01-31")); len(got) != 0 {
		t.Errorf("无时间窗应返回空，实际 %d", len(got))
	}
	if got := ExpandWalkWindows("client-1", []model.ClientWalkWindow{tuesdayWindow()}, date("2024-01-31"), date("2024-01-01")); len(got) != 0 {
		t.Errorf("倒置区间应返回空，实际 %d", len(got))
	}
}

func TestCurrentWeekRemainder(t *testing.T) {
	cases := []struct {
		name     string
		now      time.Time
		loc      *time.Location
		from, to string
	}{
		{"周三", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), time.UTC, "2024-01-10", "2024-01-13"},
		{"周日", time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), time.UTC, "2024-01-07", "2024-01-13"},
		{"周六", time.Date(2024, 1, 13, 23, 59, 0, 0, time.UTC), time.UTC, "2024-01-13", "2024-01-13"},
		// UTC 周日凌晨在 UTC-5 仍是周六
		{"时区回拨", time.Date(2024, 1, 14, 3, 0, 0, 0, time.UTC), time.FixedZone("UTC-5", -5*3600), "2024-01-13", "2024-01-13"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := CurrentWeekRemainder(tc.now, tc.loc)
			if from.Format(model.DateLayout) != tc.from || to.Format(model.DateLayout) != tc.to {
				t.Errorf("期望 %s~%s，实际 %s~%s", tc.from, tc.to, from.Format(model.DateLayout), to.Format(model.DateLayout))
			}
		})
	}
}

func TestWeekOf(t *testing.T) {
	from, to := WeekOf(date("2024-01-10"))
	if from.Format(model.DateLayout) != "2024-01-07" || to.Format(model.DateLayout) != "2024-01-13" {
		t.Errorf("期望 2024-01-07~2024-01-13，实际 %s~%s", from.Format(model.DateLayout), to.Format(model.DateLayout))
	}
}
