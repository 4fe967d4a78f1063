package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
)

func pendingWalkSvc(env *testEnv) *pendingWalkService {
	return env.svc.PendingWalk.(*pendingWalkService)
}

func seededEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv()
	seedTuesdayWindow(env, "client-1")
	if _, err := env.svc.WalkWindow.SeedRange(context.Background(), "client-1", date("2024-01-01"), date("2024-01-31")); err != nil {
		t.Fatalf("SeedRange 失败: %v", err)
	}
	pendingWalkSvc(env).now = fixedNow(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	return env
}

func TestPendingWalkList_DefaultsToCurrentWeek(t *testing.T) {
	env := seededEnv(t)

	walks, err := env.svc.PendingWalk.List(context.Background(), Caller{UserID: "client-1"}, &dto.PendingWalkListRequest{})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(walks) != 1 || walks[0].WalkDate != "2024-01-09" {
		t.Errorf("本周应只有 01-09，实际 %+v", walks)
	}

	all, _ := env.svc.PendingWalk.List(context.Background(), Caller{UserID: "client-1"}, &dto.PendingWalkListRequest{From: "2024-01-01", To: "2024-01-31"})
	if len(all) != 5 {
		t.Errorf("1 月共 5 个周二，实际 %d", len(all))
	}
}

func TestPendingWalkList_InvalidRange(t *testing.T) {
	env := seededEnv(t)
	cases := []dto.PendingWalkListRequest{
		{From: "2024-01-31", To: "2024-01-01"},
		{From: "2024-01-01", To: "2024-12-31"},
	}
	for _, req := range cases {
		req := req
		if _, err := env.svc.PendingWalk.List(context.Background(), Caller{UserID: "client-1"}, &req); !errors.Is(err, ErrPendingWalkRangeInvalid) {
			t.Errorf("%+v 期望 ErrPendingWalkRangeInvalid，实际 %v", req, err)
		}
	}
}

func TestPendingWalkListForClient(t *testing.T) {
	env := seededEnv(t)
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	env.addTenant("tenant-1", "admin-1")
	staff := Caller{UserID: "admin-1", Role: model.RoleTenantAdmin, TenantID: "tenant-1"}

	if _, err := env.svc.PendingWalk.ListForClient(context.Background(), staff, "tenant-1", "client-1", &dto.PendingWalkListRequest{}); !errors.Is(err, ErrTenantClientNotFound) {
		t.Errorf("无关联期望 ErrTenantClientNotFound，实际 %v", err)
	}
	env.link("tenant-1", "client-1", true)
	walks, err := env.svc.PendingWalk.ListForClient(context.Background(), staff, "tenant-1", "client-1", &dto.PendingWalkListRequest{})
	if err != nil || len(walks) != 1 {
		t.Errorf("期望 1 条，实际 %d (%v)", len(walks), err)
	}
}

func TestPendingWalkExport_XLSX(t *testing.T) {
	env := seededEnv(t)

	file, err := env.svc.PendingWalk.Export(context.Background(), Caller{UserID: "client-1"}, &dto.PendingWalkExportRequest{
		PendingWalkListRequest: dto.PendingWalkListRequest{From: "2024-01-01", To: "2024-01-31"},
	})
	if err != nil {
		t.Fatalf("Export 失败: %v", err)
	}
	if file.ContentType != contentTypeXLSX || !strings.HasSuffix(file.Filename, ".xlsx") {
		t.Errorf("文件类型错误: %s %s", file.ContentType, file.Filename)
	}

	f, err := excelize.OpenReader(file.Body)
	if err != nil {
		t.Fatalf("无法解析导出的 xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("待确认遛狗")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 标题 + 表头 + 5 行数据
	if len(rows) != 7 {
		t.Errorf("期望 7 行，实际 %d", len(rows))
	}
	if rows[2][0] != "2024-01-02" || rows[2][1] != "周二" {
		t.Errorf("首行数据错误: %v", rows[2])
	}
}

func TestPendingWalkExport_ICS(t *testing.T) {
	env := seededEnv(t)

	file, err := env.svc.PendingWalk.Export(context.Background(), Caller{UserID: "client-1"}, &dto.PendingWalkExportRequest{Format: "ics"})
	if err != nil {
		t.Fatalf("Export 失败: %v", err)
	}
	body := file.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Errorf("日历内容错误:\n%s", body)
	}
	if !strings.Contains(body, "20240109T090000Z") {
		t.Errorf("UTC 服务时区下开始时间应为 20240109T090000Z:\n%s", body)
	}
}
