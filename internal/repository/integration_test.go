//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	"github.com/joemerrillis/sniffr/pkg/database"
	pkgerrors "github.com/joemerrillis/sniffr/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=sniffr password=sniffr_password dbname=sniffr_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	// 与生产一致，使用内嵌迁移建表（含唯一约束与 CHECK）
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupUser 创建测试用户并返回清理函数
func setupUser(t *testing.T) (*model.User, func()) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{
		Email:        fmt.Sprintf("walker%d@sniffr.test", time.Now().UnixNano()),
		Name:         "测试用户",
		Role:         model.RoleClient,
		PasswordHash: "$2a$10$placeholder",
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	cleanup := func() {
		testDB.Where("user_id = ?", user.UserID).Delete(&model.PendingWalk{})
		testDB.Where("user_id = ?", user.UserID).Delete(&model.ClientWalkWindow{})
		testDB.Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
	return user, cleanup
}

func date(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

// ═══════════════════════════════════════════════════════════
// Test: PendingWalk 原子插入
// ═══════════════════════════════════════════════════════════

func TestPendingWalk_CreateIfAbsent(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	walk := func() *model.PendingWalk {
		return &model.PendingWalk{
			UserID:      user.UserID,
			WalkDate:    date("2024-01-02"),
			WindowStart: "09:00:00",
			WindowEnd:   "10:00:00",
			Status:      model.PendingWalkStatusPending,
		}
	}

	created, err := repo.PendingWalk.CreateIfAbsent(ctx, walk())
	if err != nil || !created {
		t.Fatalf("首次插入应成功: created=%v err=%v", created, err)
	}
	created, err = repo.PendingWalk.CreateIfAbsent(ctx, walk())
	if err != nil {
		t.Fatalf("重复插入不应报错: %v", err)
	}
	if created {
		t.Error("重复插入不应新建行")
	}

	walks, err := repo.PendingWalk.ListByUserInRange(ctx, user.UserID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(walks) != 1 {
		t.Errorf("期望 1 行，实际 %d", len(walks))
	}
}

func TestPendingWalk_CreateIfAbsent_Concurrent(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.PendingWalk.CreateIfAbsent(ctx, &model.PendingWalk{
				UserID:      user.UserID,
				WalkDate:    date("2024-01-09"),
				WindowStart: "09:00:00",
				WindowEnd:   "10:00:00",
				Status:      model.PendingWalkStatusPending,
			})
			if err != nil {
				t.Errorf("并发插入报错: %v", err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 {
		t.Errorf("并发播种应只有 1 次成功写入，实际 %d", createdCount)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: WalkWindow 按所有者删除 / CHECK 约束
// ═══════════════════════════════════════════════════════════

func TestWalkWindow_DeleteScopedByOwner(t *testing.T) {
	owner, cleanupOwner := setupUser(t)
	defer cleanupOwner()
	other, cleanupOther := setupUser(t)
	defer cleanupOther()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	w := &model.ClientWalkWindow{UserID: owner.UserID, DayOfWeek: 2, WindowStart: "09:00:00", WindowEnd: "10:00:00"}
	if err := repo.WalkWindow.Create(ctx, w); err != nil {
		t.Fatalf("创建时间窗失败: %v", err)
	}

	n, err := repo.WalkWindow.Delete(ctx, w.WindowID, other.UserID)
	if err != nil {
		t.Fatalf("删除不应报错: %v", err)
	}
	if n != 0 {
		t.Errorf("非所有者删除应影响 0 行，实际 %d", n)
	}
	if _, err := repo.WalkWindow.GetForUser(ctx, w.WindowID, owner.UserID); err != nil {
		t.Errorf("时间窗不应被删除: %v", err)
	}
}

func TestWalkWindow_CheckConstraint(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	err := repo.WalkWindow.Create(context.Background(), &model.ClientWalkWindow{
		UserID: user.UserID, DayOfWeek: 7, WindowStart: "09:00:00", WindowEnd: "10:00:00",
	})
	if !pkgerrors.IsCheckViolation(err) {
		t.Errorf("day_of_week=7 应触发 CHECK 约束，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Boarding 乐观锁
// ═══════════════════════════════════════════════════════════

func TestBoarding_OptimisticLock(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tenant := &model.Tenant{Name: "测试租户", Slug: fmt.Sprintf("t-%d", time.Now().UnixNano()), OwnerID: user.UserID}
	if err := repo.Tenant.Create(ctx, tenant); err != nil {
		t.Fatalf("创建租户失败: %v", err)
	}
	defer testDB.Unscoped().Where("tenant_id = ?", tenant.TenantID).Delete(&model.Tenant{})

	b := &model.Boarding{
		TenantID:   tenant.TenantID,
		UserID:     user.UserID,
		DropOffDay: date("2024-03-01"),
		PickUpDay:  date("2024-03-03"),
		Price:      decimal.NewFromInt(90),
		Status:     model.BoardingStatusDraft,
	}
	b.Version = 1
	if err := repo.Boarding.Create(ctx, b, nil); err != nil {
		t.Fatalf("创建寄养失败: %v", err)
	}
	defer testDB.Where("boarding_id = ?", b.BoardingID).Delete(&model.Boarding{})

	stale := *b
	b.Status = model.BoardingStatusApproved
	if err := repo.Boarding.Update(ctx, b, nil); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}

	stale.Status = model.BoardingStatusCanceled
	if err := repo.Boarding.Update(ctx, &stale, nil); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("旧版本更新应返回 ErrOptimisticLock，实际: %v", err)
	}
}
