package service

import (
	"context"
	"errors"
	"testing"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
)

func TestTenantCreate(t *testing.T) {
	env := newTestEnv()
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	caller := Caller{UserID: "admin-1", Role: model.RoleTenantAdmin}

	resp, err := env.svc.Tenant.Create(context.Background(), caller, &dto.CreateTenantRequest{Name: " Happy Paws ", Slug: "Happy-Paws"})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.Slug != "happy-paws" || resp.Name != "Happy Paws" || resp.OwnerID != "admin-1" {
		t.Errorf("创建结果错误: %+v", resp)
	}
	if env.users.users["admin-1"].TenantIDValue() != resp.ID {
		t.Error("首个租户应回写为所有者的归属租户")
	}
}

func TestTenantCreate_Denied(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Tenant.Create(context.Background(), Caller{UserID: "client-1", Role: model.RoleClient}, &dto.CreateTenantRequest{Name: "x", Slug: "xx"})
	if !errors.Is(err, ErrTenantCreateDenied) {
		t.Errorf("客户创建租户应被拒绝，实际 %v", err)
	}

	_, err = env.svc.Tenant.Create(context.Background(), Caller{UserID: "admin-1", Role: model.RoleTenantAdmin}, &dto.CreateTenantRequest{Name: "x", Slug: "bad slug!"})
	if !errors.Is(err, ErrTenantSlugInvalid) {
		t.Errorf("非法 slug 期望 ErrTenantSlugInvalid，实际 %v", err)
	}
}

func TestTenantGet_Visibility(t *testing.T) {
	env := newTestEnv()
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	env.addTenant("tenant-1", "admin-1")
	env.addUser("client-1", model.RoleClient, "")

	client := Caller{UserID: "client-1", Role: model.RoleClient}
	if _, err := env.svc.Tenant.Get(context.Background(), client, "tenant-1"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("无关联客户应看不到租户，实际 %v", err)
	}

	env.link("tenant-1", "client-1", true)
	if _, err := env.svc.Tenant.Get(context.Background(), client, "tenant-1"); err != nil {
		t.Errorf("已接受客户应可见: %v", err)
	}

	// 租户成员（非所有者）以库中 tenant_id 判定
	env.addUser("walker-1", model.RoleWalker, "tenant-1")
	if _, err := env.svc.Tenant.Get(context.Background(), Caller{UserID: "walker-1", Role: model.RoleWalker}, "tenant-1"); err != nil {
		t.Errorf("租户成员应可见: %v", err)
	}
}

func TestTenantUpdateDelete_OwnerOnly(t *testing.T) {
	env := newTestEnv()
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	env.addTenant("tenant-1", "admin-1")
	other := Caller{UserID: "admin-2", Role: model.RoleTenantAdmin}
	owner := Caller{UserID: "admin-1", Role: model.RoleTenantAdmin}

	name := "Renamed"
	if _, err := env.svc.Tenant.Update(context.Background(), other, "tenant-1", &dto.UpdateTenantRequest{Name: &name}); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("非所有者更新应返回 ErrTenantNotFound，实际 %v", err)
	}
	resp, err := env.svc.Tenant.Update(context.Background(), owner, "tenant-1", &dto.UpdateTenantRequest{Name: &name})
	if err != nil || resp.Name != "Renamed" {
		t.Errorf("所有者更新失败: %+v (%v)", resp, err)
	}

	if err := env.svc.Tenant.Delete(context.Background(), other, "tenant-1"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("非所有者删除应返回 ErrTenantNotFound，实际 %v", err)
	}
	if err := env.svc.Tenant.Delete(context.Background(), owner, "tenant-1"); err != nil {
		t.Errorf("所有者删除失败: %v", err)
	}
}

func TestTenantInviteAndAccept(t *testing.T) {
	env := newTestEnv()
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	env.addTenant("tenant-1", "admin-1")
	env.addUser("client-1", model.RoleClient, "")
	staff := Caller{UserID: "admin-1", Role: model.RoleTenantAdmin, TenantID: "tenant-1"}
	client := Caller{UserID: "client-1", Role: model.RoleClient}

	// 非员工不能邀请
	if _, err := env.svc.Tenant.InviteClient(context.Background(), client, "tenant-1", &dto.InviteClientRequest{ClientID: "client-1"}); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("非员工邀请应返回 ErrTenantNotFound，实际 %v", err)
	}

	link, err := env.svc.Tenant.InviteClient(context.Background(), staff, "tenant-1", &dto.InviteClientRequest{Email: "client-1@example.com"})
	if err != nil {
		t.Fatalf("InviteClient 失败: %v", err)
	}
	if link.Accepted || link.ClientID != "client-1" || link.InvitedBy != "admin-1" {
		t.Errorf("邀请结果错误: %+v", link)
	}

	// 重复邀请幂等
	again, err := env.svc.Tenant.InviteClient(context.Background(), staff, "tenant-1", &dto.InviteClientRequest{ClientID: "client-1"})
	if err != nil || again.ID != link.ID {
		t.Errorf("重复邀请应返回已有关联: %+v (%v)", again, err)
	}

	if _, err := env.svc.Tenant.InviteClient(context.Background(), staff, "tenant-1", &dto.InviteClientRequest{Email: "nobody@example.com"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("未知邮箱应返回 ErrUserNotFound，实际 %v", err)
	}

	accepted, err := env.svc.Tenant.AcceptInvitation(context.Background(), client, "tenant-1")
	if err != nil {
		t.Fatalf("AcceptInvitation 失败: %v", err)
	}
	if !accepted.Accepted || accepted.AcceptedAt == "" {
		t.Errorf("接受后应标记 accepted: %+v", accepted)
	}

	if _, err := env.svc.Tenant.AcceptInvitation(context.Background(), Caller{UserID: "client-9"}, "tenant-1"); !errors.Is(err, ErrTenantClientNotFound) {
		t.Errorf("无邀请接受应返回 ErrTenantClientNotFound，实际 %v", err)
	}

	clients, err := env.svc.Tenant.ListClients(context.Background(), staff, "tenant-1")
	if err != nil || len(clients) != 1 {
		t.Errorf("期望 1 个客户，实际 %d (%v)", len(clients), err)
	}
}
