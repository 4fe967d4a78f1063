package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
)

func TestDogCreateAndGet(t *testing.T) {
	env := newTestEnv()
	owner := Caller{UserID: "client-1", Role: model.RoleClient}
	weight := decimal.RequireFromString("12.345")

	created, err := env.svc.Dog.Create(context.Background(), owner, &dto.CreateDogRequest{
		Name:      " Rex ",
		Birthdate: strPtr("2020-05-01"),
		WeightKg:  &weight,
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if created.Name != "Rex" || created.Birthdate != "2020-05-01" || created.WeightKg != "12.35" {
		t.Errorf("创建结果错误: %+v", created)
	}

	if _, err := env.svc.Dog.Get(context.Background(), Caller{UserID: "client-2"}, created.ID); !errors.Is(err, ErrDogNotFound) {
		t.Errorf("他人读取期望 ErrDogNotFound，实际 %v", err)
	}

	bad := decimal.Zero
	if _, err := env.svc.Dog.Create(context.Background(), owner, &dto.CreateDogRequest{Name: "Zero", WeightKg: &bad}); !errors.Is(err, ErrDogWeightInvalid) {
		t.Errorf("非正体重期望 ErrDogWeightInvalid，实际 %v", err)
	}
}

func TestDogList_TenantStaffView(t *testing.T) {
	env := newTestEnv()
	env.addUser("admin-1", model.RoleTenantAdmin, "")
	env.addTenant("tenant-1", "admin-1")
	env.link("tenant-1", "client-1", true)
	env.link("tenant-1", "client-2", false)
	for _, owner := range []string{"client-1", "client-2"} {
		_, _ = env.svc.Dog.Create(context.Background(), Caller{UserID: owner}, &dto.CreateDogRequest{Name: "dog of " + owner})
	}
	staff := Caller{UserID: "admin-1", Role: model.RoleTenantAdmin, TenantID: "tenant-1"}

	dogs, err := env.svc.Dog.List(context.Background(), staff, &dto.DogListRequest{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(dogs) != 1 || dogs[0].OwnerID != "client-1" {
		t.Errorf("只应列出已接受客户的狗，实际 %+v", dogs)
	}

	// 指定未接受客户
	dogs, _ = env.svc.Dog.List(context.Background(), staff, &dto.DogListRequest{TenantID: "tenant-1", OwnerID: "client-2"})
	if len(dogs) != 0 {
		t.Errorf("未接受客户的狗不可见，实际 %d", len(dogs))
	}

	// 本人视角
	mine, _ := env.svc.Dog.List(context.Background(), Caller{UserID: "client-2"}, &dto.DogListRequest{})
	if len(mine) != 1 {
		t.Errorf("本人应看到自己的狗，实际 %d", len(mine))
	}
}

func TestDogDelete_ScopedNoop(t *testing.T) {
	env := newTestEnv()
	owner := Caller{UserID: "client-1"}
	created, _ := env.svc.Dog.Create(context.Background(), owner, &dto.CreateDogRequest{Name: "Rex"})

	if err := env.svc.Dog.Delete(context.Background(), Caller{UserID: "client-2"}, created.ID); err != nil {
		t.Errorf("他人删除应静默成功: %v", err)
	}
	if _, ok := env.dogs.dogs[created.ID]; !ok {
		t.Fatal("他人删除不应影响记录")
	}
	if err := env.svc.Dog.Delete(context.Background(), owner, created.ID); err != nil {
		t.Errorf("Delete 失败: %v", err)
	}
	if _, ok := env.dogs.dogs[created.ID]; ok {
		t.Error("本人删除后记录应消失")
	}
}
