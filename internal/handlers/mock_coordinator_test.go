package handlers

import (
	"context"

	"github.com/JericoFX/advance-manager/internal/services/coordinator"
)

// mockCoordinator records the last request and returns a fixed result
type mockCoordinator struct {
	result coordinator.Result
	method string
	last   any
}

func (m *mockCoordinator) reply(method string, req any) coordinator.Result {
	m.method = method
	m.last = req
	return m.result
}

func (m *mockCoordinator) Deposit(ctx context.Context, req coordinator.FundsRequest) coordinator.Result {
	return m.reply("Deposit", req)
}

func (m *mockCoordinator) Withdraw(ctx context.Context, req coordinator.FundsRequest) coordinator.Result {
	return m.reply("Withdraw", req)
}

func (m *mockCoordinator) SetFunds(ctx context.Context, req coordinator.SetFundsRequest) coordinator.Result {
	return m.reply("SetFunds", req)
}

func (m *mockCoordinator) GetFunds(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result {
	return m.reply("GetFunds", req)
}

func (m *mockCoordinator) HireEmployee(ctx context.Context, req coordinator.HireRequest) coordinator.Result {
	return m.reply("HireEmployee", req)
}

func (m *mockCoordinator) FireEmployee(ctx context.Context, req coordinator.EmployeeRequest) coordinator.Result {
	return m.reply("FireEmployee", req)
}

func (m *mockCoordinator) UpdateGrade(ctx context.Context, req coordinator.UpdateGradeRequest) coordinator.Result {
	return m.reply("UpdateGrade", req)
}

func (m *mockCoordinator) UpdateWage(ctx context.Context, req coordinator.UpdateWageRequest) coordinator.Result {
	return m.reply("UpdateWage", req)
}

func (m *mockCoordinator) GetEmployees(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result {
	return m.reply("GetEmployees", req)
}

func (m *mockCoordinator) GetEmployee(ctx context.Context, req coordinator.EmployeeRequest) coordinator.Result {
	return m.reply("GetEmployee", req)
}

func (m *mockCoordinator) CreateBusiness(ctx context.Context, req coordinator.CreateBusinessRequest) coordinator.Result {
	return m.reply("CreateBusiness", req)
}

func (m *mockCoordinator) GetBusiness(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result {
	return m.reply("GetBusiness", req)
}

func (m *mockCoordinator) ListOwnedBusinesses(ctx context.Context, req coordinator.SessionRequest) coordinator.Result {
	return m.reply("ListOwnedBusinesses", req)
}

func (m *mockCoordinator) GetGradeMetadata(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result {
	return m.reply("GetGradeMetadata", req)
}

func (m *mockCoordinator) GetWageLimits(ctx context.Context, req coordinator.SessionRequest) coordinator.Result {
	return m.reply("GetWageLimits", req)
}

func (m *mockCoordinator) CanPerform(ctx context.Context, req coordinator.CanPerformRequest) coordinator.Result {
	return m.reply("CanPerform", req)
}

func (m *mockCoordinator) SetPermissionOverrides(ctx context.Context, req coordinator.SetPermissionsRequest) coordinator.Result {
	return m.reply("SetPermissionOverrides", req)
}

func (m *mockCoordinator) ActorConnected(ctx context.Context, req coordinator.ConnectRequest) coordinator.Result {
	return m.reply("ActorConnected", req)
}

func (m *mockCoordinator) ActorDropped(ctx context.Context, req coordinator.SessionRequest) coordinator.Result {
	return m.reply("ActorDropped", req)
}
