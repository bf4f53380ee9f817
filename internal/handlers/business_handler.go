package handlers

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JericoFX/advance-manager/internal/services/coordinator"
)

// CoordinatorInterface is the boundary the handler forwards to
type CoordinatorInterface interface {
	Deposit(ctx context.Context, req coordinator.FundsRequest) coordinator.Result
	Withdraw(ctx context.Context, req coordinator.FundsRequest) coordinator.Result
	SetFunds(ctx context.Context, req coordinator.SetFundsRequest) coordinator.Result
	GetFunds(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result
	HireEmployee(ctx context.Context, req coordinator.HireRequest) coordinator.Result
	FireEmployee(ctx context.Context, req coordinator.EmployeeRequest) coordinator.Result
	UpdateGrade(ctx context.Context, req coordinator.UpdateGradeRequest) coordinator.Result
	UpdateWage(ctx context.Context, req coordinator.UpdateWageRequest) coordinator.Result
	GetEmployees(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result
	GetEmployee(ctx context.Context, req coordinator.EmployeeRequest) coordinator.Result
	CreateBusiness(ctx context.Context, req coordinator.CreateBusinessRequest) coordinator.Result
	GetBusiness(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result
	ListOwnedBusinesses(ctx context.Context, req coordinator.SessionRequest) coordinator.Result
	GetGradeMetadata(ctx context.Context, req coordinator.BusinessRequest) coordinator.Result
	GetWageLimits(ctx context.Context, req coordinator.SessionRequest) coordinator.Result
	CanPerform(ctx context.Context, req coordinator.CanPerformRequest) coordinator.Result
	SetPermissionOverrides(ctx context.Context, req coordinator.SetPermissionsRequest) coordinator.Result
	ActorConnected(ctx context.Context, req coordinator.ConnectRequest) coordinator.Result
	ActorDropped(ctx context.Context, req coordinator.SessionRequest) coordinator.Result
}

var _ CoordinatorInterface = (*coordinator.Coordinator)(nil)

// BusinessHandler handles all business service gRPC requests.
// Domain failures travel inside the response struct; gRPC status errors are
// reserved for payloads that cannot be decoded.
type BusinessHandler struct {
	coordinator CoordinatorInterface
	logger      *zap.Logger
}

var _ BusinessServiceServer = (*BusinessHandler)(nil)

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(co CoordinatorInterface, logger *zap.Logger) *BusinessHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessHandler{coordinator: co, logger: logger.Named("handler")}
}

// respond converts a coordinator result into the wire struct
func (h *BusinessHandler) respond(res coordinator.Result) (*structpb.Struct, error) {
	out, err := resultToProto(res)
	if err != nil {
		h.logger.Error("failed to encode result", zap.String("request_id", res.RequestID), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to encode result")
	}
	return out, nil
}

func invalidPayload(err error) error {
	return status.Errorf(codes.InvalidArgument, "invalid payload: %v", err)
}

// === Funds ===

func readFundsRequest(in *structpb.Struct) (coordinator.FundsRequest, error) {
	r := &fieldReader{in: in}
	req := coordinator.FundsRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		Amount:     r.readNumber("amount"),
	}
	return req, r.err
}

func readBusinessRequest(in *structpb.Struct) (coordinator.BusinessRequest, error) {
	r := &fieldReader{in: in}
	req := coordinator.BusinessRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
	}
	return req, r.err
}

func readEmployeeRequest(in *structpb.Struct) (coordinator.EmployeeRequest, error) {
	r := &fieldReader{in: in}
	req := coordinator.EmployeeRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		CitizenID:  r.readString("citizenId"),
	}
	return req, r.err
}

func readSessionRequest(in *structpb.Struct) (coordinator.SessionRequest, error) {
	r := &fieldReader{in: in}
	req := coordinator.SessionRequest{SessionID: r.readString("sessionId")}
	return req, r.err
}

// Deposit handles the Deposit RPC
func (h *BusinessHandler) Deposit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readFundsRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.Deposit(ctx, req))
}

// Withdraw handles the Withdraw RPC
func (h *BusinessHandler) Withdraw(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readFundsRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.Withdraw(ctx, req))
}

// SetFunds handles the SetFunds RPC
func (h *BusinessHandler) SetFunds(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.SetFundsRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		Amount:     r.readInt64("amount"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.SetFunds(ctx, req))
}

// GetFunds handles the GetFunds RPC
func (h *BusinessHandler) GetFunds(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readBusinessRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetFunds(ctx, req))
}

// === Employees ===

// HireEmployee handles the HireEmployee RPC
func (h *BusinessHandler) HireEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.HireRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		CitizenID:  r.readString("citizenId"),
		Name:       r.readString("name"),
		Grade:      r.readInt("grade"),
		Wage:       r.readInt64("wage"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.HireEmployee(ctx, req))
}

// FireEmployee handles the FireEmployee RPC
func (h *BusinessHandler) FireEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readEmployeeRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.FireEmployee(ctx, req))
}

// UpdateGrade handles the UpdateGrade RPC
func (h *BusinessHandler) UpdateGrade(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.UpdateGradeRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		CitizenID:  r.readString("citizenId"),
		Grade:      r.readInt("grade"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.UpdateGrade(ctx, req))
}

// UpdateWage handles the UpdateWage RPC
func (h *BusinessHandler) UpdateWage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.UpdateWageRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		CitizenID:  r.readString("citizenId"),
		Wage:       r.readInt64("wage"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.UpdateWage(ctx, req))
}

// GetEmployees handles the GetEmployees RPC
func (h *BusinessHandler) GetEmployees(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readBusinessRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetEmployees(ctx, req))
}

// GetEmployee handles the GetEmployee RPC
func (h *BusinessHandler) GetEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readEmployeeRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetEmployee(ctx, req))
}

// === Businesses ===

// CreateBusiness handles the CreateBusiness RPC
func (h *BusinessHandler) CreateBusiness(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.CreateBusinessRequest{
		SessionID: r.readString("sessionId"),
		Name:      r.readString("name"),
		JobName:   r.readString("jobName"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.CreateBusiness(ctx, req))
}

// GetBusiness handles the GetBusiness RPC
func (h *BusinessHandler) GetBusiness(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readBusinessRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetBusiness(ctx, req))
}

// ListOwnedBusinesses handles the ListOwnedBusinesses RPC
func (h *BusinessHandler) ListOwnedBusinesses(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readSessionRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.ListOwnedBusinesses(ctx, req))
}

// GetGradeMetadata handles the GetGradeMetadata RPC
func (h *BusinessHandler) GetGradeMetadata(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readBusinessRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetGradeMetadata(ctx, req))
}

// GetWageLimits handles the GetWageLimits RPC
func (h *BusinessHandler) GetWageLimits(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readSessionRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.GetWageLimits(ctx, req))
}

// CanPerform handles the CanPerform RPC
func (h *BusinessHandler) CanPerform(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.CanPerformRequest{
		SessionID:   r.readString("sessionId"),
		BusinessID:  r.readInt64("businessId"),
		Permissions: r.readStrings("permissions"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.CanPerform(ctx, req))
}

// SetPermissionOverrides handles the SetPermissionOverrides RPC
func (h *BusinessHandler) SetPermissionOverrides(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.SetPermissionsRequest{
		SessionID:  r.readString("sessionId"),
		BusinessID: r.readInt64("businessId"),
		Overrides:  r.readMap("overrides"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.SetPermissionOverrides(ctx, req))
}

// === Sessions ===

// ActorConnected handles the ActorConnected RPC
func (h *BusinessHandler) ActorConnected(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &fieldReader{in: in}
	req := coordinator.ConnectRequest{
		SessionID: r.readString("sessionId"),
		CitizenID: r.readString("citizenId"),
		Name:      r.readString("name"),
		Job:       r.readString("job"),
		Grade:     r.readInt("grade"),
		Cash:      r.readInt64("cash"),
		Admin:     r.readBool("admin"),
	}
	if r.err != nil {
		return nil, invalidPayload(r.err)
	}
	return h.respond(h.coordinator.ActorConnected(ctx, req))
}

// ActorDropped handles the ActorDropped RPC
func (h *BusinessHandler) ActorDropped(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := readSessionRequest(in)
	if err != nil {
		return nil, invalidPayload(err)
	}
	return h.respond(h.coordinator.ActorDropped(ctx, req))
}
