package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "advancemanager.v1.BusinessService"

// BusinessServiceServer is the server API for the business service. Every
// method takes and returns a google.protobuf.Struct so resource scripts can
// call it without generated stubs.
type BusinessServiceServer interface {
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetFunds(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFunds(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HireEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FireEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateGrade(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateWage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateBusiness(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBusiness(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOwnedBusinesses(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGradeMetadata(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWageLimits(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CanPerform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPermissionOverrides(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ActorConnected(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ActorDropped(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv BusinessServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// methodHandler adapts a unary method to grpc.MethodHandler the same way
// protoc-gen-go-grpc output does
func methodHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BusinessServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BusinessServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// BusinessServiceDesc is the grpc.ServiceDesc for BusinessServiceServer
var BusinessServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BusinessServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodHandler("Deposit", BusinessServiceServer.Deposit),
		methodHandler("Withdraw", BusinessServiceServer.Withdraw),
		methodHandler("SetFunds", BusinessServiceServer.SetFunds),
		methodHandler("GetFunds", BusinessServiceServer.GetFunds),
		methodHandler("HireEmployee", BusinessServiceServer.HireEmployee),
		methodHandler("FireEmployee", BusinessServiceServer.FireEmployee),
		methodHandler("UpdateGrade", BusinessServiceServer.UpdateGrade),
		methodHandler("UpdateWage", BusinessServiceServer.UpdateWage),
		methodHandler("GetEmployees", BusinessServiceServer.GetEmployees),
		methodHandler("GetEmployee", BusinessServiceServer.GetEmployee),
		methodHandler("CreateBusiness", BusinessServiceServer.CreateBusiness),
		methodHandler("GetBusiness", BusinessServiceServer.GetBusiness),
		methodHandler("ListOwnedBusinesses", BusinessServiceServer.ListOwnedBusinesses),
		methodHandler("GetGradeMetadata", BusinessServiceServer.GetGradeMetadata),
		methodHandler("GetWageLimits", BusinessServiceServer.GetWageLimits),
		methodHandler("CanPerform", BusinessServiceServer.CanPerform),
		methodHandler("SetPermissionOverrides", BusinessServiceServer.SetPermissionOverrides),
		methodHandler("ActorConnected", BusinessServiceServer.ActorConnected),
		methodHandler("ActorDropped", BusinessServiceServer.ActorDropped),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "advancemanager/v1/business.proto",
}

// RegisterBusinessServiceServer registers srv on s
func RegisterBusinessServiceServer(s grpc.ServiceRegistrar, srv BusinessServiceServer) {
	s.RegisterService(&BusinessServiceDesc, srv)
}
