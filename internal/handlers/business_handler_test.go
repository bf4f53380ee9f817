package handlers

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JericoFX/advance-manager/internal/infrastructure/metrics"
	"github.com/JericoFX/advance-manager/internal/services/coordinator"
)

func TestBusinessHandler_DecodesRequests(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(h *BusinessHandler, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
		in   map[string]any
		want any
	}{
		{
			name: "deposit",
			call: (*BusinessHandler).Deposit,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "amount": 10.6},
			want: coordinator.FundsRequest{SessionID: "1", BusinessID: 2, Amount: 10.6},
		},
		{
			name: "set funds",
			call: (*BusinessHandler).SetFunds,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "amount": 0.0},
			want: coordinator.SetFundsRequest{SessionID: "1", BusinessID: 2},
		},
		{
			name: "hire",
			call: (*BusinessHandler).HireEmployee,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "citizenId": "P1", "name": "Ana", "grade": 4.0, "wage": 9999.0},
			want: coordinator.HireRequest{SessionID: "1", BusinessID: 2, CitizenID: "P1", Name: "Ana", Grade: 4, Wage: 9999},
		},
		{
			name: "update grade",
			call: (*BusinessHandler).UpdateGrade,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "citizenId": "P1", "grade": 1.0},
			want: coordinator.UpdateGradeRequest{SessionID: "1", BusinessID: 2, CitizenID: "P1", Grade: 1},
		},
		{
			name: "can perform with single permission",
			call: (*BusinessHandler).CanPerform,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "permissions": "finance"},
			want: coordinator.CanPerformRequest{SessionID: "1", BusinessID: 2, Permissions: []string{"finance"}},
		},
		{
			name: "set permission overrides",
			call: (*BusinessHandler).SetPermissionOverrides,
			in:   map[string]any{"sessionId": "1", "businessId": 2.0, "overrides": map[string]any{"2": []any{"finance"}, "hiring": true}},
			want: coordinator.SetPermissionsRequest{SessionID: "1", BusinessID: 2, Overrides: map[string]any{"2": []any{"finance"}, "hiring": true}},
		},
		{
			name: "create business",
			call: (*BusinessHandler).CreateBusiness,
			in:   map[string]any{"sessionId": "1", "name": "Bean Machine", "jobName": "cafe"},
			want: coordinator.CreateBusinessRequest{SessionID: "1", Name: "Bean Machine", JobName: "cafe"},
		},
		{
			name: "actor connected",
			call: (*BusinessHandler).ActorConnected,
			in:   map[string]any{"sessionId": "1", "citizenId": "P1", "job": "police", "grade": 2.0, "cash": 50.0, "admin": true},
			want: coordinator.ConnectRequest{SessionID: "1", CitizenID: "P1", Job: "police", Grade: 2, Cash: 50, Admin: true},
		},
		{
			name: "actor dropped",
			call: (*BusinessHandler).ActorDropped,
			in:   map[string]any{"sessionId": "1"},
			want: coordinator.SessionRequest{SessionID: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCoordinator{result: coordinator.Result{Success: true, Code: coordinator.CodeOK}}
			h := NewBusinessHandler(mock, nil)

			in, err := structpb.NewStruct(tt.in)
			require.NoError(t, err)
			out, err := tt.call(h, ctx, in)
			require.NoError(t, err)

			assert.Equal(t, tt.want, mock.last)
			assert.Equal(t, true, out.AsMap()["success"])
		})
	}
}

func TestBusinessHandler_InvalidPayload(t *testing.T) {
	mock := &mockCoordinator{}
	h := NewBusinessHandler(mock, nil)

	in, err := structpb.NewStruct(map[string]any{"sessionId": "1", "businessId": "two"})
	require.NoError(t, err)

	_, err = h.GetFunds(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, mock.method, "coordinator not called")
}

func TestBusinessHandler_DomainFailureIsInBand(t *testing.T) {
	mock := &mockCoordinator{result: coordinator.Result{Code: coordinator.CodePermissionDenied, Message: "you do not have permission to do that", RequestID: "r1"}}
	h := NewBusinessHandler(mock, nil)

	out, err := h.Withdraw(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "permission_denied", m["code"])
	assert.Equal(t, "Withdraw", mock.method)
}

// startServer serves the handler over an in-memory listener
func startServer(t *testing.T, srv BusinessServiceServer, opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterBusinessServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBusinessService_OverGRPC(t *testing.T) {
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter(collector, prometheus.NewRegistry())
	mock := &mockCoordinator{result: coordinator.Result{
		Success:   true,
		Code:      coordinator.CodeOK,
		Data:      coordinator.WageLimits{Min: 0, Max: 10000},
		RequestID: "r1",
	}}
	conn := startServer(t, NewBusinessHandler(mock, nil),
		grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, exporter)))

	in, err := structpb.NewStruct(map[string]any{"sessionId": "1"})
	require.NoError(t, err)
	out := new(structpb.Struct)
	method := "/" + ServiceName + "/GetWageLimits"
	require.NoError(t, conn.Invoke(context.Background(), method, in, out))

	assert.Equal(t, "GetWageLimits", mock.method)
	assert.Equal(t, map[string]any{"min": 0.0, "max": 10000.0}, out.AsMap()["data"])
	assert.Equal(t, uint64(1), collector.GetAPIMetrics().RequestCounts[method])
	assert.Equal(t, uint64(1), collector.GetAPIMetrics().OutcomeCounts[method]["ok"])

	err = conn.Invoke(context.Background(), "/"+ServiceName+"/Nope", in, out)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestBusinessServiceDesc_CoversEveryMethod(t *testing.T) {
	names := make(map[string]bool, len(BusinessServiceDesc.Methods))
	for _, m := range BusinessServiceDesc.Methods {
		assert.False(t, names[m.MethodName], "duplicate method %s", m.MethodName)
		names[m.MethodName] = true
	}
	assert.Len(t, names, 19)
}
