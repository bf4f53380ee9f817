package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Outcome labels for responses that carry no result code of their own
const (
	OutcomeSucceeded = "ok"
	OutcomeFailed    = "failed"
)

// UnaryServerInterceptor returns a gRPC interceptor that records metrics for
// each request. Business service responses report domain failures in-band
// (success=false plus a result code), so the outcome is read from the
// response payload; transport failures are labelled with their gRPC status.
func UnaryServerInterceptor(collector *Collector, exporter *PrometheusExporter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		method := info.FullMethod

		collector.RecordRequest(method)
		if exporter != nil {
			exporter.RecordRequest(method)
		}

		resp, err := handler(ctx, req)

		duration := time.Since(start).Seconds()
		collector.RecordDuration(method, duration)
		if exporter != nil {
			exporter.RecordDuration(method, duration)
		}

		if err != nil {
			collector.RecordError(method)
			if exporter != nil {
				exporter.RecordError(method)
			}
		}

		code := Outcome(resp, err)
		collector.RecordOutcome(method, code)
		if exporter != nil {
			exporter.RecordOutcome(method, code)
		}

		return resp, err
	}
}

// Outcome classifies a unary response. Structs with a "code" field report
// that code; structs with only "success" report ok or failed; anything else
// reports its gRPC status code.
func Outcome(resp interface{}, err error) string {
	if err != nil {
		return status.Code(err).String()
	}

	s, ok := resp.(*structpb.Struct)
	if !ok {
		return status.Code(nil).String()
	}
	fields := s.GetFields()
	if code := fields["code"].GetStringValue(); code != "" {
		return code
	}
	if success, ok := fields["success"]; ok {
		if success.GetBoolValue() {
			return OutcomeSucceeded
		}
		return OutcomeFailed
	}
	return status.Code(nil).String()
}
