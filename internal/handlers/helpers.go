package handlers

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/services/coordinator"
)

// === Request field readers ===
// Missing fields read as zero values; the coordinator validates them.

func stringField(in *structpb.Struct, name string) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", nil
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}

func numberField(in *structpb.Struct, name string) (float64, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return 0, fmt.Errorf("%s must be a finite number", name)
		}
		return kind.NumberValue, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

func intField(in *structpb.Struct, name string) (int64, error) {
	f, err := numberField(in, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int64(f), nil
}

func boolField(in *structpb.Struct, name string) (bool, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return false, nil
	case *structpb.Value_BoolValue:
		return kind.BoolValue, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", name)
	}
}

func stringListField(in *structpb.Struct, name string) ([]string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		// A single permission may be sent bare
		return []string{kind.StringValue}, nil
	case *structpb.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]string, 0, len(values))
		for i, item := range values {
			s, ok := item.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			out = append(out, s.StringValue)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings", name)
	}
}

func mapField(in *structpb.Struct, name string) (map[string]any, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StructValue:
		return kind.StructValue.AsMap(), nil
	default:
		return nil, fmt.Errorf("%s must be an object", name)
	}
}

// fieldReader collects the first decoding error so request builders stay flat
type fieldReader struct {
	in  *structpb.Struct
	err error
}

func (r *fieldReader) readString(name string) string {
	v, err := stringField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) readNumber(name string) float64 {
	v, err := numberField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) readInt64(name string) int64 {
	v, err := intField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) readInt(name string) int {
	v := r.readInt64(name)
	if v > math.MaxInt32 || v < math.MinInt32 {
		r.keep(fmt.Errorf("%s is out of range", name))
		return 0
	}
	return int(v)
}

func (r *fieldReader) readBool(name string) bool {
	v, err := boolField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) readStrings(name string) []string {
	v, err := stringListField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) readMap(name string) map[string]any {
	v, err := mapField(r.in, name)
	r.keep(err)
	return v
}

func (r *fieldReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// === Response conversion ===

func resultToProto(res coordinator.Result) (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{
		"success":   structpb.NewBoolValue(res.Success),
		"code":      structpb.NewStringValue(string(res.Code)),
		"message":   structpb.NewStringValue(res.Message),
		"requestId": structpb.NewStringValue(res.RequestID),
	}
	if res.Data != nil {
		data, err := dataToProto(res.Data)
		if err != nil {
			return nil, err
		}
		fields["data"] = data
	}
	return &structpb.Struct{Fields: fields}, nil
}

func dataToProto(data any) (*structpb.Value, error) {
	switch d := data.(type) {
	case coordinator.FundsData:
		fields := map[string]*structpb.Value{
			"businessId": numberValue(d.BusinessID),
			"funds":      numberValue(d.Funds),
		}
		if d.Cash != 0 {
			fields["cash"] = numberValue(d.Cash)
		}
		return structValue(fields), nil
	case coordinator.WageLimits:
		return structValue(map[string]*structpb.Value{
			"min": numberValue(d.Min),
			"max": numberValue(d.Max),
		}), nil
	case coordinator.BusinessData:
		return businessToProto(d), nil
	case []coordinator.BusinessData:
		values := make([]*structpb.Value, 0, len(d))
		for _, b := range d {
			values = append(values, businessToProto(b))
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case *entities.Employee:
		if d == nil {
			return structpb.NewNullValue(), nil
		}
		return employeeToProto(d), nil
	case []entities.Employee:
		values := make([]*structpb.Value, 0, len(d))
		for i := range d {
			values = append(values, employeeToProto(&d[i]))
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case []entities.GradeMetadata:
		values := make([]*structpb.Value, 0, len(d))
		for _, g := range d {
			values = append(values, structValue(map[string]*structpb.Value{
				"grade":  numberValue(int64(g.Grade)),
				"label":  structpb.NewStringValue(g.Label),
				"wage":   numberValue(g.Wage),
				"isboss": structpb.NewBoolValue(g.IsBoss),
			}))
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case coordinator.PermissionsData:
		grants := make(map[string]*structpb.Value, len(d.Grants))
		for grade, perms := range d.Grants {
			values := make([]*structpb.Value, 0, len(perms))
			for _, p := range perms {
				values = append(values, structpb.NewStringValue(p))
			}
			grants[grade] = structpb.NewListValue(&structpb.ListValue{Values: values})
		}
		return structValue(map[string]*structpb.Value{
			"businessId": numberValue(d.BusinessID),
			"grants":     structValue(grants),
		}), nil
	case map[string]bool:
		fields := make(map[string]*structpb.Value, len(d))
		for k, v := range d {
			fields[k] = structpb.NewBoolValue(v)
		}
		return structValue(fields), nil
	default:
		return nil, fmt.Errorf("unsupported result data type: %T", data)
	}
}

func businessToProto(b coordinator.BusinessData) *structpb.Value {
	fields := map[string]*structpb.Value{
		"id":      numberValue(b.ID),
		"name":    structpb.NewStringValue(b.Name),
		"owner":   structpb.NewStringValue(b.Owner),
		"jobName": structpb.NewStringValue(b.JobName),
	}
	if b.Funds != 0 {
		fields["funds"] = numberValue(b.Funds)
	}
	return structValue(fields)
}

func employeeToProto(e *entities.Employee) *structpb.Value {
	fields := map[string]*structpb.Value{
		"id":           numberValue(e.ID),
		"businessId":   numberValue(e.BusinessID),
		"citizenId":    structpb.NewStringValue(e.CitizenID),
		"name":         structpb.NewStringValue(e.Name),
		"grade":        numberValue(int64(e.Grade)),
		"wage":         numberValue(e.Wage),
		"businessName": structpb.NewStringValue(e.BusinessName),
		"jobName":      structpb.NewStringValue(e.JobName),
	}
	if !e.HiredAt.IsZero() {
		fields["hiredAt"] = structpb.NewStringValue(e.HiredAt.UTC().Format(time.RFC3339))
	}
	return structValue(fields)
}

func numberValue(v int64) *structpb.Value {
	return structpb.NewNumberValue(float64(v))
}

func structValue(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}
