package handlers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/services/coordinator"
)

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestFieldReader(t *testing.T) {
	in := mustStruct(t, map[string]any{
		"sessionId":   "12",
		"businessId":  3.0,
		"amount":      10.5,
		"admin":       true,
		"permissions": []any{"finance", "hiring"},
		"overrides":   map[string]any{"3": true},
		"empty":       nil,
	})

	r := &fieldReader{in: in}
	assert.Equal(t, "12", r.readString("sessionId"))
	assert.Equal(t, int64(3), r.readInt64("businessId"))
	assert.Equal(t, 10.5, r.readNumber("amount"))
	assert.True(t, r.readBool("admin"))
	assert.Equal(t, []string{"finance", "hiring"}, r.readStrings("permissions"))
	assert.Equal(t, map[string]any{"3": true}, r.readMap("overrides"))
	assert.Nil(t, r.readMap("empty"))
	assert.Equal(t, "", r.readString("empty"))
	assert.Equal(t, "", r.readString("missing"))
	assert.Equal(t, 0, r.readInt("missing"))
	assert.NoError(t, r.err)
}

func TestFieldReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		read func(r *fieldReader)
	}{
		{"string as number", map[string]any{"v": 1.0}, func(r *fieldReader) { r.readString("v") }},
		{"fractional integer", map[string]any{"v": 1.5}, func(r *fieldReader) { r.readInt64("v") }},
		{"number as string", map[string]any{"v": "1"}, func(r *fieldReader) { r.readNumber("v") }},
		{"grade out of range", map[string]any{"v": float64(math.MaxInt32) + 1}, func(r *fieldReader) { r.readInt("v") }},
		{"bool as string", map[string]any{"v": "yes"}, func(r *fieldReader) { r.readBool("v") }},
		{"list of numbers", map[string]any{"v": []any{1.0}}, func(r *fieldReader) { r.readStrings("v") }},
		{"list as object", map[string]any{"v": []any{"finance"}}, func(r *fieldReader) { r.readMap("v") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fieldReader{in: mustStruct(t, tt.in)}
			tt.read(r)
			assert.Error(t, r.err)
		})
	}
}

func TestFieldReader_KeepsFirstError(t *testing.T) {
	r := &fieldReader{in: mustStruct(t, map[string]any{"a": 1.0, "b": true})}
	r.readString("a")
	r.readString("b")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "a must be a string")
}

func TestResultToProto(t *testing.T) {
	hired := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data any
		want any
	}{
		{
			name: "funds",
			data: coordinator.FundsData{BusinessID: 1, Funds: 900, Cash: 100},
			want: map[string]any{"businessId": 1.0, "funds": 900.0, "cash": 100.0},
		},
		{
			name: "employee",
			data: &entities.Employee{ID: 7, BusinessID: 1, CitizenID: "P1", Name: "Ana", Grade: 4, Wage: 75, HiredAt: hired},
			want: map[string]any{
				"id": 7.0, "businessId": 1.0, "citizenId": "P1", "name": "Ana", "grade": 4.0, "wage": 75.0,
				"businessName": "", "jobName": "", "hiredAt": "2024-05-01T12:00:00Z",
			},
		},
		{
			name: "grade rows",
			data: []entities.GradeMetadata{{Grade: 4, Label: "Chief", Wage: 75, IsBoss: true}},
			want: []any{map[string]any{"grade": 4.0, "label": "Chief", "wage": 75.0, "isboss": true}},
		},
		{
			name: "businesses without funds",
			data: []coordinator.BusinessData{{ID: 1, Name: "Mission Row", Owner: "OWNER", JobName: "police"}},
			want: []any{map[string]any{"id": 1.0, "name": "Mission Row", "owner": "OWNER", "jobName": "police"}},
		},
		{
			name: "permission grants",
			data: coordinator.PermissionsData{BusinessID: 1, Grants: map[string][]string{"2": {"finance", "manage"}, "*": {"*"}}},
			want: map[string]any{
				"businessId": 1.0,
				"grants":     map[string]any{"2": []any{"finance", "manage"}, "*": []any{"*"}},
			},
		},
		{
			name: "allowed",
			data: map[string]bool{"allowed": true},
			want: map[string]any{"allowed": true},
		},
		{
			name: "empty employee list",
			data: []entities.Employee{},
			want: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := resultToProto(coordinator.Result{Success: true, Code: coordinator.CodeOK, Data: tt.data, RequestID: "r1"})
			require.NoError(t, err)
			m := out.AsMap()
			assert.Equal(t, true, m["success"])
			assert.Equal(t, "ok", m["code"])
			assert.Equal(t, "r1", m["requestId"])
			assert.Equal(t, tt.want, m["data"])
		})
	}
}

func TestResultToProto_NoData(t *testing.T) {
	out, err := resultToProto(coordinator.Result{Code: coordinator.CodeRateLimited, Message: "please wait"})
	require.NoError(t, err)
	_, ok := out.GetFields()["data"]
	assert.False(t, ok)
	assert.Equal(t, "rate_limited", out.AsMap()["code"])
}

func TestResultToProto_UnsupportedData(t *testing.T) {
	_, err := resultToProto(coordinator.Result{Data: struct{}{}})
	assert.Error(t, err)
}
