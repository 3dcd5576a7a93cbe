package composition

import (
	"reflect"
	"testing"

	"github.com/example/lcs/internal/models"
)

func TestReadiness(t *testing.T) {
	tests := []struct {
		name string
		refs []ResolvedRef
		want string
	}{
		{
			name: "empty refs are invalid",
			refs: nil,
			want: models.ReadinessInvalid,
		},
		{
			name: "missing ref is invalid",
			refs: []ResolvedRef{{Found: false}},
			want: models.ReadinessInvalid,
		},
		{
			name: "deprecated ref is invalid",
			refs: []ResolvedRef{
				{Found: true, Status: models.StatusConfirmed},
				{Found: true, Status: models.StatusDeprecated},
			},
			want: models.ReadinessInvalid,
		},
		{
			name: "missing ref wins over awaiting",
			refs: []ResolvedRef{
				{Found: true, Status: models.StatusDraft},
				{Found: false},
			},
			want: models.ReadinessInvalid,
		},
		{
			name: "draft ref awaits confirmation",
			refs: []ResolvedRef{
				{Found: true, Status: models.StatusConfirmed},
				{Found: true, Status: models.StatusDraft},
			},
			want: models.ReadinessAwaiting,
		},
		{
			name: "submitted ref awaits confirmation",
			refs: []ResolvedRef{{Found: true, Status: models.StatusSubmitted}},
			want: models.ReadinessAwaiting,
		},
		{
			name: "returned ref awaits confirmation",
			refs: []ResolvedRef{{Found: true, Status: models.StatusReturned}},
			want: models.ReadinessAwaiting,
		},
		{
			name: "all confirmed is ready",
			refs: []ResolvedRef{
				{Found: true, Status: models.StatusConfirmed},
				{Found: true, Status: models.StatusConfirmed},
			},
			want: models.ReadinessReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Readiness(tt.refs); got != tt.want {
				t.Errorf("Readiness = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveDomains(t *testing.T) {
	tests := []struct {
		name string
		sets [][]string
		want []string
	}{
		{
			name: "union is sorted and deduplicated",
			sets: [][]string{{"linux"}, {"postgres", "linux"}, {"aws"}},
			want: []string{"aws", "linux", "postgres"},
		},
		{
			name: "empty domains dropped",
			sets: [][]string{{""}, {"linux"}},
			want: []string{"linux"},
		},
		{
			name: "no sets",
			sets: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDomains(tt.sets...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveDomains = %v, want %v", got, tt.want)
			}
		})
	}
}
