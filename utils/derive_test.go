package utils

import "testing"

func boolPtr(v bool) *bool { return &v }

func TestTrustOrDerive(t *testing.T) {
	forceFalse := func(bool) bool { return false }
	passthrough := func(v bool) bool { return v }

	tests := []struct {
		name    string
		raw     *bool
		derived bool
		clamp   func(bool) bool
		want    bool
	}{
		{"derived used when raw absent", nil, true, nil, true},
		{"derived false when raw absent", nil, false, nil, false},
		{"raw trusted over derived", boolPtr(false), true, nil, false},
		{"raw true trusted", boolPtr(true), false, nil, true},
		{"clamp overrides raw", boolPtr(true), true, forceFalse, false},
		{"clamp overrides derived", nil, true, forceFalse, false},
		{"passthrough clamp keeps value", boolPtr(true), false, passthrough, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrustOrDerive(tt.raw, tt.derived, tt.clamp); got != tt.want {
				t.Errorf("TrustOrDerive() = %v, want %v", got, tt.want)
			}
		})
	}
}
