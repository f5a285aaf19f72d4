package domain

import "testing"

func TestCertificatePatchIsZero(t *testing.T) {
	name := "updated"
	price := int64(500)

	tests := []struct {
		name  string
		patch CertificatePatch
		want  bool
	}{
		{"empty", CertificatePatch{}, true},
		{"name only", CertificatePatch{Name: &name}, false},
		{"price only", CertificatePatch{Price: &price}, false},
		{"tags only", CertificatePatch{Tags: []Tag{{Name: "spa"}}}, false},
		{"empty tag slice", CertificatePatch{Tags: []Tag{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}
