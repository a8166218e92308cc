package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestDeriveCustomID(t *testing.T) {
	accountID := uuid.MustParse("3f9a1b2c-0000-4000-8000-000000000000")

	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      string
	}{
		{
			name:      "uppercases initials",
			firstName: "awa",
			lastName:  "diop",
			want:      "3f9a1b2c_AD",
		},
		{
			name:      "handles missing last name",
			firstName: "Awa",
			lastName:  "",
			want:      "3f9a1b2c_A",
		},
		{
			name:      "handles accented initials",
			firstName: "élodie",
			lastName:  "ndiaye",
			want:      "3f9a1b2c_ÉN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveCustomID(accountID, tt.firstName, tt.lastName); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
