package model

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"Sh0rt!", true},
		{"alllowercase1!", true},
		{"ALLUPPERCASE1!", true},
		{"NoDigitsHere!", true},
		{"NoSymbol123", true},
		{"Wrong#Symbol1", true},
		{"Valid1!pass", false},
		{"Abcdef1@", false},
		{"P4ssw0rd?Long", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
