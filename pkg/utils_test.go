package pkg

import (
	"reflect"
	"testing"
)

func TestGetenv(t *testing.T) {
	t.Setenv("DLA_TEST_SET", "value")
	if got := Getenv("DLA_TEST_SET", "fallback"); got != "value" {
		t.Errorf("Getenv() = %q, want %q", got, "value")
	}
	if got := Getenv("DLA_TEST_UNSET_"+t.Name(), "fallback"); got != "fallback" {
		t.Errorf("Getenv() = %q, want %q", got, "fallback")
	}
}

func TestGetenvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"", false},
		{"yes", false}, // not understood by strconv
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("DLA_TEST_BOOL", tt.value)
			if got := GetenvBool("DLA_TEST_BOOL"); got != tt.want {
				t.Errorf("GetenvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{"", nil},
		{" , ,", nil},
		{"a=1", map[string]string{"a": "1"}},
		{"env=dev, owner = docs", map[string]string{"env": "dev", "owner": "docs"}},
		{"flag,=orphan", map[string]string{"flag": ""}},
		{"k=a=b", map[string]string{"k": "a=b"}},
		{"k=1,k=2", map[string]string{"k": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseKeyValues(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeyValues(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
