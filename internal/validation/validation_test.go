package validation

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	rules := TagRules()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "MEM", false},
		{"with underscore", "CPU_ALL", false},
		{"numbers", "CPU001", false},
		{"with hyphen", "DISK-BUSY", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"hidden", ".hidden", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x00b", true},
		{"with dot", "MEM.new", true},
		{"space", "CPU ALL", true},
		{"too long", strings.Repeat("A", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input, rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestIsHidden(t *testing.T) {
	for _, name := range []string{"db01.example.com", "10.0.0.1", "web server", "app+02", "host@dc1"} {
		if IsHidden(name) {
			t.Errorf("IsHidden(%q) = true", name)
		}
	}
	for _, name := range []string{".snapshot", ".", ".."} {
		if !IsHidden(name) {
			t.Errorf("IsHidden(%q) = false", name)
		}
	}
}

func TestValidateTag(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"CPU_ALL", false},
		{"DISKREAD", false},
		{"JFSFILE", false},
		{"AAA", true},
		{"ZZZZ", true},
		{"BBBP", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateTag(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateTags(t *testing.T) {
	if err := ValidateTags([]string{"CPU_ALL", "MEM"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTags([]string{"CPU_ALL", "MEM", "CPU_ALL"}); err == nil {
		t.Error("expected duplicate error")
	}
	if err := ValidateTags([]string{"MEM", "ZZZZ"}); err == nil {
		t.Error("expected structural tag error")
	}
}

func TestValidateHourWindow(t *testing.T) {
	tests := []struct {
		start, end int
		wantErr    bool
	}{
		{0, 24, false},
		{9, 17, false},
		{23, 24, false},
		{0, 1, false},
		{9, 9, true},
		{17, 9, true},
		{-1, 10, true},
		{0, 25, true},
		{24, 24, true},
		{0, 0, true},
	}

	for _, tt := range tests {
		err := ValidateHourWindow(tt.start, tt.end)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateHourWindow(%d, %d) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
		}
	}
}

func TestValidateDateFilter(t *testing.T) {
	for _, ok := range []string{"", "2015-06", "JUN-2015", "15-JUN"} {
		if err := ValidateDateFilter(ok); err != nil {
			t.Errorf("ValidateDateFilter(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"2015,06", "JUN\n"} {
		if err := ValidateDateFilter(bad); err == nil {
			t.Errorf("ValidateDateFilter(%q): expected error", bad)
		}
	}
}

func TestValidateMask(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"date", "150615", false},
		{"glob", "db??", false},
		{"class", "[0-9]", false},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"unclosed class", "[0-9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMask(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMask(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestMaskPattern(t *testing.T) {
	if got := MaskPattern(""); got != "**.nmon" {
		t.Errorf("unexpected pattern %q", got)
	}
	if got := MaskPattern("1506"); got != "*1506*.nmon" {
		t.Errorf("unexpected pattern %q", got)
	}
}
