package job

import "testing"

func TestParseTimestamp_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"30", 30},
		{"600", 600},
		{"0:30", 30},
		{"10:00", 600},
		{"0:10:00", 600},
		{"1:00:00", 3600},
		{"2:03:04", 7384},
		{"90:00", 5400},
		{" 600 ", 600},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_EquivalentForms(t *testing.T) {
	forms := []string{"600", "10:00", "0:10:00"}
	for _, f := range forms {
		got, err := ParseTimestamp(f)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) error = %v", f, err)
		}
		if got != 600 {
			t.Errorf("ParseTimestamp(%q) = %d, want 600", f, got)
		}
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"  ",
		"abc",
		"-5",
		"1:60",
		"1:2",
		"1:100",
		"1:2:3:4",
		"10:",
		":30",
		"1.5",
		"10:0a",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseTimestamp(in); err == nil {
				t.Errorf("ParseTimestamp(%q) = nil error, want failure", in)
			}
		})
	}
}
