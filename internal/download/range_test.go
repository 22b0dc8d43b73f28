package download

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantErr   error
		wantNil   bool
	}{
		{"no header", "", 1000, 0, 0, nil, true},
		{"full span", "bytes=0-999", 1000, 0, 999, nil, false},
		{"open end", "bytes=500-", 1000, 500, 999, nil, false},
		{"suffix", "bytes=-200", 1000, 800, 999, nil, false},
		{"suffix larger than file", "bytes=-5000", 1000, 0, 999, nil, false},
		{"end clamped", "bytes=0-5000", 1000, 0, 999, nil, false},
		{"multi span takes first", "bytes=0-99,200-299", 1000, 0, 99, nil, false},
		{"missing prefix", "0-99", 1000, 0, 0, errInvalidRange, false},
		{"garbage", "bytes=abc-def", 1000, 0, 0, errInvalidRange, false},
		{"zero suffix", "bytes=-0", 1000, 0, 0, errInvalidRange, false},
		{"start past size", "bytes=1000-", 1000, 0, 0, errUnsatisfiable, false},
		{"inverted", "bytes=500-100", 1000, 0, 0, errUnsatisfiable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRange(tt.header, tt.size)
			if err != tt.wantErr {
				t.Fatalf("parseRange() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("parseRange() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("parseRange() = nil, want range")
			}
			if got.start != tt.wantStart || got.end != tt.wantEnd {
				t.Errorf("parseRange() = [%d,%d], want [%d,%d]", got.start, got.end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestByteRange_Length(t *testing.T) {
	r := byteRange{start: 10, end: 19}
	if r.length() != 10 {
		t.Errorf("length() = %d, want 10", r.length())
	}
	if r.contentRange(100) != "bytes 10-19/100" {
		t.Errorf("contentRange() = %q", r.contentRange(100))
	}
}

func TestSafeName(t *testing.T) {
	valid := []string{"movie_part01.mp4", "movie.zip", "a-b_c.d"}
	for _, s := range valid {
		if !safeName(s) {
			t.Errorf("safeName(%q) = false, want true", s)
		}
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, "../etc"}
	for _, s := range invalid {
		if safeName(s) {
			t.Errorf("safeName(%q) = true, want false", s)
		}
	}
}
