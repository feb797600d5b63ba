package versions

import (
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"11.0", "9.0", 1},
		{"9.0", "11.0", -1},
		{"2.0", "1.12", 1},
		{"1.12", "2.0", -1},
		{"8.0", "8.0", 0},
		{"8", "8.0", 0},
		{"8.1", "8", 1},
		{"7.2", "8.0", -1},
		{"8.0-beta", "8.0", -1},
		{"8.0", "8.0-beta", 1},
		{"8.1-beta", "8.0", 1},
		{"v10.1", "10.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		token      string
		wantParts  []int
		wantSuffix string
	}{
		{"8.0", []int{8, 0}, ""},
		{"10.1", []int{10, 1}, ""},
		{"7.0-beta", []int{7, 0}, "beta"},
		{"ATT&CK-v", nil, "ATT&CK-v"},
		{"3", []int{3}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			v := Parse(tt.token)
			if !slices.Equal(v.Parts, tt.wantParts) {
				t.Errorf("Parts = %v, want %v", v.Parts, tt.wantParts)
			}
			if v.Suffix != tt.wantSuffix {
				t.Errorf("Suffix = %q, want %q", v.Suffix, tt.wantSuffix)
			}
		})
	}
}

func TestSortAndLatest(t *testing.T) {
	tokens := []string{"9.0", "11.0", "1.12", "2.0", "10.1", "8.0-beta"}
	Sort(tokens)

	want := []string{"1.12", "2.0", "8.0-beta", "9.0", "10.1", "11.0"}
	if !slices.Equal(tokens, want) {
		t.Errorf("Sort() = %v, want %v", tokens, want)
	}

	if got := Latest([]string{"7.2", "8.0", "11.0", "9.0"}); got != "11.0" {
		t.Errorf("Latest() = %q, want 11.0", got)
	}
	if got := Latest(nil); got != "" {
		t.Errorf("Latest(nil) = %q, want empty", got)
	}
}

func TestNewer(t *testing.T) {
	if !Newer("11.0", "9.0") {
		t.Error("11.0 should be newer than 9.0")
	}
	if Newer("9.0", "9.0") {
		t.Error("a version is not newer than itself")
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		token   string
		markers []string
		want    bool
	}{
		{"8.0", nil, false},
		{"7.0-beta", nil, true},
		{"7.0-BETA", nil, true},
		{"9.0-rc1", nil, true},
		{"9.0-preview", []string{"preview"}, true},
		{"9.0-beta", []string{"preview"}, false},
	}

	for _, tt := range tests {
		if got := IsPrerelease(tt.token, tt.markers); got != tt.want {
			t.Errorf("IsPrerelease(%q, %v) = %v, want %v", tt.token, tt.markers, got, tt.want)
		}
	}
}
