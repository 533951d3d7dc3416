package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		page, size    int
		total         int
		wantPageCount int
		wantSkip      int
	}{
		{"empty set", 1, 12, 0, 0, 0},
		{"exact pages", 1, 10, 30, 3, 0},
		{"partial last page", 2, 10, 31, 4, 10},
		{"single record", 1, 12, 1, 1, 0},
		{"page beyond data", 5, 10, 7, 1, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.size, tt.total)
			if p.PageCount != tt.wantPageCount {
				t.Errorf("PageCount = %d, want %d", p.PageCount, tt.wantPageCount)
			}
			if p.Skip() != tt.wantSkip {
				t.Errorf("Skip = %d, want %d", p.Skip(), tt.wantSkip)
			}
			if p.Total != tt.total {
				t.Errorf("Total = %d, want %d", p.Total, tt.total)
			}
		})
	}
}
