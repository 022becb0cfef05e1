package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"defaults", Params{}, 1, DefaultLimit},
		{"negative page", Params{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"passthrough", Params{Page: 4, Limit: 50}, 4, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Fatalf("Normalize() = %+v, want page=%d limit=%d", got, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if got := p.Offset(); got != 40 {
		t.Fatalf("Offset() = %d, want 40", got)
	}
}

func TestNewResult(t *testing.T) {
	res := NewResult(Params{Page: 2, Limit: 20}, 45)
	if res.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", res.TotalPages)
	}
	if res.Total != 45 || res.Page != 2 || res.Limit != 20 {
		t.Fatalf("unexpected result %+v", res)
	}

	empty := NewResult(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("TotalPages for empty = %d, want 1", empty.TotalPages)
	}
}
