package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize()
	if p.Page != 1 {
		t.Fatalf("expected default page 1, got %d", p.Page)
	}
	if p.Limit != 10 {
		t.Fatalf("expected default limit 10, got %d", p.Limit)
	}
	if p.SortField != "created_at" || !p.SortDesc {
		t.Fatalf("expected created_at DESC default, got %s desc=%v", p.SortField, p.SortDesc)
	}
}

func TestNormalizeClampsLimit(t *testing.T) {
	p := Params{Page: 3, Limit: 1000}.Normalize()
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
	if p.Page != 3 {
		t.Fatalf("page should be preserved, got %d", p.Page)
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{0, 0, 0},
		{1, 10, 0},
		{2, 10, 10},
		{5, 25, 100},
	}
	for _, tt := range tests {
		p := Params{Page: tt.page, Limit: tt.limit}
		if got := p.Offset(); got != tt.want {
			t.Fatalf("Offset(page=%d limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}

func TestOrderClause(t *testing.T) {
	p := Params{SortField: "total_amount", SortDesc: false}
	if got := p.OrderClause(); got != "total_amount ASC" {
		t.Fatalf("unexpected order clause %q", got)
	}
	p = Params{}.Normalize()
	if got := p.OrderClause(); got != "created_at DESC" {
		t.Fatalf("unexpected default order clause %q", got)
	}
}

func TestNewPageRoundsTotalPagesUp(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 23, Params{Page: 1, Limit: 10})
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Total != 23 {
		t.Fatalf("expected total 23, got %d", page.Total)
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[int](nil, 0, Params{})
	if page.Items == nil {
		t.Fatal("items should be an empty slice, not nil")
	}
}
