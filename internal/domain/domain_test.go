package domain_test

import (
	"testing"

	"inkpad/internal/domain"
)

func TestPageHasNext(t *testing.T) {
	tests := []struct {
		page     domain.Page[int]
		expected bool
	}{
		{domain.Page[int]{Page: 1, PageSize: 10, Total: 0}, false},
		{domain.Page[int]{Page: 1, PageSize: 10, Total: 10}, false},
		{domain.Page[int]{Page: 1, PageSize: 10, Total: 11}, true},
		{domain.Page[int]{Page: 2, PageSize: 10, Total: 25}, true},
		{domain.Page[int]{Page: 3, PageSize: 10, Total: 25}, false},
	}

	for _, tt := range tests {
		if got := tt.page.HasNext(); got != tt.expected {
			t.Fatalf("HasNext(page=%d, total=%d) = %v, want %v",
				tt.page.Page, tt.page.Total, got, tt.expected)
		}
	}
}
