package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		total     int64
		wantPage  int
		wantPages int
	}{
		{name: "First page", raw: "1", total: 30, wantPage: 1, wantPages: 3},
		{name: "Garbage goes to first", raw: "abc", total: 30, wantPage: 1, wantPages: 3},
		{name: "Zero goes to first", raw: "0", total: 30, wantPage: 1, wantPages: 3},
		{name: "Overflow goes to last", raw: "99", total: 30, wantPage: 3, wantPages: 3},
		{name: "Empty listing", raw: "2", total: 0, wantPage: 1, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.raw, 12, tt.total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, (tt.wantPage-1)*12, p.Offset())
		})
	}
}
