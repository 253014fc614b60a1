package reconcile

import (
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

func TestParseDayMonthYear(t *testing.T) {
	tests := []struct {
		input     string
		wantDay   int
		wantMonth time.Month
		wantYear  int
		wantOK    bool
	}{
		{"15/03/24", 15, time.March, 2024, true},
		{"1/4/2025", 1, time.April, 2025, true},
		{" 31/12/1999 ", 31, time.December, 1999, true},
		{"15/13/24", 0, 0, 0, false},
		{"2024-03-15", 0, 0, 0, false},
		{"15/03/202", 0, 0, 0, false},
		{"aa/03/24", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			day, month, year, ok := ParseDayMonthYear(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDayMonthYear(%q) ok = %v, expected %v", tt.input, ok, tt.wantOK)
			}
			if day != tt.wantDay || month != tt.wantMonth || year != tt.wantYear {
				t.Errorf("ParseDayMonthYear(%q) = %d/%d/%d, expected %d/%d/%d",
					tt.input, day, month, year, tt.wantDay, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestInCompetency(t *testing.T) {
	march := model.Competency{Year: 2024, Month: time.March}

	tests := []struct {
		name  string
		alloc model.Allocation
		want  bool
	}{
		{"fact date in period", model.Allocation{ID: "1", Date: "15/03/24"}, true},
		{"posting date overrides fact date", model.Allocation{ID: "2", Date: "15/03/24", PostingDate: "02/04/24"}, false},
		{"posting date brings item into period", model.Allocation{ID: "3", Date: "28/02/24", PostingDate: "01/03/2024"}, true},
		{"other year", model.Allocation{ID: "4", Date: "15/03/23"}, false},
		{"blank posting date falls back", model.Allocation{ID: "5", Date: "10/03/24", PostingDate: "  "}, true},
		{"empty date fails open", model.Allocation{ID: "6"}, true},
		{"malformed date fails open", model.Allocation{ID: "7", Date: "março"}, true},
		{"malformed posting date fails open", model.Allocation{ID: "8", Date: "10/01/24", PostingDate: "n/a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InCompetency(tt.alloc, march); got != tt.want {
				t.Errorf("InCompetency(%+v) = %v, expected %v", tt.alloc, got, tt.want)
			}
		})
	}
}

func TestSplitByCompetencyPreservesOrder(t *testing.T) {
	march := model.Competency{Year: 2024, Month: time.March}
	allocs := []model.Allocation{
		{ID: "a", Date: "01/03/24"},
		{ID: "b", Date: "01/04/24"},
		{ID: "c", Date: ""},
		{ID: "d", Date: "01/02/24"},
		{ID: "e", Date: "31/03/2024"},
	}

	in, out := SplitByCompetency(allocs, march)

	if got := allocIDs(in); !equalStrings(got, []string{"a", "c", "e"}) {
		t.Errorf("in-period ids = %v", got)
	}
	if got := allocIDs(out); !equalStrings(got, []string{"b", "d"}) {
		t.Errorf("out-of-period ids = %v", got)
	}
}

func allocIDs(allocs []model.Allocation) []string {
	ids := make([]string, 0, len(allocs))
	for _, a := range allocs {
		ids = append(ids, a.ID)
	}
	return ids
}

func txIDs(txs []model.Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
