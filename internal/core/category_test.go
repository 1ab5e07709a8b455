package core

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	wantExpenses := []CategoryID{
		"physiological", "safety", "belonging_love", "esteem",
		"cognitive", "aesthetic", "self_actualization", "transcendence",
	}
	wantIncomes := []CategoryID{"wage", "operational", "property", "transfer"}

	assertIDs(t, c.IDs(Expense), wantExpenses)
	assertIDs(t, c.IDs(Income), wantIncomes)

	if c.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", c.Len())
	}

	cat, ok := c.Lookup("wage")
	if !ok {
		t.Fatal("wage not found")
	}
	if cat.Group != Income {
		t.Errorf("wage group = %q, want income", cat.Group)
	}
	if cat.Color == "" || cat.BorderColor == "" || cat.Description == "" {
		t.Errorf("wage is missing presentation fields: %+v", cat)
	}

	if len(c.IDs("savings")) != 0 {
		t.Errorf("unknown group should have no ids")
	}
}

func TestCatalog_CategoriesAreCopies(t *testing.T) {
	c := DefaultCatalog()
	cats := c.Categories(Expense)
	cats[0].ID = "mutated"

	if got := c.IDs(Expense)[0]; got != "physiological" {
		t.Fatalf("catalog changed through returned slice: first id %q", got)
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name     string
		expenses []Category
		incomes  []Category
		wantErr  error
	}{
		{
			name:     "empty id",
			expenses: []Category{{ID: "  "}},
			wantErr:  ErrEmptyCategory,
		},
		{
			name:     "duplicate within group",
			expenses: []Category{{ID: "food"}, {ID: "food"}},
			wantErr:  ErrDuplicateCategory,
		},
		{
			name:     "duplicate across groups",
			expenses: []Category{{ID: "gifts"}},
			incomes:  []Category{{ID: "gifts"}},
			wantErr:  ErrDuplicateCategory,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.expenses, tt.incomes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewCatalog() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryID_Title(t *testing.T) {
	tests := map[CategoryID]string{
		"physiological":  "Physiological",
		"belonging_love": "Belonging_love",
		"":               "",
	}
	for id, want := range tests {
		if got := id.Title(); got != want {
			t.Errorf("%q.Title() = %q, want %q", id, got, want)
		}
	}
}

func TestSeries(t *testing.T) {
	if got := MonthLabel(4); got != "May" {
		t.Errorf("MonthLabel(4) = %q", got)
	}
	if got := MonthLabel(12); got != "" {
		t.Errorf("MonthLabel(12) = %q, want empty", got)
	}
	if err := CheckMonth(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CheckMonth(-1) = %v", err)
	}
	if err := CheckMonth(11); err != nil {
		t.Errorf("CheckMonth(11) = %v", err)
	}

	s := Fill(300)
	for i, v := range s {
		if v != 300 {
			t.Fatalf("Fill(300)[%d] = %v", i, v)
		}
	}

	s[7] = math.Inf(1)
	if err := s.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("Validate() = %v, want ErrNonFinite", err)
	}

	sl := SampleSeries.Slice()
	sl[0] = -1
	if SampleSeries[0] != 100 {
		t.Fatal("Slice() aliases the series")
	}
}

func TestSampleData(t *testing.T) {
	c := DefaultCatalog()
	d := SampleData(c, 2024)

	if len(d.Expenses) != 8 || len(d.Incomes) != 4 {
		t.Fatalf("sample sizes = %d/%d, want 8/4", len(d.Expenses), len(d.Incomes))
	}
	var sum float64
	for _, v := range d.Expenses["esteem"] {
		sum += v
	}
	if sum != 1200 {
		t.Errorf("sample yearly total = %v, want 1200", sum)
	}
	if d.Budget != Fill(300) {
		t.Errorf("sample budget = %v", d.Budget)
	}
	if err := d.Validate(c); err != nil {
		t.Errorf("sample data invalid: %v", err)
	}

	clone := d.Clone()
	s := clone.Expenses["esteem"]
	s[0] = 1
	clone.Expenses["esteem"] = s
	if d.Expenses["esteem"][0] != 100 {
		t.Error("Clone() shares maps with the original")
	}
}

func TestLedgerData_Validate(t *testing.T) {
	c := DefaultCatalog()

	misplaced := SampleData(c, 2024)
	misplaced.Expenses["wage"] = SampleSeries
	if err := misplaced.Validate(c); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("income category under expenses: got %v", err)
	}

	nan := SampleData(c, 2024)
	s := nan.Incomes["property"]
	s[2] = math.NaN()
	nan.Incomes["property"] = s
	if err := nan.Validate(c); !errors.Is(err, ErrNonFinite) {
		t.Errorf("NaN value: got %v", err)
	}

	badYear := SampleData(c, 0)
	if err := badYear.Validate(c); err == nil {
		t.Error("year 0 accepted")
	}
}

func assertIDs(t *testing.T, got, want []CategoryID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d ids, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
