package amort_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/meenmo/loancast/amort"
	"github.com/meenmo/loancast/tables"
)

var wantHeader = []string{
	"Months", "Paymnt_Count", "Payment_Date",
	"Scheduled_Principal", "Scheduled_Interest", "Scheduled_Balance",
	"Prepay_Speed", "Default_Rate", "Recovery", "Servicing_CF", "Earnout_CF",
	"Balance", "Principal", "Default", "Prepay", "Interest_Amount", "Total_CF",
}

func TestRowsNilBeforeRun(t *testing.T) {
	t.Parallel()
	co, pp := fixtureTables(t)
	a := amort.NewAmortization(co, pp)
	if rows := a.Rows(); rows != nil {
		t.Errorf("Rows() = %d entries before any projection, want nil", len(rows))
	}
}

func TestRowsMirrorSeries(t *testing.T) {
	t.Parallel()
	a := runC4(t)

	rows := a.Rows()
	if len(rows) != 37 {
		t.Fatalf("len(Rows()) = %d, want 37", len(rows))
	}
	for i, r := range rows {
		if r.Months != i+1 || r.PaymentCount != i {
			t.Fatalf("row %d: Months/PaymentCount = %d/%d", i, r.Months, r.PaymentCount)
		}
		if r.Balance != a.Balance[i] || r.TotalCF != a.TotalCF[i] {
			t.Fatalf("row %d diverges from series", i)
		}
		if r.DefaultRate != a.DefaultRate[i] {
			t.Fatalf("row %d: DefaultRate = %v, want raw curve value %v", i, r.DefaultRate, a.DefaultRate[i])
		}
	}
}

func TestRowsPadShortChargeOffCurve(t *testing.T) {
	t.Parallel()

	// A curve running exactly to Term has 36 rates against 37 output
	// rows; the final row reports zero instead of reading past the end.
	co, err := tables.NewChargeOffTable([]string{"36-C4"}, [][]float64{co36C4[:36]})
	if err != nil {
		t.Fatalf("charge-off fixture: %v", err)
	}
	pp := tables.NewPrepayTable(map[int][]float64{36: pp36})

	ln := c4Loan(t)
	ln.ChargeOffColumn = tables.ByKey("36-C4")
	a := amort.NewAmortization(co, pp)
	if err := a.CalcCashflows(ln); err != nil {
		t.Fatalf("CalcCashflows: %v", err)
	}

	rows := a.Rows()
	if rows[35].DefaultRate != co36C4[35] {
		t.Errorf("row 35: DefaultRate = %v, want %v", rows[35].DefaultRate, co36C4[35])
	}
	if rows[36].DefaultRate != 0 {
		t.Errorf("row 36: DefaultRate = %v, want 0 past the curve", rows[36].DefaultRate)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	a := runC4(t)

	var buf bytes.Buffer
	if err := a.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 38 {
		t.Fatalf("got %d records, want header + 37 rows", len(records))
	}

	header := records[0]
	if len(header) != len(wantHeader) {
		t.Fatalf("header has %d columns, want %d", len(header), len(wantHeader))
	}
	for i, name := range wantHeader {
		if header[i] != name {
			t.Errorf("header[%d] = %q, want %q", i, header[i], name)
		}
	}

	first := records[1]
	if first[0] != "1" || first[1] != "0" || first[2] != "2015-08-24" || first[16] != "-7875" {
		t.Errorf("period-0 record = %v", first)
	}

	// Values must round-trip through the text form.
	for i, rec := range records[1:] {
		bal, err := strconv.ParseFloat(rec[11], 64)
		if err != nil {
			t.Fatalf("row %d: bad Balance %q: %v", i, rec[11], err)
		}
		if bal != a.Balance[i] {
			t.Fatalf("row %d: Balance %v does not round-trip %v", i, bal, a.Balance[i])
		}
	}
	if got := records[1][7]; got != "0.00595" {
		t.Errorf("period-0 Default_Rate = %q, want the raw first curve value", got)
	}
}

func TestWriteCSVFile(t *testing.T) {
	t.Parallel()
	a := runC4(t)

	path := filepath.Join(t.TempDir(), "cashflow.csv")
	if err := a.WriteCSVFile(path); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(raw), "Months,Paymnt_Count,Payment_Date") {
		t.Errorf("unexpected file prefix: %q", string(raw[:40]))
	}
	if got := strings.Count(string(raw), "\n"); got != 38 {
		t.Errorf("file has %d lines, want 38", got)
	}
}
