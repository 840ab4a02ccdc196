package amort

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// csvHeader is the export schema the downstream analytics jobs consume.
var csvHeader = []string{
	"Months", "Paymnt_Count", "Payment_Date",
	"Scheduled_Principal", "Scheduled_Interest", "Scheduled_Balance",
	"Prepay_Speed", "Default_Rate", "Recovery", "Servicing_CF", "Earnout_CF",
	"Balance", "Principal", "Default", "Prepay", "Interest_Amount", "Total_CF",
}

// Row is one period of a finished projection, in export order. Months is
// the 1-based row counter; PaymentCount is the zero-based period index.
type Row struct {
	Months             int
	PaymentCount       int
	PaymentDate        time.Time
	ScheduledPrincipal float64
	ScheduledInterest  float64
	ScheduledBalance   float64
	PrepaySpeed        float64
	DefaultRate        float64
	Recovery           float64
	ServicingCF        float64
	EarnoutCF          float64
	Balance            float64
	Principal          float64
	Default            float64
	Prepay             float64
	Interest           float64
	TotalCF            float64
}

// Rows flattens the projection, one entry per period 0..Term. It returns
// nil until CalcCashflows has run.
func (a *Amortization) Rows() []Row {
	n := len(a.TotalCF)
	if n == 0 {
		return nil
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		r := Row{
			Months:             i + 1,
			PaymentCount:       a.PmtCnt[i],
			PaymentDate:        a.PmtDate[i],
			ScheduledPrincipal: a.ScheduledPrincipal[i],
			ScheduledInterest:  a.ScheduledInterest[i],
			ScheduledBalance:   a.ScheduledBalance[i],
			PrepaySpeed:        a.PrepaySpeed[i],
			Recovery:           a.Recovery[i],
			ServicingCF:        a.ServicingCF[i],
			EarnoutCF:          a.EarnoutCF[i],
			Balance:            a.Balance[i],
			Principal:          a.Principal[i],
			Default:            a.Default[i],
			Prepay:             a.Prepay[i],
			Interest:           a.Interest[i],
			TotalCF:            a.TotalCF[i],
		}
		// The charge-off curve is stored untrimmed and can also be one
		// entry shorter than the output when it runs exactly to Term.
		if i < len(a.DefaultRate) {
			r.DefaultRate = a.DefaultRate[i]
		}
		rows = append(rows, r)
	}
	return rows
}

// WriteCSV renders the projection in the export schema.
func (a *Amortization) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range a.Rows() {
		rec := []string{
			strconv.Itoa(r.Months),
			strconv.Itoa(r.PaymentCount),
			r.PaymentDate.Format("2006-01-02"),
			fmtFloat(r.ScheduledPrincipal),
			fmtFloat(r.ScheduledInterest),
			fmtFloat(r.ScheduledBalance),
			fmtFloat(r.PrepaySpeed),
			fmtFloat(r.DefaultRate),
			fmtFloat(r.Recovery),
			fmtFloat(r.ServicingCF),
			fmtFloat(r.EarnoutCF),
			fmtFloat(r.Balance),
			fmtFloat(r.Principal),
			fmtFloat(r.Default),
			fmtFloat(r.Prepay),
			fmtFloat(r.Interest),
			fmtFloat(r.TotalCF),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the projection to path, truncating any existing file.
func (a *Amortization) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fmtFloat renders the shortest decimal form that round-trips the value.
func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
