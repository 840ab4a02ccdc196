package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/meenmo/loancast/amort"
	"github.com/meenmo/loancast/cache"
	"github.com/meenmo/loancast/config"
	"github.com/meenmo/loancast/irr"
	"github.com/meenmo/loancast/logging"
	"github.com/meenmo/loancast/tables"
	"github.com/meenmo/loancast/utils"
)

type loanInput struct {
	TaskID             string   `json:"task_id,omitempty"`
	Grade              string   `json:"grade"`
	IssueDate          string   `json:"issue_date"`
	Term               int      `json:"term"`
	Coupon             float64  `json:"coupon"`
	Invested           float64  `json:"invested"`
	OutstandingBalance float64  `json:"outstanding_balance"`
	RecoveryRate       float64  `json:"recovery_rate"`
	Premium            float64  `json:"premium"`
	ServicingFee       float64  `json:"servicing_fee"`
	EarnoutFee         float64  `json:"earnout_fee"`
	AmortFreq          string   `json:"amort_freq,omitempty"`
	ChargeOffColumn    *int     `json:"chargeoff_column,omitempty"`
	DefaultMultiplier  *float64 `json:"default_multiplier,omitempty"`
	PrepayMultiplier   *float64 `json:"prepay_multiplier,omitempty"`
}

type loanOutput struct {
	TaskID     string  `json:"task_id,omitempty"`
	Grade      string  `json:"grade,omitempty"`
	Term       int     `json:"term,omitempty"`
	CSV        string  `json:"csv,omitempty"`
	IRR        float64 `json:"irr"`
	AnnualIRR  float64 `json:"annual_irr"`
	Iterations int     `json:"iterations,omitempty"`
	Converged  bool    `json:"converged"`
	Cached     bool    `json:"cached,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// cacheEntry is the envelope stored per projection so a hit can restore
// both the summary and the CSV without recomputing.
type cacheEntry struct {
	Result loanOutput `json:"result"`
	CSV    string     `json:"csv"`
}

func main() {
	configPath := flag.String("config", "settings.yml", "Settings file path")
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	outDir := flag.String("outdir", "", "Override output.dir from the settings file")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: loancast -config <settings.yml> -input <loans.json>")
		fmt.Fprintln(os.Stderr, "Project loan cashflows under prepay and charge-off assumptions and solve the IRR.")
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: loancast -config <settings.yml> -input <loans.json>")
			os.Exit(2)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		exitError(err.Error())
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	if err := logging.Init(cfg.Log.Env); err != nil {
		exitError(fmt.Sprintf("init logging: %v", err))
	}
	defer logging.Sync()
	log := logging.Get()

	raw, err := readInput(path)
	if err != nil {
		exitError(fmt.Sprintf("read input: %v", err))
	}
	inputs, isArray, err := parseInputs(raw)
	if err != nil {
		exitError(fmt.Sprintf("parse JSON: %v", err))
	}

	co, pp, sourceID, err := loadTables(cfg)
	if err != nil {
		exitError(fmt.Sprintf("load curve tables: %v", err))
	}
	log.Infow("loaded curve tables",
		"source", sourceID,
		"chargeoff_columns", co.Width(),
		"prepay_terms", len(pp.Terms()),
	)

	var store cache.Cache
	if cfg.Cache.Enabled {
		rc := cache.NewRedis(cfg.Cache.Addr, cfg.Cache.TTL.Std())
		defer rc.Close()
		store = rc
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		exitError(fmt.Sprintf("create output dir: %v", err))
	}

	hadError := false
	outputs := make([]loanOutput, 0, len(inputs))
	for i, in := range inputs {
		out, err := processLoan(in, i, co, pp, sourceID, store, cfg.Output.Dir)
		if err != nil {
			hadError = true
			log.Warnw("loan projection failed", "task_id", in.TaskID, "grade", in.Grade, "err", err)
			outputs = append(outputs, loanOutput{TaskID: in.TaskID, Grade: in.Grade, Term: in.Term, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}

	if isArray {
		b, _ := json.Marshal(outputs)
		fmt.Println(string(b))
	} else {
		b, _ := json.Marshal(outputs[0])
		fmt.Println(string(b))
	}

	if hadError {
		logging.Sync()
		os.Exit(1)
	}
}

func processLoan(in loanInput, idx int, co *tables.ChargeOffTable, pp *tables.PrepayTable, sourceID string, store cache.Cache, outDir string) (*loanOutput, error) {
	log := logging.Get()

	issued, err := utils.ParseDate(in.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid issue_date: %v", err)
	}
	ln := amort.Loan{
		Grade:              in.Grade,
		IssueDate:          issued,
		Term:               in.Term,
		Coupon:             in.Coupon,
		Invested:           in.Invested,
		OutstandingBalance: in.OutstandingBalance,
		RecoveryRate:       in.RecoveryRate,
		Premium:            in.Premium,
		ServicingFee:       in.ServicingFee,
		EarnoutFee:         in.EarnoutFee,
		AmortFreq:          amort.Frequency(in.AmortFreq),
	}
	if in.ChargeOffColumn != nil {
		ln.ChargeOffColumn = tables.ByIndex(*in.ChargeOffColumn)
	}
	if err := ln.Validate(); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(outDir, csvName(idx, in, ln))

	// The task id names the output file but must not split the cache
	// across identical loans.
	keyIn := in
	keyIn.TaskID = ""
	payload, _ := json.Marshal(keyIn)
	key := cache.Key(sourceID, string(payload))

	if store != nil {
		if raw, ok := store.Get(key); ok {
			var entry cacheEntry
			if err := json.Unmarshal([]byte(raw), &entry); err == nil {
				if err := os.WriteFile(csvPath, []byte(entry.CSV), 0o644); err != nil {
					return nil, fmt.Errorf("write %s: %v", csvPath, err)
				}
				entry.Result.TaskID = in.TaskID
				entry.Result.CSV = csvPath
				entry.Result.Cached = true
				return &entry.Result, nil
			}
			log.Warnw("discarding undecodable cache entry", "key", key)
		}
	}

	a := amort.NewAmortization(co, pp)
	if in.DefaultMultiplier != nil {
		a.DefaultMultiplier = *in.DefaultMultiplier
	}
	if in.PrepayMultiplier != nil {
		a.PrepayMultiplier = *in.PrepayMultiplier
	}
	if err := a.CalcCashflows(ln); err != nil {
		return nil, err
	}

	res := irr.Solve(a.TotalCF, 0)
	if !res.Converged {
		log.Warnw("irr solve did not converge, reporting best estimate",
			"task_id", in.TaskID, "rate", res.Rate, "iterations", res.Iterations)
	}
	perYear, _ := ln.Frequency().PeriodsPerYear()

	var buf bytes.Buffer
	if err := a.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("render csv: %v", err)
	}
	if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %v", csvPath, err)
	}

	out := &loanOutput{
		TaskID:     in.TaskID,
		Grade:      in.Grade,
		Term:       in.Term,
		CSV:        csvPath,
		IRR:        res.Rate,
		AnnualIRR:  res.Rate * float64(perYear),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}

	if store != nil {
		stored := *out
		stored.TaskID = ""
		stored.CSV = ""
		b, _ := json.Marshal(cacheEntry{Result: stored, CSV: buf.String()})
		// Not critical if this fails; the projection already succeeded.
		if err := store.Set(key, string(b)); err != nil {
			log.Warnw("failed to save projection to cache", "key", key, "err", err)
		}
	}
	return out, nil
}

// csvName builds the per-loan output filename. Tasks are named after
// their id, anonymous loans by position and cohort.
func csvName(idx int, in loanInput, ln amort.Loan) string {
	if id := sanitize(in.TaskID); id != "" {
		return "cashflow_" + id + ".csv"
	}
	return fmt.Sprintf("cashflow_%02d_%s.csv", idx+1, sanitize(ln.ChargeOffKey()))
}

// sanitize keeps filenames portable: anything outside [A-Za-z0-9._-]
// becomes a dash.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

func loadTables(cfg *config.Config) (*tables.ChargeOffTable, *tables.PrepayTable, string, error) {
	switch cfg.Input.Source {
	case config.SourcePostgres:
		pg := cfg.Input.Postgres
		db, err := tables.OpenPostgres(pg.Conn)
		if err != nil {
			return nil, nil, "", err
		}
		defer db.Close()
		co, pp, err := tables.LoadPostgres(db, pg.ChargeOffTable, pg.PrepayTable)
		if err != nil {
			return nil, nil, "", err
		}
		return co, pp, "postgres:" + pg.ChargeOffTable + "/" + pg.PrepayTable, nil
	default:
		co, pp, err := tables.LoadWorkbook(cfg.Input.Filename, cfg.Input.DefaultSheet, cfg.Input.PrepaySheet)
		if err != nil {
			return nil, nil, "", err
		}
		return co, pp, "excel:" + filepath.Base(cfg.Input.Filename), nil
	}
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]loanInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []loanInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input loanInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []loanInput{input}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(loanOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
