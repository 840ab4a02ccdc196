package tables

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// OpenPostgres connects to the curve database through the lib/pq driver
// and verifies the connection.
func OpenPostgres(conn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// LoadPostgres reads both curve tables from long-format rows.
//
// The charge-off table holds (cohort text, month int, rate float) and the
// prepay table (term int, month int, speed float), months starting at 1
// with no gaps. Charge-off columns come out in cohort order so positional
// selection is deterministic.
func LoadPostgres(db *sql.DB, chargeOffTable, prepayTable string) (*ChargeOffTable, *PrepayTable, error) {
	co, err := loadChargeOffRows(db, chargeOffTable)
	if err != nil {
		return nil, nil, err
	}
	pp, err := loadPrepayRows(db, prepayTable)
	if err != nil {
		return nil, nil, err
	}
	return co, pp, nil
}

func loadChargeOffRows(db *sql.DB, table string) (*ChargeOffTable, error) {
	q := fmt.Sprintf("SELECT cohort, month, rate FROM %s ORDER BY cohort, month", pq.QuoteIdentifier(table))
	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	byName := make(map[string][]float64)
	for rows.Next() {
		var cohort string
		var month int
		var rate float64
		if err := rows.Scan(&cohort, &month, &rate); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		col, ok := byName[cohort]
		if !ok {
			names = append(names, cohort)
		}
		if month != len(col)+1 {
			return nil, fmt.Errorf("%s cohort %q: month %d out of sequence", table, cohort, month)
		}
		byName[cohort] = append(col, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i] = byName[name]
	}
	return NewChargeOffTable(names, cols)
}

func loadPrepayRows(db *sql.DB, table string) (*PrepayTable, error) {
	q := fmt.Sprintf("SELECT term, month, speed FROM %s ORDER BY term, month", pq.QuoteIdentifier(table))
	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[int][]float64)
	for rows.Next() {
		var term, month int
		var speed float64
		if err := rows.Scan(&term, &month, &speed); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if month != len(cols[term])+1 {
			return nil, fmt.Errorf("%s term %d: month %d out of sequence", table, term, month)
		}
		cols[term] = append(cols[term], speed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return NewPrepayTable(cols), nil
}
