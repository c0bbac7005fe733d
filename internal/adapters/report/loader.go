// Package report loads employee-project assignment reports from
// delimiter-separated files into domain records.
package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	dates "github.com/okian/tandem/internal/domain/dates"
	dedupe "github.com/okian/tandem/internal/domain/dedupe"
	model "github.com/okian/tandem/internal/domain/model"
)

// Required header columns. Matching is exact after whitespace trim;
// extra columns are tolerated and ignored.
const (
	colEmpID     = "EmpID"
	colProjectID = "ProjectID"
	colDateFrom  = "DateFrom"
	colDateTo    = "DateTo"
)

var requiredColumns = []string{colEmpID, colProjectID, colDateFrom, colDateTo}

// utf8BOM sometimes prefixes Windows CSV exports and would otherwise
// glue itself onto the first header name.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// identitySep builds duplicate-detection keys; a unit separator keeps
// composite keys unambiguous.
const identitySep = "\x1f"

// LoadStats accounts for what happened to the input rows.
type LoadStats struct {
	Loaded     int // records materialized
	Skipped    int // rows dropped for field-count mismatch
	Duplicates int // exact duplicates dropped, when filtering is on
}

// Loader reads assignment reports. The zero value is not usable; build
// one with NewLoader.
type Loader struct {
	normalizer *dates.Normalizer
	delimiter  rune
	deduper    dedupe.Deduper // nil means duplicates pass through
}

// NewLoader builds a Loader around the given date normalizer.
func NewLoader(n *dates.Normalizer, opts ...Option) *Loader {
	l := &Loader{
		normalizer: n,
		delimiter:  ',',
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads every row of one report.
//
// The header must carry the required columns or the load fails with a
// *SchemaError. Rows whose field count differs from the header's are
// silently skipped and counted. Date cells go through the normalizer;
// the first failure aborts the whole load with a *RowParseError, so a
// report either loads completely or not at all. A start cell that
// normalizes to the ongoing sentinel aborts the same way, since every
// record needs a concrete first day.
func (l *Loader) Load(ctx context.Context, r io.Reader) ([]model.AssignmentRecord, LoadStats, error) {
	var stats LoadStats

	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, stats, fmt.Errorf("strip byte order mark: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = l.delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, &SchemaError{Missing: append([]string(nil), requiredColumns...)}
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, taken := index[name]; !taken {
			index[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Missing: missing}
	}

	var records []model.AssignmentRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", row, err)
		}
		if len(fields) != len(header) {
			stats.Skipped++
			continue
		}

		from, err := l.normalizeStart(fields[index[colDateFrom]])
		if err != nil {
			return nil, stats, &RowParseError{Row: row, Column: colDateFrom, Err: err}
		}
		to, err := l.normalizer.Normalize(strings.TrimSpace(fields[index[colDateTo]]))
		if err != nil {
			return nil, stats, &RowParseError{Row: row, Column: colDateTo, Err: err}
		}

		rec := model.AssignmentRecord{
			EmpID:     strings.TrimSpace(fields[index[colEmpID]]),
			ProjectID: strings.TrimSpace(fields[index[colProjectID]]),
			From:      from,
			To:        to,
		}

		if l.deduper != nil && l.deduper.SeenAndRecord(ctx, identityKey(rec)) {
			stats.Duplicates++
			continue
		}

		records = append(records, rec)
		stats.Loaded++
	}

	return records, stats, nil
}

// normalizeStart normalizes a DateFrom cell, rejecting the ongoing
// sentinel: an assignment can run without an end, never without a
// start.
func (l *Loader) normalizeStart(raw string) (dates.Date, error) {
	end, err := l.normalizer.Normalize(strings.TrimSpace(raw))
	if err != nil {
		return dates.Date{}, err
	}
	d, ok := end.Date()
	if !ok {
		return dates.Date{}, ErrOngoingStart
	}
	return d, nil
}

func identityKey(rec model.AssignmentRecord) string {
	return strings.Join([]string{rec.EmpID, rec.ProjectID, rec.From.String(), rec.To.String()}, identitySep)
}
