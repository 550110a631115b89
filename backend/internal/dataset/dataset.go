package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"symptom-checker/backend/internal/graph"
)

// DiseaseColumn is the header of the first column, holding the disease name
const DiseaseColumn = "diseases"

// Row is one dataset line: a disease and the symptoms flagged present for it
type Row struct {
	Disease  string
	Symptoms []string
}

// Case is an evaluation case. Expected is lower-cased and trimmed.
type Case struct {
	Symptoms []string
	Expected string
}

// Dataset is a disease/symptom indicator matrix
type Dataset struct {
	Symptoms []string // Column headers after the disease column
	Rows     []Row
}

// LoadFile reads a dataset CSV from disk
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a CSV whose first column is the disease name and whose remaining columns are
// symptom names with 1 (present) or 0 (absent) cells. Blank cells count as absent.
func Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs a %q column and at least one symptom column", DiseaseColumn)
	}
	if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), DiseaseColumn) {
		return nil, fmt.Errorf("first column must be %q, got %q", DiseaseColumn, header[0])
	}

	ds := &Dataset{Symptoms: make([]string, 0, len(header)-1)}
	for _, col := range header[1:] {
		ds.Symptoms = append(ds.Symptoms, strings.TrimSpace(col))
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		disease := strings.TrimSpace(record[0])
		if disease == "" {
			return nil, fmt.Errorf("line %d: blank disease name", line)
		}

		row := Row{Disease: disease, Symptoms: []string{}}
		for i, cell := range record[1:] {
			present, err := parseIndicator(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, ds.Symptoms[i], err)
			}
			if present && ds.Symptoms[i] != "" {
				row.Symptoms = append(row.Symptoms, ds.Symptoms[i])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func parseIndicator(cell string) (bool, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return false, fmt.Errorf("invalid indicator %q", cell)
	}
	return v == 1, nil
}

// Records groups rows by disease for ingestion. Repeated diseases have their symptom
// sets unioned; first-seen order is kept for both.
func (d *Dataset) Records() []graph.DiseaseRecord {
	index := map[string]int{}
	seen := map[string]map[string]bool{}
	records := []graph.DiseaseRecord{}

	for _, row := range d.Rows {
		i, ok := index[row.Disease]
		if !ok {
			i = len(records)
			index[row.Disease] = i
			seen[row.Disease] = map[string]bool{}
			records = append(records, graph.DiseaseRecord{Name: row.Disease, Symptoms: []string{}})
		}
		for _, s := range row.Symptoms {
			if seen[row.Disease][s] {
				continue
			}
			seen[row.Disease][s] = true
			records[i].Symptoms = append(records[i].Symptoms, s)
		}
	}
	return records
}

// Cases turns every row into an evaluation case
func (d *Dataset) Cases() []Case {
	cases := make([]Case, 0, len(d.Rows))
	for _, row := range d.Rows {
		cases = append(cases, Case{
			Symptoms: append([]string(nil), row.Symptoms...),
			Expected: strings.ToLower(strings.TrimSpace(row.Disease)),
		})
	}
	return cases
}
