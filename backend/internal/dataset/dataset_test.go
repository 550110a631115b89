package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"symptom-checker/backend/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `diseases,fever,cough,headache,sore throat
Flu,1,1,1,0
Common Cold,0,1,0,1
Migraine,0,0,1.0,
Flu,1,0,0,1
`

func TestLoad(t *testing.T) {
	ds, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"fever", "cough", "headache", "sore throat"}, ds.Symptoms)
	require.Len(t, ds.Rows, 4)
	assert.Equal(t, Row{Disease: "Flu", Symptoms: []string{"fever", "cough", "headache"}}, ds.Rows[0])
	assert.Equal(t, []string{"headache"}, ds.Rows[2].Symptoms)
}

func TestRecords_MergesRepeatedDiseases(t *testing.T) {
	ds, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []graph.DiseaseRecord{
		{Name: "Flu", Symptoms: []string{"fever", "cough", "headache", "sore throat"}},
		{Name: "Common Cold", Symptoms: []string{"cough", "sore throat"}},
		{Name: "Migraine", Symptoms: []string{"headache"}},
	}, ds.Records())
}

func TestCases(t *testing.T) {
	ds, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	cases := ds.Cases()
	require.Len(t, cases, 4)
	assert.Equal(t, "common cold", cases[1].Expected)
	assert.Equal(t, []string{"cough", "sore throat"}, cases[1].Symptoms)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no symptom columns", "diseases\nFlu\n"},
		{"wrong first column", "disease_name,fever\nFlu,1\n"},
		{"blank disease", "diseases,fever\n ,1\n"},
		{"bad indicator", "diseases,fever\nFlu,yes\n"},
		{"ragged row", "diseases,fever,cough\nFlu,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffDiseases,fever\nFlu,1\n"), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
