package corpus

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/evitrend/internal/model"
)

const sampleCorpus = `[
  {
    "type": "Activation",
    "id": "s1",
    "belief": 0.9,
    "subj": {"name": "CDK12", "db_refs": {"HGNC": "24224"}},
    "obj": {"name": "BRCA1"},
    "evidence": [
      {"pmid": "111", "text": "CDK12 drives BRCA1 & friends <in vivo>.", "year": 2019, "correctness": 1},
      {"pmid": "222", "text": "Noise.", "year": 2020, "correctness": 0},
      {"pmid": "333", "text": "Odd year.", "year": "2021", "correctness": 1}
    ]
  },
  {
    "type": "Inhibition",
    "id": "s2",
    "subj": {"name": "CDK12"},
    "obj": {"name": "BRCA1"},
    "evidence": [{"text": "No pmid, no year.", "correctness": 1}]
  }
]`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statements.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCorpus), 0644))
	return path
}

func intPtr(v int) *int { return &v }

func TestLoad(t *testing.T) {
	stmts, err := Load(writeCorpus(t))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, model.Triple{Subject: "CDK12", Type: "Activation", Object: "BRCA1"}, stmts[0].Triple())
	assert.Equal(t, 2, stmts[0].ValidatedCount())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestSave_BacksUpAndRoundTrips(t *testing.T) {
	path := writeCorpus(t)
	stmts, err := Load(path)
	require.NoError(t, err)

	stmts[0].Evidence[1] = stmts[0].Evidence[1].WithCorrectness(model.Supported)
	require.NoError(t, Save(path, stmts))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, sampleCorpus, string(backup))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "BRCA1 & friends <in vivo>", "HTML characters must not be escaped")
	assert.Contains(t, out, `"belief": 0.9`)
	assert.Contains(t, out, `"year": "2021"`)
	assert.Contains(t, out, "\n  {\n")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].ValidatedCount())
}

func TestSave_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	require.NoError(t, Save(path, []model.Statement{{ID: "x", Type: "Activation"}}))

	_, err := os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err), "no backup when nothing was there")
}

func TestSave_FailedWriteKeepsCorpus(t *testing.T) {
	path := writeCorpus(t)
	stmts, err := Load(path)
	require.NoError(t, err)

	rename = func(from, to string) error {
		if to == path {
			return errors.New("disk full")
		}
		return os.Rename(from, to)
	}
	defer func() { rename = os.Rename }()

	assert.Error(t, Save(path, stmts[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCorpus, string(data), "corpus must survive a failed save")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file %s left behind", e.Name())
	}
}

func TestSave_WithoutBackupKeepsFirstBackup(t *testing.T) {
	path := writeCorpus(t)
	stmts, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, Backup(path))

	stmts[0].Evidence[1] = stmts[0].Evidence[1].WithCorrectness(model.Supported)
	require.NoError(t, Save(path, stmts, WithoutBackup()))
	require.NoError(t, Save(path, stmts[:1], WithoutBackup()))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, sampleCorpus, string(backup), "backup must hold the corpus from before the first save")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestBackup_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	require.NoError(t, Backup(path))
	_, err := os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestApply(t *testing.T) {
	all := []model.Statement{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	require.NoError(t, Apply(all, []int{2, 0}, []model.Statement{{ID: "C"}, {ID: "A"}}))
	assert.Equal(t, []string{"A", "b", "C"}, []string{all[0].ID, all[1].ID, all[2].ID})

	assert.Error(t, Apply(all, []int{0}, nil))
	assert.Error(t, Apply(all, []int{3}, []model.Statement{{ID: "x"}}))
	assert.Equal(t, "A", all[0].ID, "failed apply must not write")
}

func TestExportValidated(t *testing.T) {
	stmts, err := Load(writeCorpus(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results", "correct.json")
	n, err := ExportValidated(stmts, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)

	assert.Equal(t, map[string]any{
		"stmt_id":       "s1",
		"subj":          "CDK12",
		"obj":           "BRCA1",
		"relationship":  "Activation",
		"pmid":          "111",
		"year":          float64(2019),
		"evidence_text": "CDK12 drives BRCA1 & friends <in vivo>.",
	}, records[0])
	assert.Equal(t, "2021", records[1]["year"])
	assert.Equal(t, "", records[2]["year"])
	assert.Equal(t, "", records[2]["pmid"])
}

func TestExportValidated_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	n, err := ExportValidated(nil, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestFileNames(t *testing.T) {
	tr := model.Triple{Subject: "CDK12", Type: "Activation", Object: "BRCA1/2"}
	assert.Equal(t, "correct_CDK12_BRCA1_2_Activation.json", ValidatedFileName(tr))
	assert.Equal(t, "conflict_correct_CDK12_BRCA1_2_Activation.json", ConflictFileName(tr))
	assert.Equal(t, "Activation_CDK12_BRCA1_2_yearly_counts", YearlyCountsFileName(tr))
}

func TestExportYearlyCountsTSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tr := model.Triple{Subject: "CDK12", Type: "Activation", Object: "BRCA1"}

	path, err := ExportYearlyCountsTSV(model.YearlyCounts{2021: 1, 2019: 3, 2020: 2}, dir, tr)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Activation_CDK12_BRCA1_yearly_counts.tsv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "year\tcount\n2019\t3\n2020\t2\n2021\t1\n", string(data))
}

func TestExportYearlyCountsXLSX(t *testing.T) {
	dir := t.TempDir()
	tr := model.Triple{Subject: "CDK12", Type: "Activation", Object: "BRCA1"}

	path, err := ExportYearlyCountsXLSX(model.YearlyCounts{2020: 2, 2019: 3}, dir, tr)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(XLSXSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "count"},
		{"2019", "3"},
		{"2020", "2"},
	}, rows)
}
