package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags rootCmdはパッケージ変数なので、前回の実行で設定されたフラグ値を既定値に戻す
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t, rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateTrainInspectPredict(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data", "sales.csv")
	artifacts := filepath.Join(dir, "artifacts")

	out, err := execute(t, "generate", "--output", data, "--start", "2024-09-25", "--days", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 150 rows")
	_, err = os.Stat(data)
	require.NoError(t, err)

	out, err = execute(t, "train", "--data", data, "--out", artifacts, "--trees", "5", "--max-depth", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "trained on 150 rows")
	assert.FileExists(t, filepath.Join(artifacts, "model.json"))
	assert.FileExists(t, filepath.Join(artifacts, "columns.json"))

	out, err = execute(t, "inspect", "--dir", artifacts, "--columns")
	require.NoError(t, err)
	assert.Contains(t, out, "random_forest")
	assert.Contains(t, out, "Price_INR")
	assert.Contains(t, out, "Product_Name_H&S Cool Menthol (650ml)")

	out, err = execute(t, "predict", "--dir", artifacts, "--date", "2024-10-02",
		"--product", "H&S Cool Menthol (650ml)", "--price", "467", "--spend", "6000", "--event", "National Sale")
	require.NoError(t, err)
	assert.Contains(t, out, `"predictedUnitsSold"`)

	_, err = execute(t, "predict", "--dir", artifacts, "--date", "2024-10-02", "--product", "Unknown Shampoo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_product")
}

func TestExecuteDoesNotLeakFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "predict", "--dir", dir, "--date", "2024-10-02", "--product", "x",
		"--price", "467", "--spend", "6000", "--event", "National Sale")
	require.Error(t, err)
	assert.Equal(t, 467.0, predictPrice)

	_, err = execute(t, "predict", "--dir", dir, "--date", "2024-10-02", "--product", "x")
	require.Error(t, err)
	assert.Equal(t, 0.0, predictPrice)
	assert.Equal(t, 0.0, predictSpend)
	assert.Equal(t, "Normal Day", predictEvent)
	assert.Equal(t, "artifacts", inspectDir)
}

func TestGenerateXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	out, err := execute(t, "generate", "--output", path, "--start", "2024-01-01", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 30 rows")
	assert.FileExists(t, path)
}

func TestGenerateRejectsBadStart(t *testing.T) {
	_, err := execute(t, "generate", "--output", filepath.Join(t.TempDir(), "x.csv"), "--start", "01/01/2024", "--days", "3")
	assert.Error(t, err)
}

func TestTrainMissingDataset(t *testing.T) {
	_, err := execute(t, "train", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestInspectMissingArtifacts(t *testing.T) {
	_, err := execute(t, "inspect", "--dir", t.TempDir())
	assert.Error(t, err)
}
