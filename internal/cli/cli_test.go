package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/config"
)

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, dir, "", args...)
}

func executeWithInput(t *testing.T, dir, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--project", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func projectDir(t *testing.T) string {
	t.Helper()
	t.Setenv(config.HomeEnv, "")
	return t.TempDir()
}

func TestSetThenShowPersistsAcrossRuns(t *testing.T) {
	dir := projectDir(t)

	out, err := execute(t, dir, "set", "brand", "brandName", "Acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Brand Identity")

	out, err = execute(t, dir, "set", "brand", "brandName", "Acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Brand Identity unchanged")

	out, err = execute(t, dir, "show", "brand", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"brandName": "Acme"`)

	out, err = execute(t, dir, "show", "brand")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
}

func TestSetParsesFormInput(t *testing.T) {
	dir := projectDir(t)

	_, err := execute(t, dir, "set", "brand", "brandName", "Acme")
	require.NoError(t, err)
	_, err = execute(t, dir, "set", "brand", "associations", "Trustworthy | 5; Fast | 4")
	require.NoError(t, err)

	out, err := execute(t, dir, "show", "brand", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "Trustworthy")

	out, err = execute(t, dir, "status", "brand")
	require.NoError(t, err)
	assert.Contains(t, out, "Brand Identity · step 1 of 10 · 10%")
	assert.Contains(t, out, "Current step 100% filled")
	assert.Contains(t, out, "✓  1.")

	_, err = execute(t, dir, "set", "businessplan", "businessType", "franchise")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestSetJSONPatchFromStdin(t *testing.T) {
	dir := projectDir(t)

	out, err := executeWithInput(t, dir, `{"brandName":"Piped","tagline":7}`, "set", "brand", "--json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped:")
	assert.Contains(t, out, "tagline")
	assert.Contains(t, out, "Updated Brand Identity")

	out, err = execute(t, dir, "show", "brand", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"brandName": "Piped"`)

	_, err = execute(t, dir, "set", "brand", "--json", "[1,2]")
	assert.Error(t, err)
}

func TestGotoMarkAndReset(t *testing.T) {
	dir := projectDir(t)

	out, err := execute(t, dir, "goto", "brand", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Brand Identity · step 4 of 10")

	_, err = execute(t, dir, "goto", "brand", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 10")

	out, err = execute(t, dir, "mark", "brand", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked step 3 of Brand Identity complete")

	out, err = execute(t, dir, "status", "brand")
	require.NoError(t, err)
	assert.Contains(t, out, "step 3 of 10")
	assert.Contains(t, out, "✓  3.")

	_, err = execute(t, dir, "reset", "brand")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	out, err = execute(t, dir, "reset", "brand", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Brand Identity reset")

	out, err = execute(t, dir, "status", "brand")
	require.NoError(t, err)
	assert.Contains(t, out, "step 1 of 10 · 0%")
}

func TestStatusListsJourneysAndSheets(t *testing.T) {
	dir := projectDir(t)

	out, err := execute(t, dir, "status")
	require.NoError(t, err)
	for _, want := range []string{"Brand Identity", "Business Plan", "Name Checker", "Business Model Canvas", "SWOT Analysis"} {
		assert.Contains(t, out, want)
	}

	_, err = execute(t, dir, "status", "missing")
	assert.Error(t, err)
}

func TestJourneysIncludesCustomJourneys(t *testing.T) {
	dir := projectDir(t)
	require.NoError(t, config.InitDir(dir))
	custom := `key: launch
version: 1.0.0
name: Launch Checklist
fields:
  - key: date
steps:
  - slug: when
    require_all: [date]
`
	require.NoError(t, os.WriteFile(filepath.Join(config.Home(dir), "journeys", "launch.yaml"), []byte(custom), 0o644))

	out, err := execute(t, dir, "journeys")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch Checklist")
	assert.Contains(t, out, "custom-launch")
	assert.Contains(t, out, "custom")
	assert.Contains(t, out, "built-in")

	out, err = execute(t, dir, "set", "launch", "date", "2026-05-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Launch Checklist")
}

func TestExportJourneyAndSheet(t *testing.T) {
	dir := projectDir(t)

	_, err := execute(t, dir, "set", "brand", "brandName", "Acme")
	require.NoError(t, err)
	out, err := execute(t, dir, "export", "brand", "--format", "md", "--name", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported ")
	path := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Exported "))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme")

	_, err = execute(t, dir, "sheet", "add", "swot", "strengths", "Fast delivery")
	require.NoError(t, err)
	out, err = execute(t, dir, "export", "swot", "-f", "xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), ".xlsx"), out)

	_, err = execute(t, dir, "export", "brand", "--format", "png")
	assert.Error(t, err)
}

func TestSheetCommands(t *testing.T) {
	dir := projectDir(t)

	out, err := execute(t, dir, "sheet", "add", "swot", "strengths", "Fast delivery")
	require.NoError(t, err)
	assert.Contains(t, out, "Added to Strengths")

	_, err = execute(t, dir, "sheet", "set", "swot", "threats", "Incumbents", " ", "Regulation")
	require.NoError(t, err)

	out, err = execute(t, dir, "sheet", "show", "swot")
	require.NoError(t, err)
	assert.Contains(t, out, "SWOT Analysis")
	assert.Contains(t, out, "1. Fast delivery")
	assert.Contains(t, out, "2. Regulation")

	_, err = execute(t, dir, "sheet", "remove", "swot", "strengths", "1")
	require.NoError(t, err)
	_, err = execute(t, dir, "sheet", "remove", "swot", "strengths", "1")
	assert.Error(t, err)
	_, err = execute(t, dir, "sheet", "add", "swot", "dreams", "Anything")
	assert.Error(t, err)
	_, err = execute(t, dir, "sheet", "show", "mystery")
	assert.Error(t, err)

	_, err = execute(t, dir, "sheet", "clear", "swot")
	assert.Error(t, err)
	out, err = execute(t, dir, "sheet", "clear", "swot", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "SWOT Analysis cleared")
}

func TestNamesSaveListRemove(t *testing.T) {
	dir := projectDir(t)

	_, err := execute(t, dir, "names", "save")
	assert.Error(t, err)

	out, err := execute(t, dir, "names", "search", "Acme", "Co")
	require.NoError(t, err)
	assert.Contains(t, out, "Searching acme-co")

	out, err = execute(t, dir, "names", "save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved Acme Co")
	fields := strings.Fields(strings.TrimSpace(out))
	id := fields[len(fields)-1]

	out, err = execute(t, dir, "names", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Co")
	assert.Contains(t, out, id)

	out, err = execute(t, dir, "names", "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)

	out, err = execute(t, dir, "names", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved names")
}

func TestBackupExportAndImport(t *testing.T) {
	dir := projectDir(t)
	bundlePath := filepath.Join(t.TempDir(), "bundle.json")

	_, err := execute(t, dir, "set", "brand", "brandName", "Acme")
	require.NoError(t, err)
	out, err := execute(t, dir, "backup", "export", "--out", bundlePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup written to "+bundlePath)

	_, err = execute(t, dir, "reset", "brand", "--force")
	require.NoError(t, err)

	out, err = execute(t, dir, "backup", "import", bundlePath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ brand-strategy")

	out, err = execute(t, dir, "show", "brand", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"brandName": "Acme"`)

	out, err = execute(t, dir, "backup", "export")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(config.Home(dir), "backups"))

	_, err = execute(t, dir, "backup", "import", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestBackupImportReportsSkippedSections(t *testing.T) {
	dir := projectDir(t)
	bundlePath := filepath.Join(t.TempDir(), "bundle.json")
	bundle := `{"format":"waypoint-backup/v1","id":"b1","exportedAt":"2026-03-04T10:30:00Z","sections":{"brand-strategy":"{\"document\":{\"brandName\":7}}","swot":"{\"strengths\":[\"Fast\"]}"}}`
	require.NoError(t, os.WriteFile(bundlePath, []byte(bundle), 0o644))

	out, err := execute(t, dir, "backup", "import", bundlePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 section(s), skipped 1")
	assert.Contains(t, out, "✓ swot")
	assert.Contains(t, out, "✗ brand-strategy")
}

func TestBrandCommands(t *testing.T) {
	dir := projectDir(t)

	out, err := execute(t, dir, "brand", "colors", "--primary", "abc", "--accent", "#f59e0b")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary:    #AABBCC")
	assert.Contains(t, out, "Accent:     #F59E0B")
	assert.Contains(t, out, "Secondary:  (none)")

	_, err = execute(t, dir, "brand", "colors", "--secondary", "blue")
	assert.Error(t, err)

	out, err = execute(t, dir, "brand", "typography", "Inter")
	require.NoError(t, err)
	assert.Contains(t, out, "Typography set to Inter")

	_, err = execute(t, dir, "brand", "logo", filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	logo := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png"), 0o644))
	out, err = execute(t, dir, "brand", "logo", logo)
	require.NoError(t, err)
	assert.Contains(t, out, "Logo set to "+logo)

	out, err = execute(t, dir, "brand", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Typography: Inter")
	assert.Contains(t, out, "Logo:       "+logo)
}
