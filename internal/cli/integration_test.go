package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsontyper runs the command through go run with an empty config file so
// that no config from the surrounding directories is picked up.
func jsontyper(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI test in short mode")
	}

	configFile := filepath.Join(t.TempDir(), "jsontyper.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("{}\n"), 0o644))

	cmd := exec.Command("go", append([]string{"run", "../../main.go", "-c", configFile}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"name": "John Doe",
		"age": 30,
		"address": {
			"street": "123 Main St",
			"zip": "12345"
		},
		"phones": [
			{"type": "home", "number": "555-1234"},
			{"type": "work", "number": "555-5678", "ext": 12}
		],
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "test.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0o644))
	outputFile := filepath.Join(tempDir, "output.go")

	_, stderr, err := jsontyper(t, "", "-i", jsonFile, "-o", outputFile, "-p", "testpackage", "--singularize")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	generatedCode, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	code := string(generatedCode)

	assert.Contains(t, code, "package testpackage")
	assert.Contains(t, code, "type RootType struct")
	assert.Regexp(t, `Name\s+string\s+\x60json:"name"\x60`, code)
	assert.Regexp(t, `Age\s+int64\s+\x60json:"age"\x60`, code)
	assert.Regexp(t, `Address\s+RootTypeAddress\s+\x60json:"address"\x60`, code)
	assert.Regexp(t, `Phones\s+\[\]RootTypePhone\s+\x60json:"phones"\x60`, code)
	assert.Regexp(t, `Active\s+bool\s+\x60json:"active"\x60`, code)

	assert.Contains(t, code, "type RootTypeAddress struct")
	assert.Contains(t, code, "type RootTypePhone struct")
	assert.Regexp(t, `Ext\s+int64\s+\x60json:"ext"\x60`, code)
	assert.Contains(t, stderr, "Generated code written to")
}

func TestCLI_StdinStdoutRust(t *testing.T) {
	stdout, stderr, err := jsontyper(t, `{"userName": "Jane", "type": "admin"}`, "-l", "rust", "-r", "Account")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "use serde::{Deserialize, Serialize};")
	assert.Contains(t, stdout, "#[derive(Debug, Clone, Serialize, Deserialize)]")
	assert.Contains(t, stdout, "pub struct Account {")
	assert.Contains(t, stdout, "    pub type_: String,")
	assert.Contains(t, stdout, "    #[serde(rename = \"userName\")]\n    pub user_name: String,")
}

func TestCLI_ArrayInput(t *testing.T) {
	stdout, stderr, err := jsontyper(t, `[{"id": 1}, {"id": 2, "name": "Item 2"}]`, "generate", "-r", "Items")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "type Items []ItemsItem")
	assert.Contains(t, stdout, "type ItemsItem struct")
	assert.Regexp(t, `Id\s+int64\s+\x60json:"id"\x60`, stdout)
}

func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := jsontyper(t, `{"name": "Invalid JSON, "age": 30}`)
	assert.Error(t, err, "CLI should fail with invalid JSON")
	assert.Contains(t, stderr, "JSON parsing error")
}

func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := jsontyper(t, "", "-r", "Empty")
	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr, "empty input")
}

func TestCLI_Version(t *testing.T) {
	stdout, _, err := jsontyper(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jsontyper version")
}

func TestCLI_Help(t *testing.T) {
	stdout, _, err := jsontyper(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "generate")
	assert.Contains(t, stdout, "batch")
	assert.Contains(t, stdout, "watch")
	assert.Contains(t, stdout, "--lang")
}
