package main

import (
	"bytes"
	"encoding/json"
	"gotlb/internal/report"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = `
name: Sample
entries:
  - name: IFoo
    kind: interface
    flags: [oleautomation]
    functions:
      - {name: AddRef}
      - {name: Run}
  - name: DFooEvents
    kind: dispatch
    functions:
      - {name: Done}
  - name: Foo
    kind: coclass
    implements:
      - {ref: IFoo, flags: [default]}
      - {ref: DFooEvents, flags: [default, source]}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDescription(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte(description), 0644))
	return path
}

func TestDump_JSON(t *testing.T) {
	stdout, _, err := execute(t, "dump", "--metadataPath", writeDescription(t), "--format", "json")
	require.NoError(t, err)

	var decoded report.Library
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "Sample", decoded.Name)
	require.Len(t, decoded.Interfaces, 2)
	assert.Equal(t, "IFoo", decoded.Interfaces[0].Name)
	require.Len(t, decoded.Interfaces[0].Functions, 1)
	assert.Equal(t, "Run", decoded.Interfaces[0].Functions[0].Name)
	assert.True(t, decoded.Interfaces[0].UsedAsImplementation)
	assert.True(t, decoded.Interfaces[1].UsedAsSource)
}

func TestDump_SkipLinkAndFilter(t *testing.T) {
	stdout, _, err := execute(t, "dump", "--metadataPath", writeDescription(t), "-f", "json", "--skip-link", "--interface", "DFooEvents")
	require.NoError(t, err)

	var decoded report.Library
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	require.Len(t, decoded.Interfaces, 1)
	assert.Equal(t, "DFooEvents", decoded.Interfaces[0].Name)
	assert.False(t, decoded.Interfaces[0].UsedAsSource)
}

func TestDump_ConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gotlb.yaml")
	content := "metadataPath: " + writeDescription(t) + "\nformat: json\ninterfaces: [IFoo]\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	stdout, _, err := execute(t, "dump", "--config", configPath)
	require.NoError(t, err)

	var decoded report.Library
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	require.Len(t, decoded.Interfaces, 1)
	assert.Equal(t, "IFoo", decoded.Interfaces[0].Name)
}

func TestDump_FlagOverridesInvalidConfigValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gotlb.yaml")
	content := "metadataPath: " + writeDescription(t) + "\nformat: bogus\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	stdout, _, err := execute(t, "dump", "--config", configPath, "--format", "json")
	require.NoError(t, err)

	var decoded report.Library
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "Sample", decoded.Name)
}

func TestDump_InvalidConfigValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gotlb.yaml")
	content := "metadataPath: " + writeDescription(t) + "\nformat: bogus\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	_, stderr, err := execute(t, "dump", "--config", configPath)
	assert.ErrorContains(t, err, "unknown format")
	assert.Contains(t, stderr, "invalid configuration")
}

func TestDump_InvalidFormat(t *testing.T) {
	_, stderr, err := execute(t, "dump", "--metadataPath", writeDescription(t), "--format", "xml")
	assert.Error(t, err)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestDump_MissingMetadata(t *testing.T) {
	_, stderr, err := execute(t, "dump", "--metadataPath", filepath.Join(t.TempDir(), "missing.winmd"))
	assert.Error(t, err)
	assert.Contains(t, stderr, "could not open type library")
}
