//go:build basic || database

// Package integration contains integration tests for witdiff.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or, with Docker available: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedWitdiffPath holds the path to a shared witdiff binary built once for all tests.
	sharedWitdiffPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getWitdiffBinary returns the path to the witdiff binary, building it once if needed.
func getWitdiffBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "witdiff-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		witdiffPath := filepath.Join(tempDir, "witdiff")
		buildCmd := exec.Command("go", "build", "-o", witdiffPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if output, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build witdiff: %v\n%s", err, output))
		}

		sharedWitdiffPath = witdiffPath
	})

	return sharedWitdiffPath
}

// runWitdiffCommand runs the binary with an isolated HOME so default SQLite files stay in the test dir.
func runWitdiffCommand(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getWitdiffBinary(), args...)
	cmd.Dir = home
	cmd.Env = append(os.Environ(), "HOME="+home, "WITDIFF_COLOR=no")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

const bugXML = `<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <WORKITEMTYPE name="Bug" refname="Microsoft.VSTS.WorkItemTypes.Bug">
    <FIELDS>
      <FIELD name="Severity" refname="Microsoft.VSTS.Common.Severity" type="String" reportable="dimension">
        <ALLOWEDVALUES>
          <LISTITEM value="2 - High" />
          <LISTITEM value="1 - Critical" />
        </ALLOWEDVALUES>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Resolved" />
        <STATE value="Active" />
      </STATES>
    </WORKFLOW>
    <FORM>
      <Layout>
        <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
      </Layout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

// bugReorderedXML is bugXML with its unordered collections and attributes permuted.
const bugReorderedXML = `<witd:WITD xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef" version="1.0" application="Work item type editor">
  <WORKITEMTYPE refname="Microsoft.VSTS.WorkItemTypes.Bug" name="Bug">
    <FIELDS>
      <FIELD type="String" refname="Microsoft.VSTS.Common.Severity" name="Severity" reportable="dimension">
        <ALLOWEDVALUES>
          <LISTITEM value="1 - Critical" />
          <LISTITEM value="2 - High" />
        </ALLOWEDVALUES>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Active" />
        <STATE value="Resolved" />
      </STATES>
    </WORKFLOW>
    <FORM>
      <Layout>
        <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
      </Layout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

const taskXML = `<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <WORKITEMTYPE name="Task">
    <FIELDS>
      <FIELD name="Activity" refname="Microsoft.VSTS.Common.Activity" type="String" reportable="dimension" />
    </FIELDS>
    <WORKFLOW>
      <STATES><STATE value="To Do" /></STATES>
    </WORKFLOW>
    <FORM><Layout /></FORM>
  </WORKITEMTYPE>
</witd:WITD>`

// writeFixtures lays out a template and an export of it under dir.
// The export reorders Bug and lacks Task.
func writeFixtures(t *testing.T, dir string) (templateDir, exportDir string) {
	t.Helper()
	templateDir = filepath.Join(dir, "templates", "Agile")
	exportDir = filepath.Join(dir, "exports", "Fabrikam")
	files := map[string]string{
		filepath.Join(templateDir, "Bug.xml"):  bugXML,
		filepath.Join(templateDir, "Task.xml"): taskXML,
		filepath.Join(exportDir, "Bug.xml"):    bugReorderedXML,
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return templateDir, exportDir
}
