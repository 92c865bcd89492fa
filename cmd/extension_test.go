package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	// fin-hello prints the environment it received.
	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	for _, name := range []string{%q, %q, %q, %q} {
		fmt.Printf("%%s=%%s\n", name, os.Getenv(name))
	}
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvDataFile, EnvStorage, EnvPaymentPolicy, EnvVerbose)

	helloCmdPath := filepath.Join(tempDir, "fin-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write fin-hello source: %v", err)
	}
	cmd := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile fin-hello: %v", err)
	}

	finBinaryPath := filepath.Join(tempDir, "fin")
	cmd = exec.Command("go", "build", "-o", finBinaryPath, "../fin")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile fin binary: %v", err)
	}

	expectedDataFile := filepath.Join(tempDir, "random_ledger.json")
	args := []string{
		"-data", expectedDataFile,
		"-policy", "cumulative",
		"-v",
		"hello", "world",
	}

	finCmd := exec.Command(finBinaryPath, args...)
	finCmd.Dir = tempDir
	finCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	finCmd.Stdout = &stdout
	finCmd.Stderr = &stderr
	if err := finCmd.Run(); err != nil {
		t.Fatalf("fin command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{
		EnvDataFile + "=" + expectedDataFile,
		EnvStorage + "=file",
		EnvPaymentPolicy + "=cumulative",
		EnvVerbose + "=true",
		"args=[world]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, but got:\n%s", want, output)
		}
	}
}

func TestExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, _ := RunExtension("nope", nil); found {
		t.Errorf("RunExtension() found a missing extension")
	}
}
