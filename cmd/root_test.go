package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestEnvironment points every tarvault location at temp directories
// and selects the in-process backend. Returns the vault directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	vaultDir := filepath.Join(base, "vault")

	t.Setenv("TARVAULT_DIR", vaultDir)
	t.Setenv("TARVAULT_BACKEND", "native")
	t.Setenv("TARVAULT_CLEAR_CACHE", "")
	t.Setenv("TARVAULT_HISTORY", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("NO_COLOR", "1")

	return vaultDir
}

// changeDir switches the working directory until the test ends.
func changeDir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change back to original directory: %v", err)
		}
	})
}

// runCLI executes tarvault with args and captures its output.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestCLI_Usage(t *testing.T) {
	setupTestEnvironment(t)

	t.Run("NoArguments", func(t *testing.T) {
		stdout, stderr, code := runCLI(t)
		if code != 1 {
			t.Errorf("Expected exit code 1, got %d", code)
		}
		if !strings.Contains(stderr, "Usage:") {
			t.Errorf("Expected usage on stderr, got %q", stderr)
		}
		if stdout != "" {
			t.Errorf("Expected nothing on stdout, got %q", stdout)
		}
	})

	t.Run("Help", func(t *testing.T) {
		stdout, _, code := runCLI(t, "-h")
		if code != 0 {
			t.Errorf("Expected exit code 0, got %d", code)
		}
		if !strings.Contains(stdout, "Usage:") || !strings.Contains(stdout, "--encrypt") {
			t.Errorf("Expected help on stdout, got %q", stdout)
		}
	})

	t.Run("HelpWinsOverConflicts", func(t *testing.T) {
		_, _, code := runCLI(t, "-e", "-d", "-l", "-h")
		if code != 0 {
			t.Errorf("Expected exit code 0, got %d", code)
		}
	})

	invalid := map[string][]string{
		"StoreAndRetrieve":   {"-e", "-d", "x"},
		"StoreAndList":       {"-e", "-l", "x"},
		"RetrieveCompressed": {"-d", "-z", "x"},
		"RetrieveWithKey":    {"-d", "-k", "y", "x"},
		"ListRemove":         {"-l", "-r"},
		"StoreNoItem":        {"-e"},
		"ItemWithoutMode":    {"notes"},
		"UnknownFlag":        {"--frobnicate"},
	}
	for name, args := range invalid {
		t.Run(name, func(t *testing.T) {
			_, stderr, code := runCLI(t, args...)
			if code != 1 {
				t.Errorf("Expected exit code 1, got %d", code)
			}
			if !strings.Contains(stderr, "✗") || !strings.Contains(stderr, "Usage:") {
				t.Errorf("Expected an error and usage on stderr, got %q", stderr)
			}
		})
	}
}

func TestCLI_DiaryExample(t *testing.T) {
	vaultDir := setupTestEnvironment(t)
	work := t.TempDir()
	changeDir(t, work)

	if err := os.MkdirAll(filepath.Join(work, "notes", "2024"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(work, "notes", "2024", "jan.txt"), []byte("cold"), 0644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCLI(t, "-e", "./notes", "-z", "-k", "diary", "-p", "secret")
	if code != 0 {
		t.Fatalf("Store exited %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "✓") || !strings.Contains(stderr, "'diary'") {
		t.Errorf("Expected a success line, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "diary.tar.gz.gpg")); err != nil {
		t.Fatalf("Expected diary.tar.gz.gpg in the vault: %v", err)
	}

	stdout, _, code := runCLI(t, "-l")
	if code != 0 || stdout != "diary\n" {
		t.Errorf("List = (%q, %d), expected diary", stdout, code)
	}

	if err := os.RemoveAll(filepath.Join(work, "notes")); err != nil {
		t.Fatal(err)
	}

	_, stderr, code = runCLI(t, "-d", "diary", "-p", "secret")
	if code != 0 {
		t.Fatalf("Retrieve exited %d: %s", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(work, "notes", "2024", "jan.txt"))
	if err != nil || string(data) != "cold" {
		t.Errorf("ReadFile = (%q, %v), expected cold", data, err)
	}
}

func TestCLI_StoreRemoveOriginal(t *testing.T) {
	vaultDir := setupTestEnvironment(t)
	work := t.TempDir()
	changeDir(t, work)

	if err := os.WriteFile("todo.txt", []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCLI(t, "-e", "todo.txt", "-r", "-p", "pw")
	if code != 0 {
		t.Fatalf("Store exited %d: %s", code, stderr)
	}
	if _, err := os.Stat("todo.txt"); !os.IsNotExist(err) {
		t.Errorf("Expected todo.txt to be removed, Stat returned %v", err)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "todo.txt.tar.gpg")); err != nil {
		t.Errorf("Expected todo.txt.tar.gpg in the vault: %v", err)
	}
}

func TestCLI_List(t *testing.T) {
	vaultDir := setupTestEnvironment(t)

	t.Run("MissingVault", func(t *testing.T) {
		stdout, _, code := runCLI(t, "-l")
		if code != 0 || stdout != "" {
			t.Errorf("List = (%q, %d), expected empty success", stdout, code)
		}
	})

	if err := os.MkdirAll(vaultDir, 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"alpha.tar.gpg", "beta.tar.gz.gpg", "readme.md"} {
		if err := os.WriteFile(filepath.Join(vaultDir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("All", func(t *testing.T) {
		stdout, _, code := runCLI(t, "-l")
		if code != 0 || stdout != "alpha\nbeta\n" {
			t.Errorf("List = (%q, %d), expected alpha and beta", stdout, code)
		}
	})

	t.Run("Filtered", func(t *testing.T) {
		stdout, _, code := runCLI(t, "-l", "beta")
		if code != 0 || stdout != "beta\n" {
			t.Errorf("List = (%q, %d), expected beta", stdout, code)
		}
	})

	t.Run("NoPartialMatch", func(t *testing.T) {
		stdout, _, code := runCLI(t, "-l", "alp")
		if code != 0 || stdout != "" {
			t.Errorf("List = (%q, %d), expected no output", stdout, code)
		}
	})
}

func TestCLI_RetrieveMissing(t *testing.T) {
	setupTestEnvironment(t)
	work := t.TempDir()
	changeDir(t, work)

	_, stderr, code := runCLI(t, "-d", "ghost", "-p", "x")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "No such item") || !strings.Contains(stderr, "tarvault -l") {
		t.Errorf("Expected a not-found message with a hint, got %q", stderr)
	}
	if entries, _ := os.ReadDir(work); len(entries) != 0 {
		t.Errorf("Expected nothing written to the working directory, found %d entries", len(entries))
	}
}

func TestCLI_WrongPassphrase(t *testing.T) {
	setupTestEnvironment(t)
	work := t.TempDir()
	changeDir(t, work)

	if err := os.WriteFile("secret.txt", []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, stderr, code := runCLI(t, "-e", "secret.txt", "-p", "right"); code != 0 {
		t.Fatalf("Store exited %d: %s", code, stderr)
	}

	_, stderr, code := runCLI(t, "-d", "secret.txt", "-p", "wrong")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "wrong passphrase") {
		t.Errorf("Expected a wrong passphrase message, got %q", stderr)
	}
}

func TestCLI_EmptyPassphrase(t *testing.T) {
	setupTestEnvironment(t)
	work := t.TempDir()
	changeDir(t, work)

	if err := os.WriteFile("a.txt", []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, stderr, code := runCLI(t, "-e", "a.txt", "-p", ""); code != 1 || !strings.Contains(stderr, "passphrase cannot be empty") {
		t.Errorf("Expected an empty passphrase error, got (%d, %q)", code, stderr)
	}
}

func TestCLI_MissingGPG(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("TARVAULT_BACKEND", "gpg")
	t.Setenv("PATH", t.TempDir())
	work := t.TempDir()
	changeDir(t, work)

	if err := os.WriteFile("a.txt", []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCLI(t, "-e", "a.txt", "-p", "x")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "TARVAULT_BACKEND=native") {
		t.Errorf("Expected an install hint, got %q", stderr)
	}
	if _, err := os.Stat(os.Getenv("TARVAULT_DIR")); !os.IsNotExist(err) {
		t.Errorf("Vault directory should not be created, Stat returned %v", err)
	}
}

func TestCLI_DebugRedactsPassword(t *testing.T) {
	setupTestEnvironment(t)

	_, stderr, code := runCLI(t, "--debug", "-l", "-p", "hunter2")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr)
	}
	if strings.Contains(stderr, "hunter2") {
		t.Errorf("Password leaked into debug output: %q", stderr)
	}
	if !strings.Contains(stderr, "<redacted>") || !strings.Contains(stderr, "--compress") {
		t.Errorf("Expected a flag dump, got %q", stderr)
	}
}
