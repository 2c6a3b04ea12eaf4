package main

import (
	"bytes"
	"strings"
	"testing"
)

// referenceHash is "password" under salt "somesalt".
const referenceHash = "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA"

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHashThenVerify(t *testing.T) {
	code, out, errOut := runCLI(t, "hunter2\n", "hash", "-m", "64", "-t", "1")
	if code != exitOK {
		t.Fatalf("hash exit = %d stderr=%s", code, errOut)
	}
	encoded := strings.TrimSpace(out)
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$") {
		t.Fatalf("unexpected hash %q", encoded)
	}

	code, out, _ = runCLI(t, "hunter2\r\n", "verify", encoded)
	if code != exitOK || strings.TrimSpace(out) != "match" {
		t.Fatalf("verify = %d %q", code, out)
	}

	code, out, _ = runCLI(t, "hunter3\n", "verify", encoded)
	if code != exitMismatch || strings.TrimSpace(out) != "mismatch" {
		t.Fatalf("verify wrong = %d %q", code, out)
	}

	code, out, _ = runCLI(t, "hunter3\n", "verify", "-q", encoded)
	if code != exitMismatch || out != "" {
		t.Fatalf("quiet verify = %d %q", code, out)
	}
}

func TestHashVariantsAndVersion(t *testing.T) {
	code, out, errOut := runCLI(t, "pw\n", "hash", "-m", "32", "-t", "1", "-variant", "argon2d", "-v10")
	if code != exitOK {
		t.Fatalf("exit = %d stderr=%s", code, errOut)
	}
	if !strings.HasPrefix(out, "$argon2d$v=16$m=32,t=1,p=1$") {
		t.Fatalf("unexpected hash %q", out)
	}
}

func TestVerifyReferenceHash(t *testing.T) {
	code, out, errOut := runCLI(t, "password", "verify", referenceHash)
	if code != exitOK {
		t.Fatalf("exit = %d out=%q stderr=%s", code, out, errOut)
	}
}

func TestVerifyMaxMemory(t *testing.T) {
	code, _, errOut := runCLI(t, "password\n", "verify", "-max-m", "32768", referenceHash)
	if code != exitError || !strings.Contains(errOut, "computation failed") {
		t.Fatalf("exit = %d stderr=%s", code, errOut)
	}
}

func TestVerifyTimeAndLaneCaps(t *testing.T) {
	for _, flagArgs := range [][]string{{"-max-t", "1"}, {"-max-p", "1"}} {
		args := append([]string{"verify"}, flagArgs...)
		args = append(args, "$argon2id$v=19$m=64,t=3,p=2$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA")
		code, _, errOut := runCLI(t, "password\n", args...)
		if code != exitError || !strings.Contains(errOut, "verification limits") {
			t.Fatalf("%v: exit = %d stderr=%s", flagArgs, code, errOut)
		}
	}
}

func TestErrors(t *testing.T) {
	cases := map[string]struct {
		stdin string
		args  []string
	}{
		"no command":       {args: nil},
		"unknown command":  {args: []string{"frobnicate"}},
		"bad variant":      {stdin: "pw\n", args: []string{"hash", "-variant", "scrypt"}},
		"invalid params":   {stdin: "pw\n", args: []string{"hash", "-t", "0"}},
		"extra argument":   {stdin: "pw\n", args: []string{"hash", "oops"}},
		"no stdin":         {stdin: "", args: []string{"hash", "-m", "64", "-t", "1"}},
		"malformed verify": {stdin: "pw\n", args: []string{"verify", "$argon2id$nope"}},
		"verify no hash":   {stdin: "pw\n", args: []string{"verify"}},
		"inspect garbage":  {args: []string{"inspect", "not-a-hash"}},
		"password too long": {
			stdin: strings.Repeat("a", maxPasswordBytes+1) + "\n",
			args:  []string{"hash", "-m", "64", "-t", "1"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tc.stdin, tc.args...); code != exitError {
				t.Fatalf("exit = %d, want %d", code, exitError)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	code, out, errOut := runCLI(t, "", "inspect", referenceHash)
	if code != exitOK {
		t.Fatalf("exit = %d stderr=%s", code, errOut)
	}
	for _, want := range []string{
		"variant:       argon2i",
		"version:       19",
		"memory_kib:    65536",
		"salt_bytes:    8",
		"hash_bytes:    32",
		"needs_upgrade: true",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
}
