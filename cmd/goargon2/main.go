// Command goargon2 hashes, verifies and inspects Argon2 encoded hashes from a
// terminal.
//
//	goargon2 hash [-m KiB] [-t passes] [-p lanes] [-variant argon2id]
//	goargon2 verify [-max-m KiB] [-max-t passes] [-max-p lanes] '<encoded>'
//	goargon2 inspect '<encoded>'
//
// Passwords are read from the terminal without echo, or from the first line of
// stdin when it is not a terminal. verify exits 0 on a match, 1 on a mismatch
// and 2 on any error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/MrEthical07/goHash/argon2"
	"github.com/MrEthical07/goHash/password"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitError
	}

	var err error
	code := exitOK
	switch args[0] {
	case "hash":
		err = runHash(args[1:], stdin, stdout, stderr)
	case "verify":
		code, err = runVerify(args[1:], stdin, stdout, stderr)
	case "inspect":
		err = runInspect(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "goargon2: unknown command %q\n", args[0])
		usage(stderr)
		return exitError
	}

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "goargon2: %v\n", err)
		}
		return exitError
	}
	return code
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: goargon2 <hash|verify|inspect> [flags]")
}

func runHash(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	def := password.DefaultConfig()

	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	memory := fs.Uint("m", uint(def.Memory), "memory cost in KiB")
	passes := fs.Uint("t", uint(def.Time), "number of passes")
	lanes := fs.Uint("p", uint(def.Parallelism), "parallelism")
	saltLen := fs.Uint("salt-len", uint(def.SaltLength), "salt length in bytes")
	keyLen := fs.Uint("key-len", uint(def.KeyLength), "derived key length in bytes")
	variantName := fs.String("variant", def.Variant.String(), "argon2d, argon2i or argon2id")
	legacy := fs.Bool("v10", false, "produce version 16 (0x10) hashes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.New("hash takes no arguments")
	}

	variant, err := argon2.ParseVariant(*variantName)
	if err != nil {
		return err
	}
	version := argon2.Version13
	if *legacy {
		version = argon2.Version10
	}

	cfg := password.Config{
		Variant:     variant,
		Version:     version,
		Memory:      uint32(*memory),
		Time:        uint32(*passes),
		Parallelism: uint32(*lanes),
		SaltLength:  uint32(*saltLen),
		KeyLength:   uint32(*keyLen),
	}
	hasher, err := password.NewArgon2(cfg)
	if err != nil {
		return err
	}

	pw, err := readPassword(stdin, stderr, "Password: ", true)
	if err != nil {
		return err
	}
	defer clear(pw)

	encoded, err := hasher.Hash(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, encoded)
	return nil
}

// capAtLeast keeps a non-zero cap from falling below the hasher's own cost,
// which NewArgon2 rejects. Oversized flag values saturate.
func capAtLeast(limit uint, cost uint32) uint32 {
	if limit > math.MaxUint32 {
		return math.MaxUint32
	}
	c := uint32(limit)
	if c != 0 && c < cost {
		return cost
	}
	return c
}

func runVerify(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := password.DefaultConfig()
	maxMemory := fs.Uint("max-m", 4<<20, "refuse hashes that need more than this many KiB (0 leaves the 16 GiB ceiling)")
	maxTime := fs.Uint("max-t", uint(def.MaxTime), "refuse hashes with more passes (0 disables)")
	maxLanes := fs.Uint("max-p", uint(def.MaxParallelism), "refuse hashes with more lanes (0 disables)")
	quiet := fs.Bool("q", false, "print nothing, report through the exit code only")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if fs.NArg() != 1 {
		return exitError, errors.New("verify takes exactly one encoded hash")
	}
	encoded := fs.Arg(0)

	// Reject garbage before prompting.
	if _, err := password.Decode(encoded); err != nil {
		return exitError, err
	}

	cfg := def
	cfg.MaxMemory = capAtLeast(*maxMemory, cfg.Memory)
	cfg.MaxTime = capAtLeast(*maxTime, cfg.Time)
	cfg.MaxParallelism = capAtLeast(*maxLanes, cfg.Parallelism)
	hasher, err := password.NewArgon2(cfg)
	if err != nil {
		return exitError, err
	}

	pw, err := readPassword(stdin, stderr, "Password: ", false)
	if err != nil {
		return exitError, err
	}
	defer clear(pw)

	ok, err := hasher.Verify(encoded, pw)
	if err != nil {
		return exitError, err
	}
	if !ok {
		if !*quiet {
			fmt.Fprintln(stdout, "mismatch")
		}
		return exitMismatch, nil
	}
	if !*quiet {
		fmt.Fprintln(stdout, "match")
	}
	return exitOK, nil
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect takes exactly one encoded hash")
	}

	parsed, err := password.Decode(fs.Arg(0))
	if err != nil {
		return err
	}
	upgrade, err := password.NeedsUpgrade(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "variant:       %s\n", parsed.Variant)
	fmt.Fprintf(stdout, "version:       %d\n", uint32(parsed.Version))
	fmt.Fprintf(stdout, "memory_kib:    %d\n", parsed.Params.Memory)
	fmt.Fprintf(stdout, "time:          %d\n", parsed.Params.Time)
	fmt.Fprintf(stdout, "parallelism:   %d\n", parsed.Params.Parallelism)
	fmt.Fprintf(stdout, "salt_bytes:    %d\n", len(parsed.Salt))
	fmt.Fprintf(stdout, "hash_bytes:    %d\n", len(parsed.Hash))
	fmt.Fprintf(stdout, "needs_upgrade: %t\n", upgrade)
	return nil
}
