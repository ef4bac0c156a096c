package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the parsed command line configuration for a single compiler invocation.
type Options struct {
	Src       string // Path to the MIR/source input.
	Out       string // Path to the output assembly file. Empty means stdout.
	Threads   int    // Thread count, only consulted by the ancillary LLVM dump path.
	Verbose   bool   // Set true to print the lowered LLIR and report every function's register-allocation failure instead of only the first.
	DumpAST   bool   // Parsed for CLI parity only: the front-end is an external collaborator, no syntax tree exists here, and the driver never reads this field.
	DumpMIR   bool   // Set true to print the textual MIR representation and exit.
	DumpLLIR  bool   // Set true to print the textual LLIR representation after lowering and exit.
	EmitLLVM  bool   // Set true to additionally dump textual LLVM IR via the tinygo.org/x/go-llvm binding.
	TargetArch int   // Output target architecture.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Maximum threads allowed executing in parallel in the ancillary LLVM path.
const appVersion = "clc backend 1.0"

// Target machine architectures. Aarch64 is the only architecture register allocation currently supports.
const (
	UnknownArch = iota
	Aarch64
	Riscv64
	Riscv32
)

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments.
func ParseArgs() (Options, error) {
	opt := Options{TargetArch: Aarch64}
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-emit-llvm":
			opt.EmitLLVM = true
		case "-dump-ast":
			opt.DumpAST = true
		case "-dump-mir":
			opt.DumpMIR = true
		case "-dump-llir":
			opt.DumpLLIR = true
		case "-o", "-t":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected argument, got new flag %s", args[i1+1])
			}
			switch args[i1] {
			case "-o":
				opt.Out = args[i1+1]
			case "-t":
				if t, err := strconv.Atoi(args[i1+1]); err == nil {
					if t > 0 && t <= maxThreads {
						opt.Threads = t
					} else {
						return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
					}
				} else {
					return opt, fmt.Errorf("expected integer thread count, got: %s", args[i1+1])
				}
			}
			i1++
		case "-arch":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			switch args[i1+1] {
			case "aarch64":
				opt.TargetArch = Aarch64
			case "riscv64":
				opt.TargetArch = Riscv64
			case "riscv32":
				opt.TargetArch = Riscv32
			default:
				return opt, fmt.Errorf("unexpected architecture identifier: %s", args[i1+1])
			}
			i1++
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Src = args[i1]
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath and name of the output assembly file. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-arch\tTarget architecture. Only 'aarch64' is supported by register allocation today.")
	_, _ = fmt.Fprintln(w, "-dump-ast\tAccepted for compatibility; has no effect (no syntax tree exists in this backend).")
	_, _ = fmt.Fprintln(w, "-dump-mir\tDump the textual MIR and exit.")
	_, _ = fmt.Fprintln(w, "-dump-llir\tDump the textual LLIR after lowering and exit.")
	_, _ = fmt.Fprintln(w, "-emit-llvm\tAlso print a textual LLVM IR rendering of the MIR for comparison.")
	_, _ = fmt.Fprintf(w, "-t\tThread count for the ancillary LLVM dump path. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints the application version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print the lowered LLIR and report every function's register-allocation failure.")
	_ = w.Flush()
}
