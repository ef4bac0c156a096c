package main

import (
	"fmt"
	"os"

	"clc/src/backend/emit"
	"clc/src/backend/frame"
	"clc/src/backend/llvmdump"
	"clc/src/backend/lower"
	"clc/src/backend/regalloc"
	aselect "clc/src/backend/select"
	"clc/src/backend/td"
	"clc/src/backend/td/arm"
	"clc/src/mir"
	"clc/src/util"
)

func main() {
	// Parse command line arguments.
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	if len(opt.Src) == 0 {
		fmt.Println("no input file given, pass -h for usage")
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// run loads the MIR module named by opt.Src and drives it through
// lowering, instruction selection, register allocation, stack-frame
// lowering, and assembly emission, in that order. Lowering and selection
// errors are returned immediately, since a failure there leaves every
// later pass's input shape unreliable; register allocation errors are
// accumulated across functions in verbose mode (see below).
func run(opt util.Options) error {
	m, err := mir.LoadModule(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read MIR module: %w", err)
	}

	if opt.DumpMIR {
		fmt.Print(m.String())
		return nil
	}

	var desc *td.Description
	switch opt.TargetArch {
	case util.Aarch64:
		desc = arm.NewDescription()
	default:
		return fmt.Errorf("unsupported target architecture: only aarch64 is implemented")
	}

	lm, err := lower.Lower(m, desc)
	if err != nil {
		return fmt.Errorf("lowering error: %w", err)
	}

	if opt.Verbose {
		fmt.Println("LLIR intermediate representation:")
		fmt.Println(lm.String())
	}

	if opt.DumpLLIR {
		fmt.Print(lm.String())
		return nil
	}

	if err := aselect.Select(lm, desc); err != nil {
		return fmt.Errorf("instruction selection error: %w", err)
	}

	// Register allocation and stack-frame lowering run once per function.
	// In verbose mode every function is attempted and its error, if any, is
	// buffered so the summary names every failing function at once; the
	// default mode reports and stops at the first failure.
	perr := util.NewPerror(len(lm.Functions))
	for _, fn := range lm.Functions {
		if err := regalloc.Allocate(fn, desc); err != nil {
			if !opt.Verbose {
				return fmt.Errorf("register allocation error: %w", err)
			}
			perr.Append(fmt.Errorf("function %s: %w", fn.Name, err))
			continue
		}
		frame.Lower(fn, desc)
	}
	if perr.Len() > 0 {
		for _, e := range perr.Errors() {
			fmt.Println(e)
		}
		return fmt.Errorf("register allocation failed for %d function(s)", perr.Len())
	}

	if opt.EmitLLVM {
		dump, err := llvmdump.Dump(opt, m)
		if err != nil {
			return fmt.Errorf("llvm dump error: %w", err)
		}
		fmt.Print(dump)
	}

	var out *os.File
	if len(opt.Out) > 0 {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := util.NewWriter(out)
	emit.Emit(lm, desc, &w)
	w.Close()
	return nil
}
