// Command glulxrun loads a Glulx story file and runs it to completion (or
// to a configured instruction budget) with the null collaborators, whose
// Glk discards all stream output.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"glulxvm/vm"
)

const (
	exitOK          = 0
	exitUsage       = 1
	exitLoadError   = 2
	exitDecodeError = 3
	exitExecError   = 4
)

func main() {
	debug := flag.Bool("debug", false, "trace every decoded instruction")
	maxInstructions := flag.Uint64("max-instructions", 0, "stop after this many instructions (0 = unbounded)")
	logLevel := flag.String("log-level", "info", "logrus level: trace, debug, info, warn, error")

	flag.Parse()
	args := flag.Args()

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: glulxrun [flags] <story-file>")
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}

	log := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}
	if *debug {
		log.SetLevel(logrus.TraceLevel)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	mem, startPC, err := vm.Load(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoadError)
	}

	it := vm.NewInterpreter(mem, startPC, vm.NewNullCollaborators())
	it.Log = log
	it.MaxInstructions = *maxInstructions

	if err := it.Run(); err != nil {
		os.Exit(mapRunError(err))
	}
}

func mapRunError(err error) int {
	switch err.(type) {
	case *vm.HaltedError:
		return exitOK
	case *vm.UnknownOpcodeError, *vm.ReservedOperandModeError, *vm.TruncatedInstructionError:
		return exitDecodeError
	default:
		return exitExecError
	}
}
