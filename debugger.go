// debugger.go - Interactive step-and-inspect command loop
//
// Grounded on the teacher's debug_commands.go ParseCommand (split a raw
// line into a lowercased verb plus args) and the overall read-eval loop
// of debug_monitor.go, reduced to the minimal command surface spec.md
// §7 requires: this is a simple inspector, not the teacher's full
// scrollback/breakpoint/hex-edit monitor.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// DebugCommand is a parsed command with name and arguments.
type DebugCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a verb and its arguments.
func ParseCommand(input string) DebugCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return DebugCommand{}
	}
	parts := strings.Fields(input)
	return DebugCommand{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

// RunDebugger drives the interactive command loop over in/out until the
// machine halts or the user quits. Unknown commands print an error and
// keep the loop alive (spec.md §7).
func RunDebugger(m *Machine, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "remu interactive debugger — type 'help' for commands")

	// Suppress the prompt when stdin isn't a real terminal (piped script
	// input), matching the teacher's terminal-awareness idiom in
	// terminal_host.go without going into raw mode: this loop reads
	// whole lines, not individual keystrokes.
	showPrompt := term.IsTerminal(int(os.Stdin.Fd()))

	for {
		if showPrompt {
			fmt.Fprint(out, "(remu) ")
		}
		if !scanner.Scan() {
			return
		}
		cmd := ParseCommand(scanner.Text())
		switch cmd.Name {
		case "":
			continue
		case "c", "continue":
			m.Run(^uint64(0))
			printState(m, out)
			if m.State != StateRunning {
				return
			}
		case "si", "step":
			n := uint64(1)
			if len(cmd.Args) > 0 {
				if v, err := strconv.ParseUint(cmd.Args[0], 10, 64); err == nil {
					n = v
				} else {
					fmt.Fprintf(out, "bad step count %q\n", cmd.Args[0])
					continue
				}
			}
			m.Run(n)
			printState(m, out)
			if m.State != StateRunning {
				return
			}
		case "info":
			if len(cmd.Args) > 0 && cmd.Args[0] == "r" {
				printRegisters(m, out)
			} else {
				fmt.Fprintln(out, "info: unknown subcommand (try: info r)")
			}
		case "q", "quit":
			return
		case "help":
			printHelp(out)
		default:
			fmt.Fprintf(out, "unknown command %q (try: help)\n", cmd.Name)
		}
	}
}

func printState(m *Machine, out io.Writer) {
	if m.State != StateRunning {
		fmt.Fprintf(out, "stopped: %s at pc=%#08x\n", m.State, m.Hart.PC)
	}
}

func printRegisters(m *Machine, out io.Writer) {
	fmt.Fprintf(out, "pc  = %#08x\n", m.Hart.PC)
	for i := uint32(0); i < 32; i++ {
		fmt.Fprintf(out, "x%-2d = %#08x", i, m.Hart.R(i))
		if i%4 == 3 {
			fmt.Fprintln(out)
		} else {
			fmt.Fprint(out, "  ")
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  c, continue   run to termination")
	fmt.Fprintln(out, "  si [N]        step N instructions (default 1)")
	fmt.Fprintln(out, "  info r        print pc and x0..x31")
	fmt.Fprintln(out, "  q, quit       exit the debugger")
	fmt.Fprintln(out, "  help          show this message")
}
