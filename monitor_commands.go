// monitor_commands.go - Monitor REPL command table
//
// Grounded on debug_commands.go's ParseCommand/ParseAddress pair: split the
// raw line into a lowercase verb plus whitespace-split args, same shape as
// the teacher's MonitorCommand. Per spec §4.6 the table itself is fixed and
// small, so it is just a switch in Dispatch rather than a map of closures —
// the teacher's command set is large enough to earn a dispatch map; this one
// isn't.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// MonitorCommand is a parsed REPL line: lowercase verb plus its raw args.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return MonitorCommand{}
	}
	parts := strings.Fields(input)
	return MonitorCommand{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

var commandHelp = map[string]string{
	"help": "help [name]            - list all commands or describe one",
	"c":    "c                       - run until stop/halt",
	"q":    "q                       - exit emulator",
	"si":   "si [N=1]                - step N instructions",
	"info": "info r|w                - dump registers or list watchpoints",
	"x":    "x N EXPR                - read N 32-bit words starting at EXPR",
	"p":    "p EXPR                  - print evaluated expression",
	"w":    "w EXPR                  - set watchpoint on EXPR",
	"d":    "d N                     - delete watchpoint N",
}

var commandOrder = []string{"help", "c", "q", "si", "info", "x", "p", "w", "d"}

// Dispatch executes one parsed command against m, writing all output to
// m.Log. Returns true if the REPL should exit (the "q" command).
func (mon *Monitor) Dispatch(cmd MonitorCommand) (quit bool) {
	switch cmd.Name {
	case "":
		return false
	case "help":
		mon.cmdHelp(cmd.Args)
	case "c":
		mon.cmdContinue(cmd.Args)
	case "q":
		return true
	case "si":
		mon.cmdStep(cmd.Args)
	case "info":
		mon.cmdInfo(cmd.Args)
	case "x":
		mon.cmdExamine(cmd.Args)
	case "p":
		mon.cmdPrint(cmd.Args)
	case "w":
		mon.cmdWatch(cmd.Args)
	case "d":
		mon.cmdDelete(cmd.Args)
	default:
		fmt.Fprintf(mon.m.Log, "unknown command %q (try help)\n", cmd.Name)
	}
	return false
}

func (mon *Monitor) cmdHelp(args []string) {
	if len(args) == 0 {
		for _, name := range commandOrder {
			fmt.Fprintln(mon.m.Log, commandHelp[name])
		}
		return
	}
	if h, ok := commandHelp[args[0]]; ok {
		fmt.Fprintln(mon.m.Log, h)
		return
	}
	fmt.Fprintf(mon.m.Log, "no such command %q\n", args[0])
}

func (mon *Monitor) cmdContinue(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(mon.m.Log, "usage: c")
		return
	}
	mon.runStepping(1 << 30)
	mon.reportStop()
}

func (mon *Monitor) cmdStep(args []string) {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			fmt.Fprintln(mon.m.Log, "usage: si [N=1]")
			return
		}
		n = v
	} else if len(args) > 1 {
		fmt.Fprintln(mon.m.Log, "usage: si [N=1]")
		return
	}
	mon.runStepping(n)
	mon.reportStop()
}

// runStepping wraps m.Run(n) with the keyboard host's raw-mode window, when
// one is attached: Start before stepping so Machine.PollInput can drain
// guest keystrokes during execution, Stop immediately after so the next
// REPL prompt gets the terminal back in cooked mode. This keeps the
// monitor's own stdin read and the keyboard host's stdin drain strictly
// alternating, never concurrent.
func (mon *Monitor) runStepping(n int) {
	if mon.kbd == nil {
		mon.m.Run(n)
		return
	}
	if err := mon.kbd.Start(); err != nil {
		fmt.Fprintf(mon.m.Log, "keyboard: %v\n", err)
		mon.m.Run(n)
		return
	}
	defer mon.kbd.Stop()
	mon.m.Run(n)
}

func (mon *Monitor) reportStop() {
	switch mon.m.State {
	case StateEnd:
		fmt.Fprintln(mon.m.Log, "program exited normally")
	case StateAbort:
		fmt.Fprintln(mon.m.Log, "program aborted")
	}
}

func (mon *Monitor) cmdInfo(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(mon.m.Log, "usage: info r|w")
		return
	}
	switch args[0] {
	case "r":
		mon.dumpRegisters()
	case "w":
		mon.dumpWatchpoints()
	default:
		fmt.Fprintln(mon.m.Log, "usage: info r|w")
	}
}

func (mon *Monitor) dumpRegisters() {
	for i := 0; i < 32; i++ {
		fmt.Fprintf(mon.m.Log, "%-4s = 0x%08x\n", regABINames[i], mon.m.Reg.X[i])
	}
	fmt.Fprintf(mon.m.Log, "pc   = 0x%08x\n", mon.m.Reg.PC)
	fmt.Fprintf(mon.m.Log, "mcause = 0x%08x mepc = 0x%08x mtvec = 0x%08x mstatus = 0x%08x\n",
		mon.m.Reg.CSR[CSR_MCAUSE], mon.m.Reg.CSR[CSR_MEPC], mon.m.Reg.CSR[CSR_MTVEC], mon.m.Reg.CSR[CSR_MSTATUS])
}

func (mon *Monitor) dumpWatchpoints() {
	list := mon.m.WP.List()
	if len(list) == 0 {
		fmt.Fprintln(mon.m.Log, "no watchpoints")
		return
	}
	for _, w := range list {
		fmt.Fprintf(mon.m.Log, "%d: %s = 0x%08x\n", w.ID, w.Expr, w.Last)
	}
}

func (mon *Monitor) cmdExamine(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(mon.m.Log, "usage: x N EXPR")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintln(mon.m.Log, "usage: x N EXPR")
		return
	}
	addr, err := Eval(strings.Join(args[1:], " "), &mon.m.Reg, mon.m.Bus)
	if err != nil {
		fmt.Fprintf(mon.m.Log, "error: %v\n", err)
		return
	}
	for i := 0; i < n; i++ {
		word, err := mon.m.Bus.Read32(addr + uint32(i*4))
		if err != nil {
			fmt.Fprintf(mon.m.Log, "error: %v\n", err)
			return
		}
		fmt.Fprintf(mon.m.Log, "0x%08x: 0x%08x\n", addr+uint32(i*4), word)
	}
}

func (mon *Monitor) cmdPrint(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(mon.m.Log, "usage: p EXPR")
		return
	}
	v, err := Eval(strings.Join(args, " "), &mon.m.Reg, mon.m.Bus)
	if err != nil {
		fmt.Fprintf(mon.m.Log, "error: %v\n", err)
		return
	}
	fmt.Fprintf(mon.m.Log, "= 0x%08x (%d)\n", v, v)
}

func (mon *Monitor) cmdWatch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(mon.m.Log, "usage: w EXPR")
		return
	}
	expr := strings.Join(args, " ")
	id, err := mon.m.WP.Set(expr, &mon.m.Reg, mon.m.Bus)
	if err != nil {
		fmt.Fprintf(mon.m.Log, "error: %v\n", err)
		return
	}
	fmt.Fprintf(mon.m.Log, "watchpoint %d: %s\n", id, expr)
}

func (mon *Monitor) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(mon.m.Log, "usage: d N")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(mon.m.Log, "usage: d N")
		return
	}
	if err := mon.m.WP.Delete(id); err != nil {
		fmt.Fprintf(mon.m.Log, "error: %v\n", err)
		return
	}
	fmt.Fprintf(mon.m.Log, "deleted watchpoint %d\n", id)
}
