// main.go - Entry point: flags, wiring, and the batch/interactive split
//
// Grounded on the teacher's main.go (flag-driven setup, a boilerplate
// banner, then construct-and-run) generalized from its audio/video/GUI
// wiring to this core's Hart/PhysMem/MMIORegistry/Tracer/Machine wiring.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ANSI 24-bit colour escapes for the banner and error output, in the
// teacher's boilerPlate manner.
const (
	ansiReset  = "\033[0m"
	ansiBanner = "\033[38;2;96;165;250m"
	ansiErr    = "\033[38;2;239;68;68m"
)

func banner() {
	fmt.Println(ansiBanner + "remu - single-hart RV32IMA functional emulator" + ansiReset)
}

// errorf writes a coloured, newline-terminated error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, ansiErr+format+ansiReset+"\n", args...)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		batch       = flag.Bool("b", false, "run in batch mode (default if no -i)")
		interactive = flag.Bool("i", false, "run in interactive debugger mode")
		traceSpec   = flag.String("trace", "", "comma-separated trace channels: itrace,mtrace,dtrace,intr,mmu,ecall,ftrace,all")
		memSize     = flag.Uint64("mem", DefaultMSize, "RAM size in bytes")
		headless    = flag.Bool("headless", false, "force headless video/audio backends")
		logPath     = flag.String("log", "", "mirror output to this log file")
	)
	flag.BoolVar(batch, "batch", false, "alias for -b")
	flag.BoolVar(interactive, "interactive", false, "alias for -i")
	flag.Parse()

	banner()

	var logFile *os.File
	logf := fmt.Printf
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			errorf("remu: cannot open log file: %v", err)
			return 1
		}
		logFile = f
		logf = func(format string, args ...any) (int, error) {
			fmt.Printf(format, args...)
			return fmt.Fprintf(logFile, format, args...)
		}
	}
	if logFile != nil {
		defer logFile.Close()
	}

	imagePath := flag.Arg(0)
	image, err := LoadGuestImage(imagePath)
	if err != nil {
		errorf("remu: cannot load image %q: %v", imagePath, err)
		return 1
	}

	flags := parseTraceFlags(*traceSpec)
	trace := NewTracer(flags, 4096)

	hart := NewHart(MBASE+PCResetOffset, trace)
	registry := NewMMIORegistry()
	mem := NewPhysMem(uint32(*memSize), registry, trace, true)
	mem.LoadImage(image)

	machine := NewMachine(hart, mem, trace)
	machine.logf = logf

	video, err := NewVideoOutput(DefaultVGAWidth, DefaultVGAHeight, *headless)
	if err != nil {
		errorf("remu: video backend init failed: %v", err)
		return 1
	}
	audio, err := NewAudioOutput(*headless)
	if err != nil {
		errorf("remu: audio backend init failed: %v", err)
		return 1
	}

	kbd := NewKeyboard()
	vga := NewVGA(DefaultVGAWidth, DefaultVGAHeight, video)
	audioChip := NewAudioChip()
	uart := NewUART(func(b byte) { fmt.Fprint(os.Stdout, string(rune(b))) })
	clint := NewCLINT(hart)

	registry.Register("clint", ClintBase, ClintSize, clint)
	registry.Register("plic", PlicBase, PlicSize, NewPLIC(hart))
	registry.Register("uart", UartBase, UartSize, uart)
	registry.Register("rtc", RtcBase, RtcSize, NewRTC(hart))
	registry.Register("keyboard", KeyboardBase, KeyboardSize, kbd)
	registry.Register("vga-ctrl", VGACtrlBase, VGACtrlSize, vga)
	registry.Register("vga-fb", FramebufferBase, DefaultVGAWidth*DefaultVGAHeight*4, &ByteRegionMMIO{Base: FramebufferBase, Buf: vga.Framebuffer()})
	registry.Register("audio-ctrl", AudioCtrlBase, AudioCtrlSize, audioChip)
	registry.Register("audio-buf", AudioBufferBase, AudioBufferSize, &ByteRegionMMIO{Base: AudioBufferBase, Buf: audioChip.Buffer()})
	registry.Register("disk", DiskBase, DiskSize, NewDisk())
	registry.Seal()

	machine.AddTicker(clint)
	machine.AddTicker(vga)

	if err := video.Start(); err != nil {
		errorf("remu: video backend start failed: %v", err)
		return 1
	}
	defer video.Stop()
	if err := audio.Start(audioChip); err != nil {
		errorf("remu: audio backend start failed: %v", err)
		return 1
	}
	defer audio.Stop()

	video.PollKeys(kbd)

	if *interactive && !*batch {
		RunDebugger(machine, os.Stdin, os.Stdout)
	} else {
		machine.Run(^uint64(0))
		if flags != 0 && machine.State != StateAbort {
			// Step has already dumped the traces on Abort.
			trace.Dump(func(s string) { logf("%s\n", s) })
		}
	}

	if machine.State == StateAbort {
		return 1
	}
	return 0
}

// parseTraceFlags decodes the -trace flag's comma-separated channel list.
func parseTraceFlags(spec string) TraceFlag {
	if spec == "" {
		return 0
	}
	var flags TraceFlag
	for _, name := range strings.Split(spec, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "itrace":
			flags |= TraceITrace
		case "mtrace":
			flags |= TraceMTrace
		case "dtrace":
			flags |= TraceDTrace
		case "intr":
			flags |= TraceIntr
		case "mmu":
			flags |= TraceMMU
		case "ecall":
			flags |= TraceEcall
		case "ftrace":
			flags |= TraceFTrace
		case "all":
			flags |= TraceAll
		}
	}
	return flags
}
