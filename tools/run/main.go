package run

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/aymanbagabas/go-pty"
	"github.com/buildkite/shellwords"
	"github.com/caarlos0/env/v11"
	"golang.org/x/term"

	"github.com/clktmr/playdate/tools/bundle"
)

var (
	flags = flag.NewFlagSet("run", flag.ExitOnError)

	title    = flags.String("title", "", "window title, defaults to the manifest name")
	scale    = flags.Int("scale", 0, "window scale, 1 to 8")
	data     = flags.String("data", "", "writable data directory")
	mute     = flags.Bool("mute", false, "keep the audio device closed")
	offline  = flags.Bool("offline", false, "simulate a device without wifi")
	stats    = flags.Bool("stats", false, "show the frame time overlay")
	test     = flags.Bool("test", false, "derive the exit code from test verdict output")
	timeout  = flags.Duration("timeout", 0, "kill the game after this duration")
	gameArgs = flags.String("args", "", "extra arguments passed to the game binary")
)

const usageString = `Bundle launcher.

Usage: %s [flags] <bundle>

Starts the bundle's game binary under a pseudo terminal with the device
configuration passed in PDGO_* environment variables. Values already set in
the caller's environment are inherited unless overridden by a flag. With
-test the game's output is scanned for a test verdict to derive the exit
code.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "run")
	flags.PrintDefaults()
}

// The child's device configuration, seeded from the caller's PDGO_* variables
// and overridden by flags given explicitly.
type environ struct {
	Title   string `env:"PDGO_TITLE"`
	Scale   int    `env:"PDGO_SCALE"`
	Data    string `env:"PDGO_DATA"`
	Mute    bool   `env:"PDGO_MUTE"`
	Offline bool   `env:"PDGO_OFFLINE"`
	Stats   bool   `env:"PDGO_STATS"`
}

func (e *environ) list(bundle string) []string {
	vars := []string{"PDGO_BUNDLE=" + bundle}
	if e.Title != "" {
		vars = append(vars, "PDGO_TITLE="+e.Title)
	}
	if e.Scale != 0 {
		vars = append(vars, fmt.Sprintf("PDGO_SCALE=%d", e.Scale))
	}
	if e.Data != "" {
		vars = append(vars, "PDGO_DATA="+e.Data)
	}
	if e.Mute {
		vars = append(vars, "PDGO_MUTE=true")
	}
	if e.Offline {
		vars = append(vars, "PDGO_OFFLINE=true")
	}
	if e.Stats {
		vars = append(vars, "PDGO_STATS=true")
	}
	return vars
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}
	bundleDir, err := filepath.Abs(flags.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	info, err := bundle.ReadInfoFile(bundleDir)
	if err != nil {
		log.Println("manifest:", err)
	}
	binary, err := findBinary(bundleDir)
	if err != nil {
		log.Fatalln(err)
	}

	cfg, err := env.ParseAs[environ]()
	if err != nil {
		log.Fatalln(err)
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			cfg.Title = *title
		case "scale":
			cfg.Scale = *scale
		case "data":
			cfg.Data = *data
		case "mute":
			cfg.Mute = *mute
		case "offline":
			cfg.Offline = *offline
		case "stats":
			cfg.Stats = *stats
		}
	})
	if cfg.Title == "" {
		cfg.Title = info.Name
	}

	var extra []string
	if *gameArgs != "" {
		extra, err = shellwords.Split(*gameArgs)
		if err != nil {
			log.Fatalln("args:", err)
		}
	}

	ptmx, err := pty.New()
	if err != nil {
		log.Fatalln(err)
	}
	defer ptmx.Close()

	cmd := ptmx.Command(binary, extra...)
	cmd.Dir = bundleDir
	cmd.Env = make([]string, 0, len(os.Environ())+8)
	for _, v := range os.Environ() {
		if !strings.HasPrefix(v, "PDGO_") {
			cmd.Env = append(cmd.Env, v)
		}
	}
	cmd.Env = append(cmd.Env, cfg.list(bundleDir)...)

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)

	if err := cmd.Start(); err != nil {
		log.Fatalln(err)
	}
	go func() {
		<-sigintr
		cmd.Process.Kill()
	}()
	if *timeout != 0 {
		time.AfterFunc(*timeout, func() {
			log.Println("run: timeout")
			cmd.Process.Kill()
		})
	}

	// With a terminal on stdin the game's console is passed through
	// unmodified, except in test mode where output is consumed line-wise.
	var oldState *term.State
	if term.IsTerminal(int(os.Stdin.Fd())) && !*test {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			ptmx.Resize(w, h)
		}
		oldState, _ = term.MakeRaw(int(os.Stdin.Fd()))
		go io.Copy(ptmx, os.Stdin)
	}

	code := 0
	if *test {
		code = scan(ptmx, cmd)
	} else {
		io.Copy(os.Stdout, ptmx)
	}
	cmd.Wait()

	if oldState != nil {
		term.Restore(int(os.Stdin.Fd()), oldState)
	}
	os.Exit(code)
}

// Find the game binary, the single executable regular file in the bundle's
// root.
func findBinary(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	binary := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return "", err
		}
		if fi.Mode()&0o111 == 0 && !strings.EqualFold(filepath.Ext(e.Name()), ".exe") {
			continue
		}
		if binary != "" {
			return "", fmt.Errorf("more than one executable in %s", dir)
		}
		binary = filepath.Join(dir, e.Name())
	}
	if binary == "" {
		return "", fmt.Errorf("no executable in %s", dir)
	}
	return binary, nil
}

// scan mirrors the game's output and derives an exit code from the verdict
// printed by the test harness.
func scan(r io.Reader, cmd *pty.Cmd) int {
	scanner := bufio.NewScanner(r)
	exiting := false
	code := 1 // no verdict counts as failure
	for scanner.Scan() {
		log.Println(scanner.Text())
		if exiting {
			continue
		}
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "fatal error:"), strings.HasPrefix(line, "panic:"):
			fallthrough
		case line == "FAIL":
			code = 1
			exiting = true
		case line == "PASS":
			code = 0
			exiting = true
		}
		if exiting {
			go func() {
				// give panic() time to print the stacktrace
				time.Sleep(500 * time.Millisecond)
				cmd.Process.Kill()
			}()
		}
	}
	return code
}
