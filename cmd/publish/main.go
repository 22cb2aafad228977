package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"karm/misc"
)

const usageMsg = `
	Web publishing wrapper for rulings book compiler
	Version %s (%s) : %s

	Expected usage (deployment build step): publish [CONFIG]

	Wrapper does nothing unless VERCEL=1 or GENERATE_RULINGS_WEB=1 is set in
	environment. When enabled it runs compiler in dry-run web mode:

	    karm --dry-run --web --config=CONFIG

	Compiler is looked up next to the wrapper (following symlinks) and then in
	the OS PATH. When CONFIG is not specified "karm-web.yaml" located either
	next to the wrapper or in the working directory is used, if none is found
	compiler writes public/rulings/index.html using its defaults.
`

const defaultOutput = "public/rulings/index.html"

func enabled() bool {
	return os.Getenv("VERCEL") == "1" || os.Getenv("GENERATE_RULINGS_WEB") == "1"
}

func main() {

	log.SetPrefix("[karm-web] ")
	log.SetFlags(0)

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Fprintf(os.Stderr, usageMsg, misc.GetVersion(), runtime.Version(), misc.GetGitHash())
		os.Exit(0)
	}

	if !enabled() {
		fmt.Fprintln(os.Stdout, "[karm-web] Skipping rulings web publish (set GENERATE_RULINGS_WEB=1 to force).")
		os.Exit(0)
	}

	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	resolvedPath, err := filepath.EvalSymlinks(exePath)
	if err != nil {
		log.Fatal(err)
	}

	// let's locate actual compiler
	compilerName := misc.GetAppName()
	if runtime.GOOS == "windows" {
		compilerName += ".exe"
	}

	paths := []string{
		filepath.Join(filepath.Dir(resolvedPath), compilerName), // where symlink points
		filepath.Join(filepath.Dir(exePath), compilerName),      // where I was started from
		compilerName, // in the system PATH
	}

	var compilerPath string
	for _, p := range paths {
		if compilerPath, err = exec.LookPath(p); err == nil {
			break
		}
		compilerPath = ""
	}
	if len(compilerPath) == 0 {
		log.Fatalf("Unable to locate compiler: %s", compilerName)
	}

	config := ""
	if len(os.Args) > 1 {
		config = os.Args[1]
	} else {
		for _, p := range []string{
			filepath.Join(filepath.Dir(exePath), "karm-web.yaml"),
			"karm-web.yaml",
		} {
			if _, err := os.Stat(p); err == nil {
				config = p
				break
			}
		}
	}

	args := []string{"--dry-run", "--web"}
	if config != "" {
		args = append(args, "--config="+config)
	} else {
		args = append(args, "--output-html="+defaultOutput)
	}

	log.Printf("Generating web rulings from live API data: %s %q", compilerPath, args)

	cmd := exec.Command(compilerPath, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		if ee := (*exec.ExitError)(nil); errors.As(err, &ee) {
			os.Exit(ee.ExitCode())
		}
		log.Fatalf("Compiler returned error: %v", err)
	}
}
