package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/sketch-tools-mcp/internal/config"
	"github.com/ironsheep/sketch-tools-mcp/internal/convert"
	"github.com/ironsheep/sketch-tools-mcp/internal/httpapi"
	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("sketch-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "convert":
			os.Exit(runConvert(os.Args[2:]))
		case "http":
			os.Exit(runHTTP(os.Args[2:]))
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q (see --help)\n", os.Args[1])
			os.Exit(2)
		}
	}

	os.Exit(runMCP())
}

func printHelp() {
	fmt.Println("sketch-mcp - turn photos into clean line drawings")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sketch-mcp                      Run the MCP server on stdin/stdout")
	fmt.Println("  sketch-mcp convert [flags] <image>...")
	fmt.Println("                                  Write <name>.sigma1.svg and <name>.sigma2.svg")
	fmt.Println("  sketch-mcp http [flags]         Serve POST /api/process-image")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Convert flags:")
	fmt.Println("  --config FILE    YAML configuration file")
	fmt.Println("  --out DIR        Output directory (default: next to each input)")
	fmt.Println("  --base64         Inputs hold base64 text instead of image bytes")
	fmt.Println("  --dump-masks     Also write the edge masks as PNG")
	fmt.Println("  --preview        Also write a PNG rendering of each drawing")
	fmt.Println("  --jobs N         Images converted at once (default: CPU count)")
	fmt.Println()
	fmt.Println("HTTP flags:")
	fmt.Println("  --config FILE    YAML configuration file")
	fmt.Println("  --addr ADDR      Listen address (default :8080)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SKETCH_MCP_CONFIG=path          Configuration file")
	fmt.Println("  SKETCH_MCP_LOG_LEVEL=debug      Enable debug logging")
	fmt.Println("  SKETCH_MCP_LOG_FORMAT=json      Log as JSON")
	fmt.Println("  SKETCH_MCP_LOG_FILE=path        Also log to a rotating file")
	fmt.Println()
	fmt.Println("Without a command the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// setup loads the configuration and initializes logging. Logs go to stderr
// since stdout carries MCP traffic.
func setup(path string) (config.Config, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return cfg, false
	}
	log.Init(cfg.LogOptions())
	return cfg, true
}

func runMCP() int {
	cfg, ok := setup("")
	if !ok {
		return 1
	}
	logger := log.WithComponent("main")
	logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	popts, err := cfg.PipelineOptions()
	if err != nil {
		logger.Error("invalid pipeline options", "err", err)
		return 1
	}
	if Version != "dev" {
		server.ServerVersion = Version
	}
	srv, err := server.New(popts)
	if err != nil {
		logger.Error("failed to create server", "err", err)
		return 1
	}
	if err := srv.Run(); err != nil {
		logger.Error("server error", "err", err)
		return 1
	}
	return 0
}

func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		outDir     = fs.String("out", "", "output directory")
		b64        = fs.Bool("base64", false, "inputs hold base64 text")
		dumpMasks  = fs.Bool("dump-masks", false, "write edge masks as PNG")
		withPrev   = fs.Bool("preview", false, "write PNG previews")
		jobs       = fs.Int("jobs", 0, "images converted at once")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "convert: no input images")
		return 2
	}

	cfg, ok := setup(*configPath)
	if !ok {
		return 1
	}
	popts, err := cfg.PipelineOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := convert.Run(ctx, fs.Args(), popts, convert.Options{
		OutDir:    *outDir,
		Base64:    *b64,
		DumpMasks: *dumpMasks,
		Preview:   *withPrev,
		Workers:   *jobs,
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Input, r.Err)
			continue
		}
		for _, f := range r.Files {
			fmt.Println(f)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func runHTTP(args []string) int {
	fs := flag.NewFlagSet("http", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		addr       = fs.String("addr", "", "listen address")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := setup(*configPath)
	if !ok {
		return 1
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	logger := log.WithComponent("main")

	popts, err := cfg.PipelineOptions()
	if err != nil {
		logger.Error("invalid pipeline options", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpapi.Serve(ctx, httpapi.NewServer(cfg.HTTP, popts)); err != nil {
		logger.Error("http server error", "err", err)
		return 1
	}
	return 0
}
