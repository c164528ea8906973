package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [args]

Commands:
  prepare                    upload the device-side receiver routines
  upload <local> [remote]    transfer a local file to the device
  download <remote> [local]  transfer a device file to the host
  exec <local>               run a local script line by line on the device
  do <remote>                run a script stored on the device
  compile <remote>           compile a device .lua file to bytecode
  ls                         list device files
  rm <remote>                remove a device file
  format                     format the device filesystem
  heap                       print free heap bytes
  restart                    restart the device
  term                       attach an interactive terminal to the device
  shell                      start an interactive command shell

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.String("port", "", "Serial port of the device (default is platform specific)")
	flag.Int("baud", nodemcu.DefaultBaudRate, "Baud rate to negotiate for the transfer")
	flag.Duration("timeout", nodemcu.DefaultTimeout, "Response timeout")
	flag.String("verify", "none", "Verification after upload (none, standard, sha1)")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	verify, err := nodemcu.ParseVerifyMode(config.Verify)
	if err != nil {
		logger.Error("Invalid verify mode", "error", err)
		os.Exit(1)
	}

	uploaderConfig, err := nodemcu.NewConfigBuilder().
		WithBaudRate(config.BaudRate).
		WithTimeout(config.Timeout).
		WithLogger(logger.With("component", "uploader")).
		WithDialer(nodemcu.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: nodemcu.DefaultBaudRate,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to build uploader config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u, err := nodemcu.New(ctx, uploaderConfig)
	if err != nil {
		logger.Error("Failed to sync with device", "port", config.SerialPort, "error", err)
		os.Exit(1)
	}

	err = runCommand(ctx, u, logger, args, verify)
	if cerr := u.Close(); cerr != nil {
		logger.Error("Failed to close session", "error", cerr)
	}
	if err != nil {
		logger.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, u *nodemcu.Uploader, logger *slog.Logger, args []string, verify nodemcu.VerifyMode) error {
	cmd, rest := args[0], args[1:]
	arg := func(i int) string {
		if i < len(rest) {
			return rest[i]
		}
		return ""
	}

	switch cmd {
	case "prepare":
		return u.Prepare(ctx)

	case "upload":
		if len(rest) < 1 {
			return fmt.Errorf("upload needs a local file")
		}
		return u.WriteFile(ctx, rest[0], arg(1), verify)

	case "download":
		if len(rest) < 1 {
			return fmt.Errorf("download needs a remote file")
		}
		return u.ReadFile(ctx, rest[0], arg(1))

	case "exec":
		if len(rest) < 1 {
			return fmt.Errorf("exec needs a local file")
		}
		return u.ExecFile(ctx, rest[0])

	case "do":
		if len(rest) < 1 {
			return fmt.Errorf("do needs a remote file")
		}
		_, err := u.DoFile(ctx, rest[0])
		return err

	case "compile":
		if len(rest) < 1 {
			return fmt.Errorf("compile needs a remote file")
		}
		return u.CompileFile(ctx, rest[0])

	case "ls", "list":
		files, err := u.ListFiles(ctx)
		if err != nil {
			return err
		}
		for name, size := range files {
			fmt.Printf("%s\t%d\n", name, size)
		}
		return nil

	case "rm":
		if len(rest) < 1 {
			return fmt.Errorf("rm needs a remote file")
		}
		return u.RemoveFile(ctx, rest[0])

	case "format":
		return u.Format(ctx)

	case "heap":
		heap, err := u.Heap(ctx)
		if err != nil {
			return err
		}
		fmt.Println(heap)
		return nil

	case "restart":
		return u.Restart(ctx)

	case "term":
		return runTerminal(ctx, u)

	case "shell":
		runShell(ctx, u, logger, verify)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}
