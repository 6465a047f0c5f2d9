package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cardsoft/bridgetutor/config"
	"github.com/cardsoft/bridgetutor/shell"
)

var (
	GitVersion string
)

const banner = `
 _          _     _            _        _
| |__  _ __(_) __| | __ _  ___| |_ _  _| |_ ___  _ __
| '_ \| '__| |/ _` + "`" + ` |/ _` + "`" + ` |/ _ \ __| || | __/ _ \| '__|
| |_) | |  | | (_| | (_| |  __/ |_| || | || (_) | |
|_.__/|_|  |_|\__,_|\__, |\___|\__|\__,_|\__\___/|_|
                    |___/
`

func main() {
	fmt.Print(banner + "\n")
	if GitVersion != "" {
		fmt.Println(GitVersion)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	argsLine := strings.TrimSpace(strings.Join(os.Args[1:], " "))

	sc := shell.NewShellController(cfg)
	if argsLine == "" {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, argsLine)
		sig <- syscall.SIGINT
	}

	<-idleConnsClosed

	sc.Cleanup()
	log.Info().Msg("shutting down")
}
