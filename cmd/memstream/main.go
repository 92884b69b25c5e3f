package main

import (
	"fmt"
	"os"
	"time"

	cfgpkg "github.com/rzbill/memstream/internal/config"
	rtpkg "github.com/rzbill/memstream/internal/runtime"
	"github.com/rzbill/memstream/internal/stream"
	logpkg "github.com/rzbill/memstream/pkg/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func newLogger(cfg cfgpkg.Config) logpkg.Logger {
	parsed, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		parsed = logpkg.InfoLevel
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if cfg.LogFormat == "json" {
		formatter = &logpkg.JSONFormatter{}
	}
	return logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
}

func loadConfig(path string) (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "memstream",
		Short: "memstream CLI",
		Long:  "memstream is an in-memory ordered stream log with consumer groups. This CLI exercises and inspects a local instance.",
	}
	rootCmd.PersistentFlags().String("config", "", "path to JSON config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("memstream", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Append entries to a stream and drain them through consumer groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			streamName, _ := cmd.Flags().GetString("stream")
			entries, _ := cmd.Flags().GetInt("entries")
			groups, _ := cmd.Flags().GetInt("groups")
			batch, _ := cmd.Flags().GetInt("batch")
			filterExpr, _ := cmd.Flags().GetString("filter")

			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg)

			rt, err := rtpkg.Open(rtpkg.Options{Config: cfg, Logger: logger})
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer rt.Close()

			s, err := rt.EnsureStream(streamName)
			if err != nil {
				return fmt.Errorf("ensure stream: %w", err)
			}

			start := time.Now()
			for i := 0; i < entries; i++ {
				kind := "odd"
				if i%2 == 0 {
					kind = "even"
				}
				fields := [][]byte{
					[]byte("seq"), []byte(fmt.Sprintf("%d", i)),
					[]byte("type"), []byte(kind),
				}
				if _, _, err := s.Add(fields, "*"); err != nil {
					return fmt.Errorf("append: %w", err)
				}
			}
			appendDur := time.Since(start)
			logger.Info("append phase done",
				logpkg.Int("entries", entries),
				logpkg.Dur("elapsed", appendDur))

			start = time.Now()
			read := 0
			for gi := 0; gi < groups; gi++ {
				name := fmt.Sprintf("bench-%d", gi)
				if err := s.GroupCreate(name, "0-0", nil); err != nil {
					return fmt.Errorf("create group %s: %w", name, err)
				}
				g, _ := s.GroupGet(name)
				for {
					items, err := g.Read("bench", ">", batch, false)
					if err != nil {
						return fmt.Errorf("group read: %w", err)
					}
					if len(items) == 0 {
						break
					}
					read += len(items)
					ids := make([]string, 0, len(items))
					for _, r := range items {
						ids = append(ids, r.ID)
					}
					if _, err := g.Ack(ids); err != nil {
						return fmt.Errorf("ack: %w", err)
					}
				}
			}
			logger.Info("group read phase done",
				logpkg.Int("groups", groups),
				logpkg.Int("delivered", read),
				logpkg.Dur("elapsed", time.Since(start)))

			if filterExpr != "" {
				f, err := stream.NewFilter(filterExpr)
				if err != nil {
					return fmt.Errorf("compile filter: %w", err)
				}
				start = time.Now()
				matched := s.RangeFilter(stream.BeforeAll(), stream.AfterAll(), false, f)
				logger.Info("filtered range done",
					logpkg.Str("expr", filterExpr),
					logpkg.Int("matched", len(matched)),
					logpkg.Dur("elapsed", time.Since(start)))
			}

			info := s.Info(false)
			logger.Info("stream state",
				logpkg.Str("stream", streamName),
				logpkg.Int("length", info.Length),
				logpkg.Int64("entries_added", info.EntriesAdded),
				logpkg.Int("groups", info.Groups))
			return nil
		},
	}
	benchCmd.Flags().String("stream", "bench", "stream name")
	benchCmd.Flags().Int("entries", 10000, "number of entries to append")
	benchCmd.Flags().Int("groups", 1, "number of consumer groups to drain")
	benchCmd.Flags().Int("batch", 100, "group read batch size")
	benchCmd.Flags().String("filter", "", "optional CEL expression for a filtered range pass")
	rootCmd.AddCommand(benchCmd)

	infoCmd := &cobra.Command{
		Use:   "info [stream]",
		Short: "Create a stream, append a few entries, and dump its info reply",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			name := "demo"
			if len(args) == 1 {
				name = args[0]
			}
			rt, err := rtpkg.Open(rtpkg.Options{Config: cfg, Logger: newLogger(cfg)})
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer rt.Close()
			s, err := rt.EnsureStream(name)
			if err != nil {
				return fmt.Errorf("ensure stream: %w", err)
			}
			for i := 0; i < 3; i++ {
				if _, _, err := s.Add([][]byte{[]byte("n"), []byte(fmt.Sprintf("%d", i))}, "*"); err != nil {
					return err
				}
			}
			for _, v := range s.Info(true).Reply() {
				fmt.Printf("%v\n", v)
			}
			return nil
		},
	}
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
