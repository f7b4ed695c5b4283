package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/liuren-api/internal/database"
	"github.com/zapponejosh/liuren-api/internal/divination"
	"github.com/zapponejosh/liuren-api/internal/logger"
	"github.com/zapponejosh/liuren-api/internal/registry"
)

// app carries the state shared by all subcommands.
type app struct {
	dbPath   string
	dataDir  string
	logLevel string
	asJSON   bool

	logger *slog.Logger
	reg    *registry.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "liuren",
		Short: "Xiao Liu Ren casts, Wu Xing relations and Ba Zi charts",
		Long:  "liuren casts the three transmissions of Xiao Liu Ren from numbers, dates or\nChinese characters, and profiles Ba Zi birth charts.",

		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = logger.New(a.logLevel, "text", cmd.ErrOrStderr())
			reg, err := registry.LoadDir(a.dataDir)
			if err != nil {
				return fmt.Errorf("load tables: %w", err)
			}
			a.reg = reg
			return nil
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.dbPath, "db", "data/liuren.db", "SQLite database holding the stroke dictionary")
	f.StringVar(&a.dataDir, "data-dir", "", "Directory overriding the embedded tables")
	f.StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	f.BoolVar(&a.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(
		newDivineCmd(a),
		newBaziCmd(a),
		newElementsCmd(a),
		newDayMasterCmd(a),
		newLunarCmd(a),
		newStrokesCmd(a),
	)
	return root
}

// service builds a divination service. withStrokes opens the database so
// character lookups work; the returned close func must always be called.
func (a *app) service(withStrokes bool) (*divination.Service, func(), error) {
	if !withStrokes {
		return divination.NewService(a.reg, nil, a.logger), func() {}, nil
	}

	db, err := database.Open(database.DefaultConfig(a.dbPath), a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return divination.NewService(a.reg, db, a.logger), func() { db.Close() }, nil
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (a *app) print(w io.Writer, v any, text func(io.Writer)) error {
	if !a.asJSON {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
