package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

var (
	explainDialect string
	explainFormat  string
	explainStrict  bool
	explainMaxPage int
)

var explainCmd = &cobra.Command{
	Use:   "explain <entity> [query-string]",
	Short: "Print the SQL compiled for a request without executing it",
	Example: `  hexaquery explain users "filter[nombre][contains]=an&sort=-nombre&page=2&per_page=10"
  hexaquery explain tasks "include=assignee,createdBy.organizations&per_page=5&cursor=" --dialect sqlite`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		return runExplain(cmd.OutOrStdout(), args[0], raw)
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainDialect, "dialect", "postgres", "SQL dialect: postgres, sqlite or clickhouse")
	explainCmd.Flags().StringVarP(&explainFormat, "output", "o", "yaml", "output format: yaml or json")
	explainCmd.Flags().BoolVar(&explainStrict, "strict", false, "reject invalid parameters instead of ignoring them")
	explainCmd.Flags().IntVar(&explainMaxPage, "max-per-page", query.DefaultMaxPerPage, "upper bound for per_page")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(out io.Writer, entityName, rawQuery string) error {
	entity, err := entityFor(entityName)
	if err != nil {
		return err
	}
	dialect, err := sqlexec.DialectFor(explainDialect)
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return fmt.Errorf("invalid query string: %w", err)
	}

	opts := []query.Option{query.WithMaxPerPage(explainMaxPage)}
	if explainStrict {
		opts = append(opts, query.WithStrict())
	}
	b, err := query.FromParams(entity, query.ParseParams(values), opts...)
	if err != nil {
		return err
	}

	// Explain no toca la base: el ejecutor no necesita pool.
	ex, err := sqlexec.NewExecutor(nil, dialect, zap.NewNop()).Explain(b)
	if err != nil {
		return err
	}

	switch strings.ToLower(explainFormat) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(ex)
	}
	return fmt.Errorf("unknown output format %q", explainFormat)
}
