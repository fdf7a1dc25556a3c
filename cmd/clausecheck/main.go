package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mingshu-dev/clausecheck/internal/hybrid"
	"github.com/mingshu-dev/clausecheck/internal/llm"
	"github.com/mingshu-dev/clausecheck/internal/profile"
	"github.com/mingshu-dev/clausecheck/internal/render"
	"github.com/mingshu-dev/clausecheck/internal/rules"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "clausecheck",
		Short: "Automated legal-risk analysis for contract text",
	}

	root.AddCommand(newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		noAI     bool
		profName string
		format   string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a contract text file (or stdin) and print the risk report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}
			text = textutil.Clean(text)

			log := zap.NewNop()
			if verbose {
				log, err = zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				defer log.Sync() //nolint:errcheck
			}

			prof, err := profile.Load(profName)
			if err != nil {
				return err
			}
			engine, err := rules.NewEngine(rules.Catalog())
			if err != nil {
				return err
			}
			analyzer := hybrid.New(engine, llm.NewAdapter(prof, log), log)

			report := analyzer.Analyze(cmd.Context(), text, !noAI)

			switch format {
			case "json":
				b, err := render.JSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			case "markdown", "md":
				fmt.Fprint(cmd.OutOrStdout(), render.Markdown(report))
			default:
				return fmt.Errorf("unknown format %q (want json or markdown)", format)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip the AI provider and use the offline reviewer")
	cmd.Flags().StringVar(&profName, "profile", "general", "review profile: general, sales, procurement, service, nda")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or markdown")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log provider selection and degradation to stderr")

	return cmd
}

func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read contract: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
