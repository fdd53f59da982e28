// auditctl runs an audit from the command line, streaming lifecycle events to
// stdout and printing the final report JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/auditdesk/audit-assistant/internal/adapters/agent/dummy"
	"github.com/auditdesk/audit-assistant/internal/adapters/agent/live"
	"github.com/auditdesk/audit-assistant/internal/adapters/csvtable"
	"github.com/auditdesk/audit-assistant/internal/config"
	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir   string
		liveMode  bool
		model     string
		rulesPath string
	)

	cmd := &cobra.Command{
		Use:          "auditctl",
		Short:        "Run the audit checks against a directory of CSVs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

			files, err := datasetFiles(dataDir)
			if err != nil {
				return err
			}

			cfg := config.Config{RulesPath: rulesPath}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			var agent ports.Agent
			if liveMode {
				key := os.Getenv("OPENAI_API_KEY")
				if key == "" {
					return fmt.Errorf("--live requires OPENAI_API_KEY")
				}
				agent = live.New(key, model, csvtable.NewLoader())
			} else {
				agent = dummy.New(log)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			rep, err := agent.Run(ctx, ports.RunRequest{Files: files, Catalog: catalog}, consoleEmit)
			if err != nil {
				return err
			}

			fmt.Println("\n=== AUDIT REPORT (JSON) ===")
			return report.WriteJSON(os.Stdout, rep)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "./data", "directory containing the dataset CSVs")
	cmd.Flags().BoolVar(&liveMode, "live", false, "use the OpenAI live agent instead of the built-in engine")
	cmd.Flags().StringVar(&model, "model", "gpt-5", "OpenAI model for --live")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "optional YAML rule catalog override")
	return cmd
}

// datasetFiles collects the expected CSVs present under dir.
func datasetFiles(dir string) ([]string, error) {
	var files []string
	for _, name := range csvtable.AllowedNames() {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no datasets in %s, expected any of %v", dir, csvtable.AllowedNames())
	}
	return files, nil
}

func consoleEmit(ev domain.Event) {
	payload, _ := json.Marshal(ev.Data)
	if ev.RuleID != "" {
		fmt.Printf("[%s] %s %s\n", ev.Type, ev.RuleID, payload)
		return
	}
	fmt.Printf("[%s] %s\n", ev.Type, payload)
}
