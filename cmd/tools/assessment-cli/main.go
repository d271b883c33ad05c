// cmd/tools/assessment-cli/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"assessment-workers/internal/assessment"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/logger"
	"assessment-workers/pkg/registry"
)

type engineFlags struct {
	totalQuestions int
	timeBuffer     int
	bankPath       string
	verbose        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &engineFlags{}

	root := &cobra.Command{
		Use:           "assessment-cli",
		Short:         "Analyze jobs and generate assessment tests offline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().IntVar(&flags.totalQuestions, "total-questions", assessment.DefaultTotalQuestions, "questions per test")
	root.PersistentFlags().IntVar(&flags.timeBuffer, "time-buffer", assessment.DefaultTimeBufferPercent, "time buffer percent added to the summed question time")
	root.PersistentFlags().StringVar(&flags.bankPath, "bank", "", "question bank YAML; the embedded bank when unset")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log engine warnings to stderr")

	root.AddCommand(
		newAnalyzeCmd(flags),
		newGenerateCmd(flags),
		newBankCmd(),
		newRegistryCmd(),
	)
	return root
}

func newAnalyzeCmd(flags *engineFlags) *cobra.Command {
	var jobPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the test blueprint for a job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := flags.engine(cmd)
			if err != nil {
				return err
			}
			job, err := readJob(cmd, jobPath)
			if err != nil {
				return err
			}
			bp, err := engine.AnalyzeJobRequirements(context.Background(), job)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), bp)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "-", "job JSON file, - for stdin")
	return cmd
}

type generateResult struct {
	Blueprint *assessment.JobTestBlueprint   `json:"blueprint"`
	Questions []assessment.GeneratedQuestion `json:"questions"`
}

func newGenerateCmd(flags *engineFlags) *cobra.Command {
	var (
		jobPath string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Analyze a job and generate its test questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := flags.engine(cmd)
			if err != nil {
				return err
			}
			job, err := readJob(cmd, jobPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			bp, err := engine.AnalyzeJobRequirements(ctx, job)
			if err != nil {
				return err
			}

			var questions []assessment.GeneratedQuestion
			if cmd.Flags().Changed("seed") {
				questions, err = engine.GenerateTestQuestionsWithSeed(ctx, bp, seed)
			} else {
				questions, err = engine.GenerateTestQuestions(ctx, bp)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), generateResult{Blueprint: bp, Questions: questions})
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "-", "job JSON file, - for stdin")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for a reproducible question set")
	return cmd
}

func newBankCmd() *cobra.Command {
	bank := &cobra.Command{Use: "bank", Short: "Question bank tools"}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a question bank against its schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				b   *assessment.Bank
				err error
			)
			if path == "" {
				b, err = assessment.DefaultBank()
			} else {
				b, err = assessment.LoadBankFile(path)
			}
			if err != nil {
				return err
			}

			sizes := make(map[assessment.CategoryID]int, len(assessment.PriorityOrder))
			for _, id := range assessment.PriorityOrder {
				sizes[id] = b.Size(id)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"valid":     true,
				"version":   b.Version(),
				"templates": sizes,
			})
		},
	}
	validate.Flags().StringVar(&path, "path", "", "bank YAML file; the embedded bank when unset")

	bank.AddCommand(validate)
	return bank
}

func newRegistryCmd() *cobra.Command {
	reg := &cobra.Command{Use: "registry", Short: "Activity registry tools"}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the activity registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				r   *registry.ActivityRegistry
				err error
			)
			if path == "" {
				r, err = registry.Default()
			} else {
				r, err = registry.LoadRegistry(path)
			}
			if err != nil {
				return err
			}

			taskTypes := make([]string, 0, len(r.Activities))
			for _, a := range r.Activities {
				taskTypes = append(taskTypes, a.TaskType)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"valid":     true,
				"version":   r.Version,
				"taskTypes": taskTypes,
			})
		},
	}
	validate.Flags().StringVar(&path, "path", "", "registry JSON file; the embedded registry when unset")

	reg.AddCommand(validate)
	return reg
}

func (f *engineFlags) engine(cmd *cobra.Command) (*assessment.Engine, error) {
	log := logger.NewNoOpLogger()
	if f.verbose {
		log = logger.NewZapAdapter(logger.New("debug", "console"))
	}
	return assessment.NewFromConfig(config.AssessmentConfig{
		TotalQuestions:    f.totalQuestions,
		TimeBufferPercent: f.timeBuffer,
		BankPath:          f.bankPath,
	}, log)
}

func readJob(cmd *cobra.Command, path string) (assessment.Job, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return assessment.Job{}, fmt.Errorf("reading job: %w", err)
	}

	var job assessment.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return assessment.Job{}, fmt.Errorf("parsing job: %w", err)
	}
	return job, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
