// Command labctl runs lab calculations offline and manages the lab database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Thermolab/internal/pkg/logger"
)

var (
	inputsFile    string
	constantsFile string
	outFile       string
	plot          bool
	asJSON        bool
	logLevel      string

	studentName string
	usn         string
	runDate     string
	instructor  string

	login    string
	email    string
	password string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "labctl",
		Short:         "heat transfer lab calculations and administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Format: "console"})
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	calcCmd := &cobra.Command{
		Use:   "calc [slug]",
		Short: "evaluate readings from a yaml or json file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCalc,
	}
	calcCmd.Flags().StringVarP(&inputsFile, "inputs", "i", "", "readings file (yaml)")
	calcCmd.Flags().StringVarP(&constantsFile, "constants", "c", "", "constants file overriding the built-in catalog (yaml)")
	calcCmd.Flags().BoolVar(&plot, "plot", false, "plot the rod profile or h per trial")
	calcCmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as json")
	calcCmd.MarkFlagRequired("inputs")

	importCmd := &cobra.Command{
		Use:   "import [slug] [workbook.xlsx]",
		Short: "evaluate readings from an xlsx workbook",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}
	importCmd.Flags().StringVarP(&constantsFile, "constants", "c", "", "constants file (yaml)")
	importCmd.Flags().BoolVar(&plot, "plot", false, "plot the result")
	importCmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as json")

	reportCmd := &cobra.Command{
		Use:   "report [slug]",
		Short: "write a pdf lab report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().StringVarP(&inputsFile, "inputs", "i", "", "readings file (yaml)")
	reportCmd.Flags().StringVarP(&constantsFile, "constants", "c", "", "constants file (yaml)")
	reportCmd.Flags().StringVarP(&outFile, "out", "o", "report.pdf", "output file")
	reportCmd.Flags().StringVar(&studentName, "student", "", "student name")
	reportCmd.Flags().StringVar(&usn, "usn", "", "university seat number")
	reportCmd.Flags().StringVar(&runDate, "date", "", "date of the experiment (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&instructor, "instructor", "", "instructor name")
	reportCmd.MarkFlagRequired("inputs")

	experimentsCmd := &cobra.Command{
		Use:   "experiments",
		Short: "list the built-in experiments and their constants",
		RunE:  listExperiments,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "create the schema and insert the built-in experiments",
		RunE:  runSeed,
	}

	instructorCmd := &cobra.Command{
		Use:   "instructor",
		Short: "manage instructor accounts",
	}
	addInstructorCmd := &cobra.Command{
		Use:   "add",
		Short: "create an instructor account",
		RunE:  addInstructor,
	}
	addInstructorCmd.Flags().StringVar(&login, "login", "", "login")
	addInstructorCmd.Flags().StringVar(&email, "email", "", "email")
	addInstructorCmd.Flags().StringVar(&password, "password", "", "password (min 6 characters)")
	addInstructorCmd.MarkFlagRequired("login")
	addInstructorCmd.MarkFlagRequired("email")
	addInstructorCmd.MarkFlagRequired("password")
	instructorCmd.AddCommand(addInstructorCmd)

	rootCmd.AddCommand(calcCmd, importCmd, reportCmd, experimentsCmd, seedCmd, instructorCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
	logger.Sync()
}
