// Package cli is the terminal surface: ledger management, record
// entry, chart series and the statistics panel, printed as text.
package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moneysaver/internal/config"
	"moneysaver/internal/core"
	"moneysaver/internal/export"
	"moneysaver/internal/format"
	"moneysaver/internal/ledger"
	"moneysaver/internal/stats"
)

var (
	ledgerDir string
	cfgFile   string
)

var rootCmd = &cobra.Command{
	Use:   "moneysaver",
	Short: "Personal finance ledgers: record entry and spending statistics",
	Long: `moneysaver keeps dated income and expenditure records in JSON
ledger files and aggregates them into daily, category and monthly
series plus a maximum/average/total statistics panel.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ledgerDir, "dir", "", "ledger directory (overrides configuration)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML configuration file")

	rootCmd.AddCommand(ledgersCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
}

// openStore resolves the ledger directory from flags, the optional
// config file and the environment, in that order of precedence.
func openStore() (*ledger.Store, error) {
	cfg := config.Load()
	if cfgFile != "" {
		if err := cfg.LoadFile(cfgFile); err != nil {
			return nil, err
		}
	}
	dir := cfg.LedgerDir
	if ledgerDir != "" {
		dir = ledgerDir
	}
	return ledger.NewStore(dir)
}

var ledgersCmd = &cobra.Command{
	Use:   "ledgers",
	Short: "List existing ledgers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No ledgers found.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var (
	createAuthor string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		led, err := store.Create(createAuthor, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created ledger %q for %s\n", led.FileName, led.Author)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <ledger>",
	Short: "Print the records of a ledger, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		led, err := store.Load(args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tDATE\tCATEGORY\tAMOUNT\tFLAG")
		for _, rec := range led.Records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				rec.Index, rec.Date, rec.Category, rec.Amount, rec.Flag)
		}
		return w.Flush()
	},
}

var (
	addDate     string
	addCategory string
	addAmount   string
	addIncome   bool
)

var addCmd = &cobra.Command{
	Use:   "add <ledger>",
	Short: "Add a record to a ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		rec := core.Record{
			Flag:     core.FlagExpenditure,
			Category: strings.TrimSpace(addCategory),
			Date:     core.Today(),
		}
		if addIncome {
			rec.Flag = core.FlagIncome
			rec.Category = core.CategoryIncome
		}
		if addDate != "" {
			rec.Date, err = core.ParseDate(addDate)
			if err != nil {
				return fmt.Errorf("invalid date %q: expected DD.MM.YYYY", addDate)
			}
		}
		rec.Amount = core.ParseAmount(addAmount)
		if !rec.Amount.Valid() {
			return fmt.Errorf("invalid amount %q: must be numeric", addAmount)
		}
		if err := rec.Validate(); err != nil {
			return err
		}

		led, err := store.Load(args[0])
		if err != nil {
			return err
		}
		led.Insert(rec)
		if err := store.Save(led); err != nil {
			return err
		}
		fmt.Printf("Added %s %s to %q (%d records)\n",
			rec.Category, format.Currency(rec.Amount.Decimal()), args[0], len(led.Records))
		return nil
	},
}

var statsCategory string

var statsCmd = &cobra.Command{
	Use:   "stats <ledger>",
	Short: "Print chart series and the statistics panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		led, err := store.Load(args[0])
		if err != nil {
			return err
		}

		_, expenditures := stats.Partition(led.Records)

		fmt.Printf("Daily expenditure (%s):\n", statsCategory)
		printSeries(stats.DailyTotals(stats.FilterByCategory(expenditures, statsCategory)))

		fmt.Println("\nExpenditure by category:")
		printSeries(stats.CategoryTotals(expenditures))

		fmt.Println("\nMonthly balance:")
		printSeries(stats.MonthlyBalance(led.Records))

		summary := format.NewSummary(led.Records)
		fmt.Println("\nStatistics:")
		printSide(" Expenditure", summary.Expenditure)
		printSide(" Income", summary.Income)
		return nil
	},
}

func printSeries(series []stats.Point) {
	if len(series) == 0 {
		fmt.Println("  " + format.NoData)
		return
	}
	for _, p := range series {
		fmt.Printf("  %s  %s\n", p.Key, format.Currency(p.Value))
	}
}

func printSide(title string, side format.SideSummary) {
	fmt.Println(title + ":")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  max/day\t%s\n", side.MaxByDay)
	fmt.Fprintf(w, "  max/category\t%s\n", side.MaxByCategory)
	fmt.Fprintf(w, "  max/month\t%s\n", side.MaxByMonth)
	fmt.Fprintf(w, "  monthly avg\t%s\n", side.MonthlyAvg)
	fmt.Fprintf(w, "  total\t%s\n", side.Total)
	w.Flush()
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <ledger>",
	Short: "Export a ledger as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		led, err := store.Load(args[0])
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = args[0] + ".xlsx"
		}
		if err := export.WriteLedger(out, led); err != nil {
			return err
		}
		fmt.Printf("Exported %q (%d records) to %s\n", args[0], len(led.Records), out)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAuthor, "author", "", "ledger author")
	_ = createCmd.MarkFlagRequired("author")

	addCmd.Flags().StringVar(&addDate, "date", "", "record date as DD.MM.YYYY (default today)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "expenditure category")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "amount")
	addCmd.Flags().BoolVar(&addIncome, "income", false, "record an income instead of an expenditure")
	_ = addCmd.MarkFlagRequired("amount")

	statsCmd.Flags().StringVar(&statsCategory, "category", core.CategoryAll, "category filter for the daily series")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <ledger>.xlsx)")
}
