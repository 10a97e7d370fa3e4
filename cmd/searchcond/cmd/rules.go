package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect, validate and store rule documents",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule set",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Report problems in a rule document; exits non-zero if any",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesCheck,
}

var rulesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Store a rule document as a new version in the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesImport,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rule-set versions",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd, rulesCheckCmd, rulesImportCmd, rulesListCmd)

	rulesShowCmd.Flags().String("format", "json", "output format (json, yaml)")
	rulesImportCmd.Flags().String("name", "", "rule-set name (defaults to rules.name)")
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("format")
	format, err := rules.ParseFormat(name)
	if err != nil {
		return err
	}

	rs, source, err := loadActiveRules()
	if err != nil {
		return err
	}
	logger.Debug("active rules", zap.String("source", source.Kind), zap.Int("rules", rs.Len()))

	out, err := rules.EncodeRules(rs, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	rs, docIssues, err := rules.LoadRulesFile(args[0])
	if err != nil {
		return err
	}
	compiled, compileIssues := rules.Compile(rs)

	out := cmd.OutOrStdout()
	for _, issue := range append(docIssues, compileIssues...) {
		fmt.Fprintln(out, issue.String())
	}

	total := len(docIssues) + len(compileIssues)
	fmt.Fprintf(out, "%d rules usable, %d issues\n", compiled.Len(), total)
	if total > 0 {
		return fmt.Errorf("%s: %d issues", args[0], total)
	}
	return nil
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := rules.FormatFromPath(path)
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = cfg.Rules.Name
	}

	database, store, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := store.Save(name, doc, format)
	if err != nil {
		return err
	}
	logIssues("rule document issue", res.Issues)

	if res.Created {
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s as %s\n", name, res.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "unchanged: %s already stored as %s\n", name, res.ID)
	}
	return nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	database, store, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	recs, err := store.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tFORMAT\tRULES\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Name, r.ID, r.Format, r.RuleCount, r.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
