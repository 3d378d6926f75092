package cli

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/loaders/condameta"
)

var (
	listJSON      bool
	listExport    bool
	listCanonical bool
	listFullName  bool
	listReverse   bool
	listNoPip     bool
)

var listCmd = &cobra.Command{
	Use:   "list [regex]",
	Short: "List installed packages",
	Long: `Lists the packages installed into an environment, merging the native
metadata store with foreign-ecosystem packages when interoperability is
enabled. An optional regular expression filters by package name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVarP(&listExport, "export", "e", false, "output requirement strings (name=version=build)")
	listCmd.Flags().BoolVarP(&listCanonical, "canonical", "c", false, "output canonical names only")
	listCmd.Flags().BoolVarP(&listFullName, "full-name", "f", false, "only match exact full names")
	listCmd.Flags().BoolVarP(&listReverse, "reverse", "r", false, "list in reverse order")
	listCmd.Flags().BoolVar(&listNoPip, "no-pip", false, "exclude foreign-ecosystem packages")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	prefix, err := resolvePrefix()
	if err != nil {
		return err
	}

	var filter *regexp.Regexp
	if len(args) > 0 {
		pattern := args[0]
		if listFullName {
			pattern = "^" + pattern + "$"
		}
		filter, err = regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid package filter: %w", err)
		}
	}

	handle, err := condameta.Handle(prefix)
	if err != nil {
		return &domain.EnvironmentUnreadableError{Prefix: prefix, Err: err}
	}

	interop := svc.Config.Settings().Interoperability && !listNoPip
	state, err := svc.State.GetState(cmd.Context(), handle, interop)
	if err != nil {
		return err
	}

	records := state.Records()
	if filter != nil {
		records = slices.DeleteFunc(records, func(r domain.Record) bool {
			return !filter.MatchString(r.Name)
		})
	}
	if listReverse {
		slices.Reverse(records)
	}

	switch {
	case listJSON:
		return printListJSON(cmd, records)
	case listCanonical:
		printListCanonical(cmd, records)
	case listExport:
		printListExport(cmd, prefix, records)
	default:
		printListTable(cmd, prefix, records)
	}
	return nil
}

func printListJSON(cmd *cobra.Command, records []domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding package list: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printListCanonical(cmd *cobra.Command, records []domain.Record) {
	for _, r := range records {
		if r.Channel != "" {
			cmd.Printf("%s::%s-%s-%s\n", r.Channel, r.Name, r.Version, r.Build)
			continue
		}
		cmd.Printf("%s-%s-%s\n", r.Name, r.Version, r.Build)
	}
}

func printListExport(cmd *cobra.Command, prefix string, records []domain.Record) {
	cmd.Printf("# This file may be used to recreate the environment at %s\n", prefix)
	for _, r := range records {
		cmd.Println(r.Spec())
	}
}

func printListTable(cmd *cobra.Command, prefix string, records []domain.Record) {
	cmd.Printf("# packages in environment at %s:\n", prefix)
	cmd.Println("#")
	cmd.Printf("# %-26s %-15s %-15s %s\n", "Name", "Version", "Build", "Channel")
	for _, r := range records {
		channel := r.Channel
		if r.Source == domain.SourceForeign && channel == "" {
			channel = "<" + r.Loader + ">"
		}
		cmd.Printf("%-28s %-15s %-15s %s\n", r.Name, r.Version, r.Build, channel)
	}
}
