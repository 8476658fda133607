package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
)

// RuleInfo describes one rule in the rules listing.
type RuleInfo struct {
	Name     ir.Rule `json:"name"`
	Title    string  `json:"title"`
	Multiple int     `json:"multiple"`
	Open     bool    `json:"open"`
	Degree   int     `json:"degree"`
	Scale    Float   `json:"scale"`
	Pattern  string  `json:"pattern"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the quadrature rules",
		Long: `List every quadrature rule with the multiple n must be, whether the
endpoints are sampled, and the weight pattern applied to the nodes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, cmd)
		},
	}

	return cmd
}

func runRules(opts *RootOptions, cmd *cobra.Command) error {
	rules := quadrature.Rules()
	infos := make([]RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = RuleInfo{
			Name:     r.Name,
			Title:    r.Title,
			Multiple: r.Multiple,
			Open:     r.Open,
			Degree:   r.Degree,
			Scale:    Float(r.ScaleFactor()),
			Pattern:  r.Pattern,
		}
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.writeJSON(CLIResponse{Status: "ok", Data: infos})
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tN MULTIPLE OF\tENDPOINTS\tWEIGHTS")
	for _, r := range infos {
		endpoints := "sampled"
		if r.Open {
			endpoints = "skipped"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Name, r.Title, r.Multiple, endpoints, r.Pattern)
	}
	return tw.Flush()
}
