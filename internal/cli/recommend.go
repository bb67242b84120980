package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/practice-tracker/internal/model"
)

type recommendOptions struct {
	Tag  string
	Tier int
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend --tag <tag> --tier <n>",
		Short: "List up to five problems for a tag around a tier",
		Long: `List problems tagged --tag whose level is within one tier of --tier,
easiest first, exactly as the anonymous recommendation endpoint does.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)

			problems, err := rootOpts.recommender(cmd).ByTagAndTier(cmd.Context(), opts.Tag, opts.Tier)
			if err != nil {
				return out.Failure(err)
			}
			return out.Success(problems, func(w io.Writer) error {
				return writeProblems(w, problems)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "algorithm tag, e.g. dp")
	cmd.Flags().IntVar(&opts.Tier, "tier", 0, "center tier (0-30)")
	_ = cmd.MarkFlagRequired("tag")
	_ = cmd.MarkFlagRequired("tier")

	return cmd
}

func writeProblems(w io.Writer, problems []model.Problem) error {
	if len(problems) == 0 {
		_, err := fmt.Fprintln(w, "no problems found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tTAGS")
	for _, p := range problems {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ProblemID, p.Title, model.TierName(p.Level), strings.Join(p.Tags, ","))
	}
	return tw.Flush()
}
