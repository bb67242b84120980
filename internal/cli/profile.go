package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakif/practice-tracker/internal/model"
)

type profileOutput struct {
	*model.Profile
	TierName string `json:"tierName"`
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "profile <handle>",
		Short:         "Show a ranking handle's tier, rating and solved count",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)

			profile, err := rootOpts.recommender(cmd).LookupProfile(cmd.Context(), args[0])
			if err != nil {
				return out.Failure(err)
			}

			result := profileOutput{Profile: profile, TierName: model.TierName(profile.Tier)}
			return out.Success(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\t%s (tier %d)\trating %d\tsolved %d\n",
					profile.Handle, result.TierName, profile.Tier, profile.Rating, profile.SolvedCount)
				return err
			})
		},
	}
}
