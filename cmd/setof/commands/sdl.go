package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSDLCommand creates the sdl command.
func NewSDLCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sdl",
		Short: "Print the generated GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			ex, reg, err := s.run(cmd.Context(), false)
			if err != nil {
				return err
			}
			sdl, err := ex.SDL(reg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
			return err
		},
	}
}
