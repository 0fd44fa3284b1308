package cmd

import (
	"github.com/spf13/cobra"
	"github.com/templui/pixaro/internal/repository"
)

func SessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			removed, err := repository.NewSessionRepository(database).DeleteExpired()
			if err != nil {
				return err
			}
			cmd.Printf("removed %d expired sessions\n", removed)
			return nil
		},
	})
	return cmd
}
