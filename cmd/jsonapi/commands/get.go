package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get TYPE ID",
		Short: "Fetch a single resource",
		Long:  "Fetch a single resource by type name and id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := createClient()
			if err != nil {
				return err
			}

			resource, err := api.Type(args[0]).Get(context.Background(), args[1], include...)
			if err != nil {
				return err
			}

			return renderResource(resource)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relationships to side-load")

	return cmd
}
