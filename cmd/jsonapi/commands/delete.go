package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE ID",
		Short: "Delete a resource",
		Long:  "Delete a resource by type name and id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := createClient()
			if err != nil {
				return err
			}

			resource := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: args[0], ID: args[1]})
			if err := resource.Delete(context.Background()); err != nil {
				return err
			}

			fmt.Printf("Deleted %s %s.\n", args[0], args[1])

			return nil
		},
	}
}
