package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		filters  []string
		include  []string
		sortBy   []string
		pageSize string
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list TYPE",
		Short: "List resources of a type",
		Long:  "List resources of a type, with filtering, sorting and pagination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := createClient()
			if err != nil {
				return err
			}

			queryset := api.Type(args[0]).List()

			parsed, err := parsePairs(filters)
			if err != nil {
				return err
			}

			for key, value := range parsed {
				queryset = queryset.Filter(key, value)
			}

			if len(include) > 0 {
				queryset = queryset.Include(include...)
			}

			if len(sortBy) > 0 {
				queryset = queryset.Sort(sortBy...)
			}

			if pageSize != "" {
				queryset = queryset.PageBy("size", pageSize)
			}

			ctx := context.Background()

			var items []*jsonapi.Resource
			if allPages {
				items, err = queryset.All(ctx)
			} else {
				items, err = queryset.Items(ctx)
			}

			if err != nil {
				return err
			}

			return renderCollection(items)
		},
	}

	cmd.Flags().StringSliceVar(&filters, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "relationships to side-load")
	cmd.Flags().StringSliceVar(&sortBy, "sort", nil, "sort fields, prefix with - for descending")
	cmd.Flags().StringVar(&pageSize, "page-size", "", "page size")
	cmd.Flags().BoolVar(&allPages, "all", false, "follow pagination links to the end")

	return cmd
}
