package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var (
		attributes    []string
		relationships []string
	)

	cmd := &cobra.Command{
		Use:   "create TYPE",
		Short: "Create a resource",
		Long:  "Create a resource with attributes and singular relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := createClient()
			if err != nil {
				return err
			}

			parsedAttributes, err := parsePairs(attributes)
			if err != nil {
				return err
			}

			params := jsonapi.ResourceParams{
				Attributes: make(map[string]interface{}, len(parsedAttributes)),
			}
			for key, value := range parsedAttributes {
				params.Attributes[key] = value
			}

			// Relationship values are type:id pairs
			parsedRelationships, err := parsePairs(relationships)
			if err != nil {
				return err
			}

			if len(parsedRelationships) > 0 {
				params.Relationships = make(map[string]interface{}, len(parsedRelationships))

				for name, value := range parsedRelationships {
					relType, relID, found := strings.Cut(value, ":")
					if !found {
						return ErrInvalidPairFormat
					}

					params.Relationships[name] = jsonapi.ResourceIdentifier{Type: relType, ID: relID}
				}
			}

			resource, err := api.Type(args[0]).Create(context.Background(), params)
			if err != nil {
				return err
			}

			return renderResource(resource)
		},
	}

	cmd.Flags().StringSliceVar(&attributes, "attr", nil, "attribute as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&relationships, "rel", nil, "relationship as name=type:id (repeatable)")

	return cmd
}
