// Package commands implements the jsonapi CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dbendilas/jsonapi/pkg/client"
	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Common static errors used throughout the commands package.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required (use --api or login first)")
	ErrInvalidPairFormat   = errors.New("invalid format, expected key=value")
)

// createClient builds an API handle from the effective configuration.
func createClient() (*jsonapi.API, error) {
	endpoint := viper.GetString("api")
	if endpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	return client.New(&client.Config{
		Endpoint: endpoint,
		Token:    viper.GetString("token"),
		Debug:    viper.GetBool("verbose"),
	})
}

// parsePairs splits repeated key=value flag values into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	parsed := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("parsing '%s': %w", pair, ErrInvalidPairFormat)
		}

		parsed[key] = value
	}

	return parsed, nil
}

// resourceToMap flattens a resource for structured output. Relationships
// reduce to their identifiers; unresolved plural ones to their related URL.
func resourceToMap(resource *jsonapi.Resource) map[string]interface{} {
	out := map[string]interface{}{
		"type": resource.Type(),
		"id":   resource.ID,
	}

	if len(resource.Attributes) > 0 {
		out["attributes"] = resource.Attributes
	}

	if len(resource.Relationships) > 0 {
		relationships := make(map[string]interface{}, len(resource.Relationships))

		for name, rel := range resource.Relationships {
			switch {
			case rel == nil:
				relationships[name] = nil
			case rel.Data != nil:
				relationships[name] = map[string]string{"type": rel.Data.Type, "id": rel.Data.ID}
			case rel.Singular():
				relationships[name] = nil
			case rel.Links != nil:
				relationships[name] = map[string]string{"related": rel.Links.Related}
			}
		}

		out["relationships"] = relationships
	}

	return out
}

func renderStructured(value interface{}) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	default:
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(value)
	}
}

// renderResource prints a single resource in the configured output format.
func renderResource(resource *jsonapi.Resource) error {
	output := viper.GetString("output")
	if output == OutputFormatJSON || output == OutputFormatYAML {
		return renderStructured(resourceToMap(resource))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	_ = table.Append("type", resource.Type())
	_ = table.Append("id", resource.ID)

	for _, name := range sortedKeys(resource.Attributes) {
		_ = table.Append(name, fmt.Sprintf("%v", resource.Attributes[name]))
	}

	for name, rel := range resource.Relationships {
		if rel != nil && rel.Data != nil {
			_ = table.Append(name, rel.Data.ID)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderCollection prints a page of resources in the configured output
// format.
func renderCollection(items []*jsonapi.Resource) error {
	output := viper.GetString("output")
	if output == OutputFormatJSON || output == OutputFormatYAML {
		flattened := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			flattened = append(flattened, resourceToMap(item))
		}

		return renderStructured(flattened)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Type", "ID", "Attributes")

	for _, item := range items {
		_ = table.Append(item.Type(), item.ID, summarizeAttributes(item.Attributes))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Printf("\n%d resources\n", len(items))

	return nil
}

func summarizeAttributes(attributes map[string]interface{}) string {
	parts := make([]string, 0, len(attributes))
	for _, name := range sortedKeys(attributes) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, attributes[name]))
	}

	return strings.Join(parts, ", ")
}

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
