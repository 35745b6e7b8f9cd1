// file: internal/schema/name_rules.go
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// EntityType represents a type of MCP entity that needs name validation.
type EntityType string

const (
	// EntityTypeTool represents a tool entity in MCP.
	EntityTypeTool EntityType = "tool"

	// EntityTypeResource represents a resource or resource template URI.
	EntityTypeResource EntityType = "resource"

	// EntityTypePrompt represents a prompt entity in MCP.
	EntityTypePrompt EntityType = "prompt"
)

// NameRule defines validation rules for an entity name.
type NameRule struct {
	// Pattern is the regex pattern the name must match.
	Pattern *regexp.Regexp

	// Description is a human-readable description of the pattern.
	Description string

	// MaxLength is the maximum allowed length of the name.
	MaxLength int

	// ExampleValid contains examples of valid names.
	ExampleValid []string

	// ExampleInvalid contains examples of invalid names with reasons.
	ExampleInvalid map[string]string
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// nameRules maps entity types to their validation rules.
var nameRules = map[EntityType]NameRule{
	EntityTypeTool: {
		Pattern:     snakeCase,
		Description: "Must start with a lowercase letter, followed by lowercase letters, digits or underscores",
		MaxLength:   64, // Claude Desktop rejects longer tool names.
		ExampleValid: []string{
			"list_bookmarks",
			"archive_bookmarks_bulk",
			"get_article_content",
		},
		ExampleInvalid: map[string]string{
			"ListBookmarks":  "Starts with uppercase letter",
			"list-bookmarks": "Contains hyphen",
			"list.bookmarks": "Contains period",
			"list bookmarks": "Contains space",
			"1list":          "Starts with number",
			"":               "Empty string",
		},
	},
	EntityTypeResource: {
		Pattern:     regexp.MustCompile(`^instapaper://[a-z]+(/([a-z0-9_]+|\{[a-z_]+\}))*$`),
		Description: "Must use the instapaper:// scheme followed by lowercase path segments or {placeholders}",
		MaxLength:   128,
		ExampleValid: []string{
			"instapaper://folders",
			"instapaper://bookmarks/unread",
			"instapaper://article/{bookmark_id}",
		},
		ExampleInvalid: map[string]string{
			"https://example.com/folders": "Wrong scheme",
			"instapaper://Bookmarks":      "Contains uppercase letter",
			"instapaper://article/{Id}":   "Placeholder is not snake_case",
			"instapaper://bookmarks/":     "Trailing slash",
		},
	},
	EntityTypePrompt: {
		Pattern:     snakeCase,
		Description: "Must start with a lowercase letter, followed by lowercase letters, digits or underscores",
		MaxLength:   64,
		ExampleValid: []string{
			"weekly_reading_digest",
			"research_synthesis",
		},
		ExampleInvalid: map[string]string{
			"Weekly-Digest": "Starts with uppercase and contains hyphen",
			"weekly digest": "Contains space",
		},
	},
}

// GetNameRule returns the validation rule for a specific entity type.
func GetNameRule(entityType EntityType) (NameRule, bool) {
	rule, ok := nameRules[entityType]
	return rule, ok
}

// ValidateName validates a name against the rules for a specific entity type.
func ValidateName(entityType EntityType, name string) error {
	rule, ok := nameRules[entityType]
	if !ok {
		return errors.Newf("unknown entity type: %s", entityType)
	}
	if len(name) == 0 {
		return errors.Newf("empty %s name is not allowed", entityType)
	}
	if len(name) > rule.MaxLength {
		return errors.Newf("%s name exceeds maximum length of %d characters", entityType, rule.MaxLength)
	}
	if !rule.Pattern.MatchString(name) {
		return errors.Newf("invalid %s name '%s': %s", entityType, name, rule.Description)
	}
	return nil
}

// GetNamePatternDescription returns a human-readable description of the naming
// pattern for an entity type.
func GetNamePatternDescription(entityType EntityType) string {
	rule, ok := nameRules[entityType]
	if !ok {
		return fmt.Sprintf("Unknown entity type: %s", entityType)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Rules for %s names:\n", entityType)
	fmt.Fprintf(&builder, "- %s\n", rule.Description)
	fmt.Fprintf(&builder, "- Maximum length: %d characters\n", rule.MaxLength)

	if len(rule.ExampleValid) > 0 {
		quoted := make([]string, len(rule.ExampleValid))
		for i, ex := range rule.ExampleValid {
			quoted[i] = fmt.Sprintf("%q", ex)
		}
		fmt.Fprintf(&builder, "- Valid examples: %s\n", strings.Join(quoted, ", "))
	}

	if len(rule.ExampleInvalid) > 0 {
		builder.WriteString("- Invalid examples:\n")
		invalid := make([]string, 0, len(rule.ExampleInvalid))
		for ex := range rule.ExampleInvalid {
			invalid = append(invalid, ex)
		}
		sort.Strings(invalid)
		for _, ex := range invalid {
			fmt.Fprintf(&builder, "  - %q: %s\n", ex, rule.ExampleInvalid[ex])
		}
	}
	return builder.String()
}

// DumpAllRules returns every naming rule, for the CLI's rules listing.
func DumpAllRules() string {
	types := []EntityType{EntityTypeTool, EntityTypeResource, EntityTypePrompt}

	var builder strings.Builder
	builder.WriteString("MCP Entity Name Validation Rules\n")
	builder.WriteString("================================\n\n")
	for _, entityType := range types {
		builder.WriteString(GetNamePatternDescription(entityType))
		builder.WriteString("\n")
	}
	return builder.String()
}
