package errors

import (
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// ServerStartError generates suggestions for server startup failures
func ServerStartError(err error, port int) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") || strings.Contains(errStr, "bind") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Port already in use",
			Description: fmt.Sprintf("Port %d is already being used by another process", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		})

		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use a different port",
			Description: "Start the server on a different port",
			Command:     fmt.Sprintf("solid serve --port %d", port+1),
		})
	}

	if strings.Contains(errStr, "permission denied") && port < 1024 {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use unprivileged port",
			Description: "Ports below 1024 require root privileges",
			Command:     "solid serve --port 8080",
		})
	}

	return suggestions
}

// ConfigurationError generates suggestions for configuration issues
func ConfigurationError(configError string, configPath string) []ErrorSuggestion {
	if configPath == "" {
		configPath = ".solid.yml"
	}
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check configuration file",
			Description: "Verify your configuration file exists and has valid syntax",
			Command:     "cat " + configPath,
		},
		{
			Title:       "Run the diagnostics",
			Description: "The doctor command reports which file was loaded and what is wrong with it",
			Command:     "solid doctor",
		},
	}

	if strings.Contains(configError, "yaml") || strings.Contains(configError, "unmarshal") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in your YAML configuration",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(configError, "base_url") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use an absolute base URL",
			Description: "Canonical links are built from site.base_url",
			Example:     "site:\n  base_url: \"https://www.solidprinciples.org\"",
		})
	}

	return suggestions
}

// ContentError generates suggestions for a content root that fails to load.
func ContentError(loadError string, contentDir string) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check the content layout",
			Description: "Examples live in examples/<principle>/<language>/{without,with}.txt next to pages.yaml",
		},
	}

	if contentDir != "" {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fall back to the embedded content",
			Description: "Unset content.dir to serve the examples compiled into the binary",
			Command:     "solid serve --content-dir=",
		})
	}

	if strings.Contains(loadError, "unknown principle") || strings.Contains(loadError, "unknown language") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix the directory slug",
			Description: "Directory names must match a registered slug",
			Command:     "solid routes",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	title := e.Title
	if e.OriginalError != nil {
		title = fmt.Sprintf("%s: %v", e.Title, e.OriginalError)
	}
	return FormatSuggestions(title, e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}
