package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// docsDirCandidates are checked, in order, for an existing summary file.
var docsDirCandidates = []string{"docs", "book", "."}

// detectDocsDir returns the first candidate directory holding summary.
func detectDocsDir(summary string) string {
	for _, dir := range docsDirCandidates {
		if _, err := os.Stat(filepath.Join(dir, summary)); err == nil {
			return dir
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .docweb.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to docweb! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// Detect the docs directory.
	if dir := detectDocsDir(cfg.SummaryMD); dir != "" {
		fmt.Printf("Detected %s in %s\n\n", cfg.SummaryMD, dir)
		cfg.DocsDir = dir
	}

	// 1. Site title.
	title, err := (&promptui.Prompt{Label: "Site title", Default: cfg.Title}).Run()
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	cfg.Title = strings.TrimSpace(title)

	// 2. Keywords and description.
	keywords, err := (&promptui.Prompt{Label: "Keywords (comma-separated)"}).Run()
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	cfg.Keywords = strings.Join(splitAndTrim(keywords), ", ")

	description, err := (&promptui.Prompt{Label: "Description"}).Run()
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	cfg.Description = strings.TrimSpace(description)

	// 3. GitHub link.
	github, err := (&promptui.Prompt{Label: "GitHub repository URL (blank for none)"}).Run()
	if err != nil {
		return nil, fmt.Errorf("github: %w", err)
	}
	cfg.GitHub = strings.TrimSpace(github)

	// 4. Where the markdown lives.
	docsDir, err := (&promptui.Prompt{Label: "Docs directory", Default: cfg.DocsDir}).Run()
	if err != nil {
		return nil, fmt.Errorf("docs dir: %w", err)
	}
	cfg.DocsDir = docsDir

	index, err := (&promptui.Prompt{
		Label:    "Default page",
		Default:  cfg.Index,
		Validate: validateMarkdownName,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	cfg.Index = index

	summary, err := (&promptui.Prompt{
		Label:    "Sidebar summary file",
		Default:  cfg.SummaryMD,
		Validate: validateMarkdownName,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	cfg.SummaryMD = summary

	// 5. Link behaviour.
	newWindowPrompt := promptui.Select{
		Label: "Open content links in a new window?",
		Items: []string{"yes", "no"},
	}
	newWindowIdx, _, err := newWindowPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("open_new_window: %w", err)
	}
	cfg.OpenNewWindow = newWindowIdx == 0

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(cfg.DocsDir, cfg.Index)); err != nil {
		fmt.Printf("\nNote: %s does not exist yet in %s.\n", cfg.Index, cfg.DocsDir)
	}

	// Save to .docweb.yml.
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

func validateMarkdownName(s string) error {
	if !strings.HasSuffix(strings.TrimSpace(s), ".md") {
		return fmt.Errorf("must be a .md file")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
