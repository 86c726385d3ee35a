package config

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".docweb.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Title:         "Documentation",
		OpenNewWindow: true,
		SummaryMD:     "SUMMARY.md",
		Index:         "README.md",
		DocsDir:       "docs",
		LogLevel:      "info",
		Server: ServerConfig{
			Port: 8080,
		},
		Render: RenderConfig{
			HighlightStyle: "github",
		},
		Scroll: ScrollConfig{
			IntervalMS:       16,
			BackTopThreshold: 300,
		},
	}
}
