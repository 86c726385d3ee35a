package config

// Config is the top-level docweb configuration, corresponding to .docweb.yml.
type Config struct {
	Title         string `yaml:"title" koanf:"title"`
	Keywords      string `yaml:"keywords" koanf:"keywords"`
	Description   string `yaml:"description" koanf:"description"`
	OpenNewWindow bool   `yaml:"open_new_window" koanf:"open_new_window"`
	GitHub        string `yaml:"github" koanf:"github"`
	SummaryMD     string `yaml:"summary_md" koanf:"summary_md"`
	Index         string `yaml:"index" koanf:"index"`
	DocsDir       string `yaml:"docs_dir" koanf:"docs_dir"`
	BaseURL       string `yaml:"base_url" koanf:"base_url"`
	LogLevel      string `yaml:"log_level" koanf:"log_level"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Render RenderConfig `yaml:"render" koanf:"render"`
	Scroll ScrollConfig `yaml:"scroll" koanf:"scroll"`
}

// ServerConfig holds settings for `docweb serve`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Watch           bool `yaml:"watch" koanf:"watch"`
}

// RenderConfig controls markdown rendering.
type RenderConfig struct {
	HighlightStyle string `yaml:"highlight_style" koanf:"highlight_style"`
	Sanitize       bool   `yaml:"sanitize" koanf:"sanitize"`
}

// ScrollConfig tunes the back-to-top control.
type ScrollConfig struct {
	IntervalMS       int     `yaml:"interval_ms" koanf:"interval_ms"`
	BackTopThreshold float64 `yaml:"backtop_threshold" koanf:"backtop_threshold"`
}
