package config

const (
	defaultDataDir             = "~/.local/share/veriscan"
	defaultLogDir              = "~/.local/share/veriscan/logs"
	defaultUploadDir           = "~/.local/share/veriscan/uploads"
	defaultReportDir           = "~/.local/share/veriscan/reports"
	defaultAPIBind             = "127.0.0.1:7319"
	defaultOCRLanguage         = "eng"
	defaultOCRDPI              = 300
	defaultOCRTimeoutSeconds   = 30
	defaultMatchThreshold      = 0.85
	defaultDivergenceThreshold = 0.5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			UploadDir: defaultUploadDir,
			ReportDir: defaultReportDir,
			APIBind:   defaultAPIBind,
		},
		OCR: OCR{
			Enabled:        true,
			Languages:      []string{defaultOCRLanguage},
			DPI:            defaultOCRDPI,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		Verification: Verification{
			MatchThreshold:      defaultMatchThreshold,
			DivergenceThreshold: defaultDivergenceThreshold,
			RequiredFields:      []string{"uid"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
