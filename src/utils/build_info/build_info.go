package build_info

// Set through ldflags in the release pipeline
var (
	Version   = "dev"
	BuildDate = "unknown"
)
