package cli

var (
	verbose bool

	// all commands
	configPath string
	framePaths []string

	// for capture commands
	captureOutputPath string
	captureFormat     string
	captureQuality    int

	// for region commands
	regionX      int
	regionY      int
	regionWidth  int
	regionHeight int
)
