package config

const (
	defaultEnsureRadius       = 12.0
	defaultLegacyEnsureRadius = 20.0
	defaultDragThreshold      = 2.0
	defaultMarkerWidth        = 28.0
	defaultMarkerHeight       = 14.0
	defaultFitMode            = "contain"

	defaultBoxRatio    = 0.015
	defaultMinBox      = 16
	defaultStrokeWidth = 2
	defaultFontSize    = 12.0
	defaultSide1Color  = "#0000FF"
	defaultSide2Color  = "#FF0000"
	defaultIconMaxEdge = 128
	defaultIconOpacity = 1.0

	defaultBind                 = ":8000"
	defaultDataDir              = "~/.local/share/artwork-sequencer"
	defaultRetentionDays        = 30
	defaultMaxItems             = 10000
	defaultCleanupIntervalHours = 24
	defaultExportTimeoutSeconds = 10
	defaultMaxUploadMB          = 25
	defaultMDNSService          = "_artseq._tcp"

	defaultOutputDir = "~/Documents/Artwork Sequencer Outputs"

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Editor: Editor{
			EnsureRadius:       defaultEnsureRadius,
			LegacyEnsureRadius: defaultLegacyEnsureRadius,
			DragThreshold:      defaultDragThreshold,
			MarkerWidth:        defaultMarkerWidth,
			MarkerHeight:       defaultMarkerHeight,
			FitMode:            defaultFitMode,
		},
		Render: Render{
			BoxRatio:    defaultBoxRatio,
			MinBox:      defaultMinBox,
			StrokeWidth: defaultStrokeWidth,
			FontSize:    defaultFontSize,
			Side1Color:  defaultSide1Color,
			Side2Color:  defaultSide2Color,
			IconMaxEdge: defaultIconMaxEdge,
			IconOpacity: defaultIconOpacity,
		},
		Server: Server{
			Bind:                 defaultBind,
			DataDir:              defaultDataDir,
			RetentionDays:        defaultRetentionDays,
			MaxItems:             defaultMaxItems,
			CleanupIntervalHours: defaultCleanupIntervalHours,
			ExportTimeoutSeconds: defaultExportTimeoutSeconds,
			MaxUploadMB:          defaultMaxUploadMB,
			MDNSService:          defaultMDNSService,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
