package common

// Session table columns
const (
	ColAdministrative         = "Administrative"
	ColAdministrativeDuration = "Administrative_Duration"
	ColInformational          = "Informational"
	ColInformationalDuration  = "Informational_Duration"
	ColProductRelated         = "ProductRelated"
	ColProductRelatedDuration = "ProductRelated_Duration"
	ColBounceRates            = "BounceRates"
	ColExitRates              = "ExitRates"
	ColPageValues             = "PageValues"
	ColSpecialDay             = "SpecialDay"
	ColMonth                  = "Month"
	ColOperatingSystems       = "OperatingSystems"
	ColBrowser                = "Browser"
	ColRegion                 = "Region"
	ColTrafficType            = "TrafficType"
	ColVisitorType            = "VisitorType"
	ColWeekend                = "Weekend"
	ColRevenue                = "Revenue"
)

// Raw values with special meaning in the session table
const (
	ReturningVisitor = "Returning_Visitor"
	TrueLiteral      = "TRUE"
)

// Environment variable keys
const (
	EnvConfigFile   = "CONFIG_FILE"
	EnvTestSize     = "TEST_SIZE"
	EnvSplitSeed    = "SPLIT_SEED"
	EnvNeighbors    = "NEIGHBORS"
	EnvWorkers      = "WORKERS"
	EnvDataPath     = "DATA_PATH"
	EnvOutputPath   = "OUTPUT_PATH"
	EnvMetricsFile  = "METRICS_FILE"
	EnvShowProgress = "SHOW_PROGRESS"
	EnvLogLevel     = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultTestSize  = 0.4
	DefaultNeighbors = 1
	DefaultWorkers   = 4
	DefaultLogLevel  = "info"
)

// Validation constants
const (
	MaxNeighbors = 1000
	MaxWorkers   = 256
)

// Process exit codes
const (
	ExitFailure = 1
	ExitUsage   = 2
)
