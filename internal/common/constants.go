package common

// Clinical feature names, in the column order used for training and inference.
// The order is part of the model artifact contract and must never change
// between the two.
var FeatureNames = []string{
	"Pregnancies",
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
	"DiabetesPedigreeFunction",
	"Age",
}

// Label column name in the dataset CSV
const LabelColumn = "Outcome"

// Features where a raw value of zero is medically implausible and is
// treated as missing during cleaning.
var ZeroImplausible = []string{
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
}

// Prediction labels
const (
	LabelPositive = "Diabetes"
	LabelNegative = "No Diabetes"
)

// Environment variable keys
const (
	EnvDataPath     = "DATA_PATH"
	EnvDataURL      = "DATA_URL"
	EnvArtifactPath = "ARTIFACT_PATH"
	EnvStorePath    = "STORE_PATH"
	EnvSeed         = "SEED"
	EnvTestFraction = "TEST_FRACTION"
	EnvFolds        = "FOLDS"
	EnvTuneWorkers  = "TUNE_WORKERS"
	EnvServerPort   = "SERVER_PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFile      = "LOG_FILE"
	EnvCacheSize    = "CACHE_SIZE"
	EnvCacheTTL     = "CACHE_TTL"
)

// Configuration defaults
const (
	DefaultDataPath     = "data/diabetes.csv"
	DefaultDataURL      = "https://raw.githubusercontent.com/plotly/datasets/master/diabetes.csv"
	DefaultArtifactPath = "models/diarisk.json"
	DefaultStorePath    = "data/runs.db"
	DefaultSeed         = 42
	DefaultTestFraction = 0.20
	DefaultFolds        = 5
	DefaultServerPort   = 8090
	DefaultLogLevel     = "info"
	DefaultCacheSize    = 1000
)

// Validation constants
const (
	MinTestFraction = 0.05
	MaxTestFraction = 0.5
	MinFolds        = 2
	MaxFolds        = 20
	MinServerPort   = 1024
	MaxServerPort   = 65535
	MaxTuneWorkers  = 256
)
