package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	InputFile  string
	OutputFile string
	Format     string
	Column     string
	Append     bool
	Archive    bool
	DryRun     bool
	ListModels bool
	Verbose    bool
	LogJSON    bool

	// Batching flags
	BatchSize   int
	MaxBatches  int
	MaxFailures int
	Delay       time.Duration

	// Model flags
	Provider    string
	Model       string
	Temperature float32

	// Prompt flags
	Language      string
	PromptVariant string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		InputFile:     "input_file.csv",
		OutputFile:    "output.csv",
		Column:        "foreign_word",
		BatchSize:     10,
		MaxFailures:   1,
		Provider:      "gemini",
		Language:      "Spanish",
		PromptVariant: "standard",
	}
}
