package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/examplegen/internal"
	"codeberg.org/snonux/examplegen/internal/llm"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "examplegen [input.csv]",
		Short: "Vocabulary Example Sentence Generator",
		Long: `examplegen reads vocabulary words from a CSV table, asks a language model
for example sentences with translations in batches, and appends the parsed
rows to an output table.

Each output row has four quoted columns: sentence, translation, word and
the meaning of the word in that sentence.

Examples:
  examplegen words.csv                          # Gemini, batches of 10, writes output.csv
  examplegen words.csv -o examples.db           # Store rows in SQLite
  examplegen words.csv --provider openai -b 5   # OpenAI, batches of 5
  examplegen words.csv --dry-run                # Print prompts without calling the model`,
		Args:          cobra.MaximumNArgs(1),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.examplegen.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.LogJSON, "log-json", false, "Log as JSON instead of console text")

	// Input/output flags
	cmd.Flags().StringVarP(&flags.InputFile, "input", "i", flags.InputFile, "Input CSV file with a header row (- for stdin, .txt for one word per line)")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", flags.OutputFile, "Output file (- for stdout)")
	cmd.Flags().StringVar(&flags.Format, "format", "", "Output format: csv, sqlite or jsonl (default: from output extension)")
	cmd.Flags().StringVar(&flags.Column, "column", flags.Column, "Input column holding the word (e.g. foreign_word, spanish_word)")
	cmd.Flags().BoolVar(&flags.Append, "append", false, "Append to the output instead of truncating it")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move an existing output file to ./archive before writing")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the prompts without calling the model")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available models for the selected provider")

	// Batching flags
	cmd.Flags().IntVarP(&flags.BatchSize, "batch-size", "b", flags.BatchSize, "Words per model request")
	cmd.Flags().IntVar(&flags.MaxBatches, "max-batches", 0, "Stop after this many batches (0 = no limit)")
	cmd.Flags().IntVar(&flags.MaxFailures, "max-failures", flags.MaxFailures, "Consecutive failed batches before halting")
	cmd.Flags().DurationVar(&flags.Delay, "delay", 0, "Minimum delay between model requests (e.g. 2s)")

	// Model flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Model provider: gemini or openai")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model name (default: gemini-1.5-pro or gpt-4o-mini)")
	cmd.Flags().Float32Var(&flags.Temperature, "temperature", 0, "Sampling temperature (0 = provider default)")

	// Prompt flags
	cmd.Flags().StringVar(&flags.Language, "language", flags.Language, "Language of the example sentences")
	cmd.Flags().StringVar(&flags.PromptVariant, "prompt-variant", flags.PromptVariant, "Prompt wording: standard (1-5 sentences) or contextual (up to 3)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("input.file", cmd.Flags().Lookup("input"))
	viper.BindPFlag("input.column", cmd.Flags().Lookup("column"))
	viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("output.append", cmd.Flags().Lookup("append"))
	viper.BindPFlag("batch.size", cmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("batch.max_batches", cmd.Flags().Lookup("max-batches"))
	viper.BindPFlag("batch.max_failures", cmd.Flags().Lookup("max-failures"))
	viper.BindPFlag("batch.delay", cmd.Flags().Lookup("delay"))
	viper.BindPFlag("model.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("model.name", cmd.Flags().Lookup("model"))
	viper.BindPFlag("model.temperature", cmd.Flags().Lookup("temperature"))
	viper.BindPFlag("prompt.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("prompt.variant", cmd.Flags().Lookup("prompt-variant"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".examplegen" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".examplegen")
	}

	// Environment variables, e.g. EXAMPLEGEN_BATCH_SIZE
	viper.SetEnvPrefix("EXAMPLEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies the effective settings (flag, then environment, then
// config file, then default) back into flags
func ApplyConfig(flags *Flags) {
	flags.InputFile = viper.GetString("input.file")
	flags.Column = viper.GetString("input.column")
	flags.OutputFile = viper.GetString("output.file")
	flags.Format = viper.GetString("output.format")
	flags.Append = viper.GetBool("output.append")
	flags.BatchSize = viper.GetInt("batch.size")
	flags.MaxBatches = viper.GetInt("batch.max_batches")
	flags.MaxFailures = viper.GetInt("batch.max_failures")
	flags.Delay = viper.GetDuration("batch.delay")
	flags.Provider = viper.GetString("model.provider")
	flags.Model = viper.GetString("model.name")
	flags.Temperature = float32(viper.GetFloat64("model.temperature"))
	flags.Language = viper.GetString("prompt.language")
	flags.PromptVariant = viper.GetString("prompt.variant")
}

// GetAPIKey retrieves the API key for provider from environment or config
func GetAPIKey(provider string) string {
	// First check environment variable
	if key := os.Getenv(llm.APIKeyEnv(provider)); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("model.api_key")
}
