package cli

import (
	"reflect"
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"InputFile", flags.InputFile, "input_file.csv"},
		{"OutputFile", flags.OutputFile, "output.csv"},
		{"Column", flags.Column, "foreign_word"},
		{"BatchSize", flags.BatchSize, 10},
		{"MaxFailures", flags.MaxFailures, 1},
		{"MaxBatches", flags.MaxBatches, 0},
		{"Delay", flags.Delay, time.Duration(0)},
		{"Provider", flags.Provider, "gemini"},
		{"Language", flags.Language, "Spanish"},
		{"PromptVariant", flags.PromptVariant, "standard"},
		{"Temperature", flags.Temperature, float32(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Append", flags.Append},
		{"Archive", flags.Archive},
		{"DryRun", flags.DryRun},
		{"ListModels", flags.ListModels},
		{"Verbose", flags.Verbose},
		{"LogJSON", flags.LogJSON},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"Format", flags.Format},
		{"Model", flags.Model},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}
