package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoWords is returned when a prompt is requested for an empty batch
var ErrNoWords = errors.New("no words to build a prompt for")

// Variant selects the instruction wording
type Variant string

const (
	// Standard asks for one to five sentences per word
	Standard Variant = "standard"
	// Contextual asks for up to three sentences with context clues, never more than four
	Contextual Variant = "contextual"
)

// DefaultLanguage is the language of the example sentences
const DefaultLanguage = "Spanish"

// Variants lists the supported prompt variants
func Variants() []Variant {
	return []Variant{Standard, Contextual}
}

// Builder turns a batch of words into a model prompt
type Builder struct {
	Language string
	Variant  Variant
}

// NewBuilder creates a prompt builder, validating the variant
func NewBuilder(language string, variant Variant) (*Builder, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if variant == "" {
		variant = Standard
	}

	switch variant {
	case Standard, Contextual:
	default:
		return nil, fmt.Errorf("unknown prompt variant: %s", variant)
	}

	return &Builder{Language: language, Variant: variant}, nil
}

// Build returns the preamble followed by one "- word" line per word, in
// input order. Words are used verbatim.
func (b *Builder) Build(words []string) (string, error) {
	if len(words) == 0 {
		return "", ErrNoWords
	}

	var sb strings.Builder
	sb.WriteString(b.Preamble())
	for _, word := range words {
		sb.WriteString("- ")
		sb.WriteString(word)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Preamble returns the fixed instruction text that precedes the word list
func (b *Builder) Preamble() string {
	lang := b.Language
	lower := strings.ToLower(lang)

	switch b.Variant {
	case Contextual:
		return fmt.Sprintf(`In the form of a csv file generate the following for the list of words provided at the end.
'%[2]s_sentence', 'english_translation', '%[2]s_word', 'word_definition_in_sentence'

The sentence should contain context that will aid the reader in deducing the meaning of the word.
If one sentence starts with the word as its subject, use it as the object in the other sentence(s).
If the word is a verb, vary the conjugation and pick a tense such as infinitive, present, past or subjunctive.

Create up to 3 example sentences for a word. Use only 1 sentence if the word is simple and unambiguous.
Use more if the word is complex or has several definitions that all occur with high frequency.
Only include sentences that reflect common uses, and never exceed 4 sentences in total for a word.

Do not output the column headers. Output only the rows of the csv file. Each column must be wrapped in double quotes.
Column 1 is the %[1]s sentence. Column 2 is its English translation. Column 3 is the word used.
Column 4 is a short English definition of the word as used in that sentence.
Every row must have exactly 4 columns.

Words:
`, lang, lower)
	default:
		return fmt.Sprintf(`Generate example sentences for each %[1]s word listed at the end, as csv rows with exactly 4 columns:
'%[2]s_sentence', 'english_translation', '%[2]s_word', 'word_definition_in_sentence'

Write between 1 and 5 example sentences per word, never more than 5. Use 1 sentence for simple words and
more for words with several common meanings, one sentence per meaning.

Do not output a header line or any other text. Wrap every column in double quotes.
Column 1 is the %[1]s sentence. Column 2 is its English translation. Column 3 is the %[1]s word.
Column 4 is a short English definition of the word as used in that sentence.

Words:
`, lang, lower)
	}
}
