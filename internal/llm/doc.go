// Package llm provides the text generation clients used to obtain example
// sentences. Google Gemini (genai) and OpenAI chat completions are supported
// behind the Generator interface; credentials are injected through Config.
package llm
