// Package openai provides the DALL-E image backend and the OpenAI-compatible
// speech backends (OpenAI tts-1 and a keyless local endpoint) on top of
// github.com/sashabaranov/go-openai. The go-openai client shares the
// transport of an httpclient.Client so timeouts and connection pooling are
// configured in one place.
package openai
