// Package ai writes application letters and reviews rental contracts with
// an OpenAI compatible chat completion API.
package ai
