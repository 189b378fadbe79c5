// Package providers contains built-in provider implementations.
package providers
