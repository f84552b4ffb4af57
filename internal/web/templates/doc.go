// Package templates holds the templ components for the built-in HTML served
// when no frontend build is configured. Edit the .templ files and run
// `templ generate`; the *_templ.go files are generated.
package templates
