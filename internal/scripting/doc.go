// Package scripting implements the script stage: it turns a job's topic into
// a spoken-word script plus the title, description, and tags the later
// publish stage needs.
package scripting
