// Package diagnostic collects structured findings about a project file.
//
// Findings have a severity, a stable code, the field they concern and
// optional "did you mean" suggestions. Errors make a project invalid;
// warnings and infos are advisory.
package diagnostic
