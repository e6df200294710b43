// Package manifest validates the git references cited by SDK manifests.
//
// Five manifest types are understood. Board, app and middleware manifests
// register every asset id with its repository in the session's asset cache and
// check each listed version commit. Super manifests point at the other
// manifests through raw URLs that must be reachable and whose embedded ref must
// exist. Dependency manifests resolve depender and dependee ids through the
// asset cache and check their commits.
//
// Every manifest is read through Rewrite, which also writes a normalized copy
// of the document to the requested output path.
package manifest
