// Package config defines the fixed paths and endpoints used by a sync run and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the catalog URL, the catalog platform label, the
// install target directory and the artifact/log locations.
package config
