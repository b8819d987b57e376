// Package exporter renders cleaned holdings datasets as downloadable CSV
// and Excel files.
package exporter
