// Package services implements the business logic layer between the HTTP
// handlers and the holdings pipeline. Services own the current portfolio
// state, coordinate the clean/filter/summarize pipeline with its memo
// cache, and notify WebSocket clients when data changes.
package services
