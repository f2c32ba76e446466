// Package mcpserver exposes the search tool and ingestion-status
// resources over the Model Context Protocol: a single
// dynamically-schemaed search tool, and five ingestion:// status
// resources.
package mcpserver
