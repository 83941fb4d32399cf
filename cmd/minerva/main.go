// Minerva is a compliance evaluation engine for conversational AI
// transcripts. It evaluates recorded chatbot exchanges against
// versioned jurisdiction policy packs and produces violations,
// compliance scores, regulatory obligations, and tamper-evident audit
// records.
//
// Usage:
//
//	# Start the API server with default configuration
//	minerva run
//
//	# Start with a custom configuration file
//	minerva run --config /path/to/config.yaml
//
//	# Evaluate a transcript from the command line
//	minerva evaluate --file transcript.txt
//
//	# List the registered policy packs
//	minerva packs
//
//	# Verify audit record integrity
//	minerva audit verify --db data/audit.db
//
//	# Show version information
//	minerva version
package main

func main() {
	Execute()
}
