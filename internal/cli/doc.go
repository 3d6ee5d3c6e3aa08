// Parses flags and configures logging for the isobuild CLI.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output, including the builder's.
//	-d, --debug     Enable debug output.
//	    --config    Settings file location.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level before the
// selected subcommand runs.
package cli
