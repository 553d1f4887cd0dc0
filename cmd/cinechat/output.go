package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON prints v for --json mode. Terminals get indented output; pipes get
// one compact document per line so results can be streamed into jq.
// Korean titles and query strings are written unescaped.
func writeJSON(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if shouldColorize(out) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
