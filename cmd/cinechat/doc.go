// Command cinechat searches the movie catalog with natural-language requests
// and serves the same pipeline over HTTP.
//
// The binary offers:
//
//   - serve: run the HTTP service (single instance per data directory)
//   - search: extract criteria, normalize them and list matching movies
//   - chat: print the raw criteria the language model produced
//   - discover: query the catalog directly with explicit filters
//   - genres: list the genre vocabulary or check it against the catalog
//   - favorites: manage saved movies
//   - status: check credentials, connectivity and data directories
//   - config: create or validate the configuration file
//
// Most commands accept --json for machine-readable output.
package main
