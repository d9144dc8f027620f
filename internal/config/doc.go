// Package config loads the kalibox provisioning profile.
//
// A profile is optional: built-in defaults describe a complete
// provisioning run, and a profile file overrides only the fields it
// sets. Two formats are supported, selected by file extension:
//
//   - JSONC (kalibox.jsonc / .json): comments and trailing commas are
//     stripped with github.com/tidwall/jsonc before parsing with
//     encoding/json. Profiles are hand-edited, so comments matter.
//   - YAML (kalibox.yml / .yaml): parsed with gopkg.in/yaml.v3.
//
// The search order is: explicit --config path, ./kalibox.jsonc,
// ./kalibox.yml, ~/.config/kalibox/config.jsonc,
// ~/.config/kalibox/config.yml.
package config
