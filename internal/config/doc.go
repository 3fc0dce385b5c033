// Package config loads winctl settings.
//
// Settings are layered, higher layers overriding lower:
//
//	┌──────────────────────────────┐
//	│  3. Environment (WINCTL_*)   │  ← Highest priority
//	├──────────────────────────────┤
//	│  2. Config files (TOML/YAML) │  ← in the order given
//	├──────────────────────────────┤
//	│  1. Built-in defaults        │  ← Lowest priority
//	└──────────────────────────────┘
//
// Each layer is read into a map by the loader sub-package, the maps are
// combined with DeepMerge and the result is decoded and validated:
//
//	cfg, err := config.Load("winctl.toml")
//
// A Watcher reloads a file on change and hands validated configurations to
// a callback; invalid edits are logged and ignored.
package config
