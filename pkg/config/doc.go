// Package config provides middleware that feed configuration values into the
// parsed namespace.
//
//   - File loads -c/--config files (YAML, JSON or HCL) and merges them in.
//   - List loads -c/--config files side by side into config_data.
//   - Inline merges -e/--env KEY=VALUE overrides.
//   - InlineOption collects a custom KEY=VALUE flag without merging it.
//   - Environment merges prefixed environment variables.
//   - Inject fills in defaults for keys that are still missing.
//
// Values given as strings (inline flags and environment variables) are decoded
// as JSON when possible and kept as strings otherwise, see DecodeValue.
//
// There is no global precedence between the sources. Each middleware merges
// its values with its own Overwrite setting when its turn in the pipeline
// comes, so the order of registration decides what wins:
//
//	p := argware.New("app", argparse.Options{},
//		config.NewInject(defaults),
//		config.NewFile(config.DefaultFileOptions()),
//		config.NewEnvironment("APP_", config.DefaultEnvironmentOptions()),
//		config.NewInline(config.DefaultInlineOptions()),
//	)
package config
