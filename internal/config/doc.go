// Package config manages the routerctl configuration file.
//
// The file is YAML and holds named router profiles (host, port, username,
// session ID) plus application preferences such as the default profile,
// request timeout and output format. Profiles are validated with the same
// rules as the router client configuration.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/routerctl/config.yaml or $HOME/.config/routerctl/config.yaml
//   - macOS: $HOME/.config/routerctl/config.yaml
//   - Windows: %LOCALAPPDATA%\routerctl\config.yaml
//
// ROUTERCTL_CONFIG overrides the location.
//
// # Security
//
// Router passwords are never written to the file. The CLI takes them from
// --password, the ROUTERCTL_PASSWORD environment variable, or a prompt.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = registry.SetProfile("home", &config.Profile{Host: "192.168.1.1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and replace the file atomically.
package config
