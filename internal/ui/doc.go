// Package ui provides terminal UI components for the routerctl CLI.
//
// Output uses Lipgloss for styling. Most commands follow a "run once and
// exit" pattern: a Header, the command's content (usually a device table)
// and a Result box. The watch command is the one interactive screen; it is
// a Bubble Tea program that polls the router on an interval.
//
// # Components
//
//   - Header: command banner showing the operation and router
//   - Result: success, failure and warning boxes; failures carry the
//     troubleshooting hint of the error
//   - RenderDeviceTable / RenderDeviceDetailTable: attached device tables
//   - WatchModel: live traffic and device dashboard
//   - PromptPassword / Confirm: terminal prompts
//
// # Logging Integration
//
// Logging is controlled by the ROUTERCTL_LOG_LEVEL environment variable.
// When it is unset, zap logging is silent so the styled output stays clean.
package ui
