// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never talk to the network or the filesystem directly;
// everything external arrives through a driven port.
package services
