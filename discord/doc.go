// Package discord implements the Discord webhook destination: the embed
// payload model and its builder, message validation against Discord limits,
// webhook URL parsing and a core.Sender that executes webhooks through a
// core.Deliverer.
package discord
