// Package listener implements the WebSocket push path.
//
// A Client owns one WebSocket connection and surfaces raw timestamped
// messages. The Listener drives the connect/subscribe/consume cycle,
// reconnecting after drops and replaying subscriptions, and converts
// ticker messages into websocket-sourced snapshots with their feed
// sequence numbers preserved.
package listener
