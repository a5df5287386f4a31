/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package debate runs the debate party game.
//
// One host display and several player devices connect over a Socket. The
// Gateway performs the HELLO GAME handshake and routes each request: a
// CreateGame opens a Room in the Registry under a six digit code, and a
// ConnectToGame joins one. Every Room is a single goroutine that owns its
// roster and its current phase; all input reaches it as a command, and
// phase countdowns are delivered to the same loop.
//
// A game moves from the waiting room through a fixed number of debate
// rounds to the results. Each round picks two debaters who write a stance
// on a question, then the remaining players pick a side while the debaters
// argue out loud. Every supporter earns their debater one point.
//
// Each viewer sees its own projection of the room, delivered as a
// StanceSnapshot whenever the phase changes or the viewer asks for one.
package debate
