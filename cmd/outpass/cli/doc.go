// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the outpass CLI.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. Commands are assembled into a tree in cmd/outpass/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// Flag sets are usually generated from tagged parameter structs by
// [BindFlags]; embedding [JSONOutput] adds --json.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Errors returned by commands carry a [ToolError] category. [FromError]
// classifies portal, session and profile-gate failures so that scripts
// can tell "fix your input" from "log in again" from "retry later".
package cli
