// Package definition describes managed instances before they exist.
//
// A Definition is the blueprint for one managed name: how to build it, which
// scope stores it, which properties to inject and how to initialize and
// destroy it. Definitions are collected in a Table, which also tracks aliases.
// The container snapshots the table on every refresh and treats the snapshot
// as read-only for the lifetime of that generation.
//
// Factories can be written directly or adapted from ordinary constructors:
//
//	table.Register(definition.Definition{
//	    Name:    "repository",
//	    Factory: definition.Constructor(NewRepository),
//	    Properties: definition.Properties{
//	        {Name: "DB", Value: definition.Ref("db")},
//	    },
//	})
package definition
