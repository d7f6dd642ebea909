// Package hook provides the lifecycle hook pipeline run around instance
// creation.
//
// A hook is any value implementing one or more of the stage interfaces:
//
//	BeforeInstantiation  may supply an instance and skip the factory
//	AfterInstantiation   may veto property population
//	PropertiesProcessor  may rewrite the property set
//	BeforeInitialization may wrap the instance before init callbacks
//	AfterInitialization  may wrap the instance after init callbacks
//	EarlyReference       supplies the reference exposed to a cycle
//
// Hooks run in order.Compare sequence. The func adapters in this package let
// a single stage be registered without declaring a type; wrap them in
// order.Value or order.Priority to give them a position.
package hook
