package di

// BuiltinNames are the managed names the container and bootstrap register
// on their own. Projects embed this struct in their own name sets.
type BuiltinNames struct {
	// Container resolves to the container itself.
	Container string
	Config    string
	Logger    string
	// Instrumentation resolves to the *observability.Instrumentation in use.
	Instrumentation string
}

// Builtin contains the names registered by the container and bootstrap.
var Builtin = BuiltinNames{
	Container:       "container",
	Config:          "config",
	Logger:          "logger",
	Instrumentation: "instrumentation",
}
