package logger

import (
	"strings"
	"time"
)

// Standard field keys for container logging.
const (
	FieldComponent  = "component"
	FieldBean       = "bean"
	FieldScope      = "scope"
	FieldGeneration = "generation"
	FieldChain      = "chain"
	FieldPhase      = "phase"
	FieldHook       = "hook"
	FieldCount      = "count"
	FieldState      = "state"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Debug("created", logger.Fields(logger.FieldBean, "repo", logger.FieldScope, "singleton"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// BeanFields creates fields identifying one managed instance.
func BeanFields(name, scope string) map[string]interface{} {
	return map[string]interface{}{
		FieldBean:  name,
		FieldScope: scope,
	}
}

// ChainFields renders a resolution chain as a single arrow-joined field.
func ChainFields(name string, chain []string) map[string]interface{} {
	return map[string]interface{}{
		FieldBean:  name,
		FieldChain: strings.Join(chain, " -> "),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
